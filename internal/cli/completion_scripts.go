package cli

var completionScripts = map[string]string{
	"bash": bashCompletionScript,
	"zsh":  zshCompletionScript,
	"fish": fishCompletionScript,
}

const bashCompletionScript = `# bash completion for ahkx
_ahkx_completion() {
  local cur first
  COMPREPLY=()
  cur="${COMP_WORDS[COMP_CWORD]}"

  if [[ ${COMP_CWORD} -eq 1 ]]; then
    local words
    words="$(ahkx __complete commands 2>/dev/null)"
    words="$words"$'\n'"--help"$'\n'"-h"$'\n'"--version"$'\n'"-V"$'\n'"--verbose"$'\n'"--config"
    COMPREPLY=( $(compgen -W "$words" -- "$cur") )
    return 0
  fi

  first="${COMP_WORDS[1]}"
  case "$first" in
    completion)
      COMPREPLY=( $(compgen -W "bash zsh fish" -- "$cur") )
      ;;
    call)
      if [[ ${COMP_CWORD} -eq 2 ]]; then
        local functions
        functions="$(ahkx __complete functions 2>/dev/null)"
        COMPREPLY=( $(compgen -W "$functions --json --help" -- "$cur") )
      fi
      ;;
    resolve)
      COMPREPLY=( $(compgen -W "--save --help" -- "$cur") )
      ;;
    transcript)
      COMPREPLY=( $(compgen -f -- "$cur") )
      ;;
  esac
}
complete -F _ahkx_completion ahkx
`

const zshCompletionScript = `#compdef ahkx
_ahkx_completion() {
  local -a commands functions

  if (( CURRENT == 2 )); then
    commands=(${(f)"$(ahkx __complete commands 2>/dev/null)"})
    commands+=(--help -h --version -V --verbose --config)
    _describe 'ahkx command' commands
    return
  fi

  case "${words[2]}" in
    completion)
      _values 'shell' bash zsh fish
      ;;
    call)
      if (( CURRENT == 3 )); then
        functions=(${(f)"$(ahkx __complete functions 2>/dev/null)"})
        functions+=(--json --help)
        _describe 'function' functions
      fi
      ;;
    resolve)
      _values 'flag' --save --help
      ;;
    transcript)
      _files
      ;;
  esac
}
compdef _ahkx_completion ahkx
`

const fishCompletionScript = `function __ahkx_words
    commandline -opc
end

complete -c ahkx -n 'test (count (__ahkx_words)) -eq 1' -a "(ahkx __complete commands 2>/dev/null) --help -h --version -V --verbose --config"
complete -c ahkx -n 'set -l w (__ahkx_words); test (count $w) -eq 2; and test "$w[2]" = completion' -a "bash zsh fish"
complete -c ahkx -n 'set -l w (__ahkx_words); test (count $w) -eq 2; and test "$w[2]" = call' -a "(ahkx __complete functions 2>/dev/null) --json --help"
complete -c ahkx -n 'set -l w (__ahkx_words); test (count $w) -ge 2; and test "$w[2]" = resolve' -a "--save --help"
complete -c ahkx -n 'set -l w (__ahkx_words); test (count $w) -eq 2; and test "$w[2]" = transcript' -F
`
