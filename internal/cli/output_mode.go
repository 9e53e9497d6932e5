package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lydakis/ahkx/internal/message"
)

type outputMode int

const (
	outputModeText outputMode = iota
	outputModeJSON
)

func (m outputMode) isJSON() bool {
	return m == outputModeJSON
}

type callResult struct {
	Kind  string `json:"kind,omitempty"`
	Value any    `json:"value"`
}

func writeResult(w io.Writer, mode outputMode, res callResult) error {
	if mode.isJSON() {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(res)
	}
	return writeText(w, res.Value)
}

func writeText(w io.Writer, v any) error {
	var err error
	switch v := v.(type) {
	case nil:
	case string:
		_, err = fmt.Fprintln(w, v)
	case []string:
		for _, s := range v {
			if _, err = fmt.Fprintln(w, s); err != nil {
				return err
			}
		}
	case message.ControlList:
		for _, c := range v.Controls {
			if _, err = fmt.Fprintf(w, "%s\t%s\n", c.HWND, c.Class); err != nil {
				return err
			}
		}
	case []int:
		for _, n := range v {
			if _, err = fmt.Fprintln(w, n); err != nil {
				return err
			}
		}
	case []byte:
		_, err = fmt.Fprintln(w, base64.StdEncoding.EncodeToString(v))
	default:
		_, err = fmt.Fprintln(w, v)
	}
	return err
}
