// Package extension holds user-contributed interpreter functions and the
// host-side methods that call them.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/lydakis/ahkx/internal/message"
)

var (
	// ErrUnknownMethod reports a method name that no extension registered.
	ErrUnknownMethod = errors.New("unknown extension method")
	// ErrInvalidExtension reports a malformed extension definition.
	ErrInvalidExtension = errors.New("invalid extension")
)

// Caller sends one function call to the interpreter.
type Caller interface {
	FunctionCall(ctx context.Context, name string, args ...string) (message.Response, error)
}

// MethodFunc is a host-side method. It receives the engine's caller.
type MethodFunc func(ctx context.Context, c Caller, args ...string) (any, error)

// Spec describes an extension before it is registered.
type Spec struct {
	Name string
	// Script is appended to the daemon bootstrap. Each interpreter function
	// it defines is named AHKX_<function>.
	Script string
	// Includes are emitted as #Include lines ahead of the handlers.
	Includes []string
	// Functions lists the interpreter functions Script defines.
	Functions []string
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Extension is a registered bundle of script and methods.
type Extension struct {
	name      string
	script    string
	includes  []string
	functions []string

	mu      sync.RWMutex
	methods map[string]MethodFunc
	order   []string

	registry *Registry
}

// Method is a registered method together with its owner.
type Method struct {
	Name      string
	Extension *Extension
	Func      MethodFunc
}

// Call runs the method against c.
func (m Method) Call(ctx context.Context, c Caller, args ...string) (any, error) {
	return m.Func(ctx, c, args...)
}

// Registry is the process-wide set of extensions and methods.
type Registry struct {
	logger *slog.Logger

	mu         sync.RWMutex
	extensions []*Extension
	methods    map[string]Method
}

// NewRegistry returns an empty registry. A nil logger means slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger.With("component", "extension"), methods: make(map[string]Method)}
}

// Default is the registry used by the package-level functions.
var Default = NewRegistry(nil)

// New validates spec and adds it to Default.
func New(spec Spec) (*Extension, error) {
	return Default.New(spec)
}

// New validates spec and adds the extension to r. Extensions keep their
// registration order in the rendered script.
func (r *Registry) New(spec Spec) (*Extension, error) {
	if !identRe.MatchString(spec.Name) {
		return nil, fmt.Errorf("%w: name %q", ErrInvalidExtension, spec.Name)
	}
	for _, fn := range spec.Functions {
		if !identRe.MatchString(fn) {
			return nil, fmt.Errorf("%w: %s: function name %q", ErrInvalidExtension, spec.Name, fn)
		}
	}
	for _, inc := range spec.Includes {
		if strings.TrimSpace(inc) == "" || strings.ContainsAny(inc, "\r\n") {
			return nil, fmt.Errorf("%w: %s: include %q", ErrInvalidExtension, spec.Name, inc)
		}
	}
	ext := &Extension{
		name:      spec.Name,
		script:    spec.Script,
		includes:  append([]string(nil), spec.Includes...),
		functions: append([]string(nil), spec.Functions...),
		methods:   make(map[string]MethodFunc),
		registry:  r,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.extensions {
		if existing.name == spec.Name {
			r.logger.Warn("replacing extension", "extension", spec.Name)
			r.extensions = append(r.extensions[:i], r.extensions[i+1:]...)
			for name, m := range r.methods {
				if m.Extension == existing {
					delete(r.methods, name)
				}
			}
			break
		}
	}
	r.extensions = append(r.extensions, ext)
	return ext, nil
}

// Name returns the extension name.
func (e *Extension) Name() string { return e.name }

// ScriptFragment returns the interpreter code appended to the bootstrap.
func (e *Extension) ScriptFragment() string { return e.script }

// Includes returns the #Include paths, in order.
func (e *Extension) Includes() []string { return append([]string(nil), e.includes...) }

// Functions returns the interpreter functions the extension defines.
func (e *Extension) Functions() []string { return append([]string(nil), e.functions...) }

// Register binds name to fn on e and in the process-wide map. A name that
// is already taken is replaced with a warning.
func (e *Extension) Register(name string, fn MethodFunc) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: %s: method name %q", ErrInvalidExtension, e.name, name)
	}
	if fn == nil {
		return fmt.Errorf("%w: %s: method %q is nil", ErrInvalidExtension, e.name, name)
	}

	e.mu.Lock()
	if _, ok := e.methods[name]; !ok {
		e.order = append(e.order, name)
	}
	e.methods[name] = fn
	e.mu.Unlock()

	r := e.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.methods[name]; ok {
		r.logger.Warn("duplicate extension method, last registration wins",
			"method", name, "previous", prev.Extension.name, "extension", e.name)
	}
	r.methods[name] = Method{Name: name, Extension: e, Func: fn}
	return nil
}

// Forward registers a method that calls the interpreter function of the
// same name with its arguments unchanged and returns the unpacked value.
func (e *Extension) Forward(function string) error {
	return e.Register(function, func(ctx context.Context, c Caller, args ...string) (any, error) {
		resp, err := c.FunctionCall(ctx, function, args...)
		if err != nil {
			return nil, err
		}
		return resp.Unpack()
	})
}

// Methods returns e's method names in registration order.
func (e *Extension) Methods() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.order...)
}

// Lookup finds a method by name in the process-wide map.
func (r *Registry) Lookup(name string) (Method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[name]
	return m, ok
}

// Methods returns every registered method name, sorted.
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the extensions in registration order.
func (r *Registry) All() []*Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Extension(nil), r.extensions...)
}

// Get returns the extension called name.
func (r *Registry) Get(name string) (*Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.extensions {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// Select returns the named extensions in the order given. A nil names
// selects every extension.
func (r *Registry) Select(names []string) ([]*Extension, error) {
	if names == nil {
		return r.All(), nil
	}
	out := make([]*Extension, 0, len(names))
	for _, name := range names {
		e, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: no extension named %q", ErrInvalidExtension, name)
		}
		out = append(out, e)
	}
	return out, nil
}

// Lookup finds a method in Default.
func Lookup(name string) (Method, bool) { return Default.Lookup(name) }

// All returns Default's extensions.
func All() []*Extension { return Default.All() }
