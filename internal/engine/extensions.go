package engine

import (
	"context"
	"fmt"

	"github.com/lydakis/ahkx/internal/extension"
)

// BoundMethod is an extension method bound to an engine.
type BoundMethod func(ctx context.Context, args ...string) (any, error)

// Extensions returns the extensions loaded into the engine.
func (e *Engine) Extensions() []*extension.Extension {
	return append([]*extension.Extension(nil), e.extensions...)
}

func (e *Engine) method(name string) (extension.Method, bool) {
	m, ok := e.registry.Lookup(name)
	if !ok {
		return extension.Method{}, false
	}
	for _, ext := range e.extensions {
		if ext == m.Extension {
			return m, true
		}
	}
	return extension.Method{}, false
}

// Method returns the extension method name bound to e.
func (e *Engine) Method(name string) (BoundMethod, bool) {
	m, ok := e.method(name)
	if !ok {
		return nil, false
	}
	return func(ctx context.Context, args ...string) (any, error) {
		return m.Call(ctx, e, args...)
	}, true
}

// Call runs the extension method name with args.
func (e *Engine) Call(ctx context.Context, name string, args ...string) (any, error) {
	m, ok := e.method(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", extension.ErrUnknownMethod, name)
	}
	if e.isClosed() {
		return nil, ErrClosed
	}
	return m.Call(ctx, e, args...)
}

// Methods returns the names of the extension methods available on e.
func (e *Engine) Methods() []string {
	var names []string
	for _, ext := range e.extensions {
		for _, name := range ext.Methods() {
			if m, ok := e.method(name); ok && m.Extension == ext {
				names = append(names, name)
			}
		}
	}
	return names
}
