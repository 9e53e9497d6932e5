package message

import (
	"fmt"
	"sync"
)

// UnpackFunc converts a response payload into its domain value.
type UnpackFunc func(payload []byte) (any, error)

// Kind is one response variant: its name, its type-order mark, and the
// function that unpacks its payload.
type Kind struct {
	Name   string
	TOM    string
	unpack UnpackFunc
}

func (k *Kind) String() string {
	return k.Name + "(" + k.TOM + ")"
}

// Names of the built-in variants.
const (
	NameTuple             = "Tuple"
	NameCoordinate        = "Coordinate"
	NameInteger           = "Integer"
	NameBoolean           = "Boolean"
	NameString            = "String"
	NameWindowIDList      = "WindowIDList"
	NameNoValue           = "NoValue"
	NameException         = "Exception"
	NameWindowControlList = "WindowControlList"
	NameWindow            = "Window"
	NamePosition          = "Position"
	NameFloat             = "Float"
	NameTimeout           = "Timeout"
	NameBinary            = "Binary"
)

// builtins lists the built-in variants in registration order. The bootstrap
// scripts are rendered from the same table, so the order must not change;
// new variants go at the end.
var builtins = []struct {
	name   string
	unpack UnpackFunc
}{
	{NameTuple, unpackTuple},
	{NameCoordinate, unpackCoordinate},
	{NameInteger, unpackInteger},
	{NameBoolean, unpackBoolean},
	{NameString, unpackString},
	{NameWindowIDList, unpackWindowIDList},
	{NameNoValue, unpackNoValue},
	{NameException, unpackException},
	{NameWindowControlList, unpackWindowControlList},
	{NameWindow, unpackWindow},
	{NamePosition, unpackPosition},
	{NameFloat, unpackFloat},
	{NameTimeout, unpackTimeout},
	{NameBinary, unpackBinary},
}

// builtinKinds is built by a variable initializer, not init, so that it is
// ready before Default and the exported kinds below are initialized.
var builtinKinds = newBuiltinKinds()

func newBuiltinKinds() []*Kind {
	kinds := make([]*Kind, 0, len(builtins))
	for i, b := range builtins {
		tom, err := tomAt(i)
		if err != nil {
			panic(err)
		}
		kinds = append(kinds, &Kind{Name: b.name, TOM: tom, unpack: b.unpack})
	}
	return kinds
}

func builtinKind(name string) *Kind {
	for _, k := range builtinKinds {
		if k.Name == name {
			return k
		}
	}
	panic("message: no built-in kind " + name)
}

// Built-in kinds, shared by every Registry.
var (
	Tuple             = builtinKind(NameTuple)
	Coordinate        = builtinKind(NameCoordinate)
	Integer           = builtinKind(NameInteger)
	Boolean           = builtinKind(NameBoolean)
	String            = builtinKind(NameString)
	WindowIDList      = builtinKind(NameWindowIDList)
	NoValue           = builtinKind(NameNoValue)
	Exception         = builtinKind(NameException)
	WindowControlList = builtinKind(NameWindowControlList)
	Window            = builtinKind(NameWindow)
	Position          = builtinKind(NamePosition)
	Float             = builtinKind(NameFloat)
	Timeout           = builtinKind(NameTimeout)
	Binary            = builtinKind(NameBinary)
)

// Registry maps type-order marks to response kinds. Kinds receive marks in
// registration order, so two registries built by the same sequence of
// Register calls agree on every mark.
type Registry struct {
	mu     sync.RWMutex
	kinds  []*Kind
	byTOM  map[string]*Kind
	byName map[string]*Kind
}

// NewRegistry returns a registry holding the built-in kinds.
func NewRegistry() *Registry {
	r := &Registry{
		byTOM:  make(map[string]*Kind, len(builtinKinds)),
		byName: make(map[string]*Kind, len(builtinKinds)),
	}
	for _, k := range builtinKinds {
		r.add(k)
	}
	return r
}

// Default is the registry used by the package-level helpers.
var Default = NewRegistry()

func (r *Registry) add(k *Kind) {
	r.kinds = append(r.kinds, k)
	r.byTOM[k.TOM] = k
	r.byName[k.Name] = k
}

// Register appends a new kind and assigns it the next unused mark.
func (r *Registry) Register(name string, unpack UnpackFunc) (*Kind, error) {
	if name == "" {
		return nil, fmt.Errorf("registering response kind: empty name")
	}
	if unpack == nil {
		return nil, fmt.Errorf("registering response kind %s: nil unpack function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("registering response kind %s: already registered", name)
	}
	tom, err := tomAt(len(r.kinds))
	if err != nil {
		return nil, fmt.Errorf("registering response kind %s: %w", name, err)
	}
	k := &Kind{Name: name, TOM: tom, unpack: unpack}
	r.add(k)
	return k, nil
}

// Lookup returns the kind identified by tom.
func (r *Registry) Lookup(tom string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.byTOM[tom]
	return k, ok
}

// Kind returns the kind registered under name.
func (r *Registry) Kind(name string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.byName[name]
	return k, ok
}

// Kinds returns every kind in registration order.
func (r *Registry) Kinds() []*Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Kind(nil), r.kinds...)
}
