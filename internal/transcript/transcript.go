// Package transcript records daemon request/response pairs as a stream of
// CBOR entries and replays them in place of a live interpreter.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/lydakis/ahkx/internal/message"
)

var (
	// ErrMismatch reports a replayed call that differs from the recording.
	ErrMismatch = errors.New("transcript mismatch")
	// ErrExhausted reports a call past the end of the recording.
	ErrExhausted = errors.New("transcript exhausted")
)

// Entry is one recorded call.
type Entry struct {
	Seq      uint64   `cbor:"1,keyasint"`
	Time     int64    `cbor:"2,keyasint"`
	Function string   `cbor:"3,keyasint"`
	Args     []string `cbor:"4,keyasint,omitempty"`
	TOM      string   `cbor:"5,keyasint"`
	Kind     string   `cbor:"6,keyasint"`
	Payload  []byte   `cbor:"7,keyasint"`
}

// Request returns the recorded request.
func (e Entry) Request() message.Request {
	return message.Request{Function: e.Function, Args: e.Args}
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("transcript: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Recorder appends entries to a file.
type Recorder struct {
	mu  sync.Mutex
	f   *os.File
	enc *cbor.Encoder
	seq uint64
	now func() time.Time
}

// Create opens path for appending and returns a Recorder writing to it.
func Create(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening transcript %s: %w", path, err)
	}
	return &Recorder{f: f, enc: encMode.NewEncoder(f), now: time.Now}, nil
}

// Record appends one request/response pair.
func (r *Recorder) Record(req message.Request, resp message.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return errors.New("transcript: recorder is closed")
	}
	r.seq++
	entry := Entry{
		Seq:      r.seq,
		Time:     r.now().UnixNano(),
		Function: req.Function,
		Args:     req.Args,
		Payload:  resp.Payload,
	}
	if resp.Kind != nil {
		entry.TOM = resp.Kind.TOM
		entry.Kind = resp.Kind.Name
	}
	if err := r.enc.Encode(entry); err != nil {
		return fmt.Errorf("transcript: encoding entry %d: %w", entry.Seq, err)
	}
	return nil
}

// Close flushes and closes the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// Read decodes every entry from rd.
func Read(rd io.Reader) ([]Entry, error) {
	dec := cbor.NewDecoder(rd)
	var entries []Entry
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return entries, fmt.Errorf("transcript: unmarshal entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
}

// ReadAll decodes every entry in the file at path.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Replayer answers calls from recorded entries, in order. Each call must
// match the next entry's function and arguments.
type Replayer struct {
	registry *message.Registry

	mu      sync.Mutex
	entries []Entry
	next    int
}

// NewReplayer returns a replayer over entries. A nil registry means
// message.Default.
func NewReplayer(entries []Entry, registry *message.Registry) *Replayer {
	if registry == nil {
		registry = message.Default
	}
	return &Replayer{registry: registry, entries: entries}
}

// FunctionCall returns the next recorded response.
func (r *Replayer) FunctionCall(ctx context.Context, name string, args ...string) (message.Response, error) {
	if err := ctx.Err(); err != nil {
		return message.Response{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next >= len(r.entries) {
		return message.Response{}, fmt.Errorf("%w: call %s after %d entries", ErrExhausted, name, len(r.entries))
	}
	e := r.entries[r.next]
	got := message.Request{Function: name, Args: args}
	if name != e.Function || !slices.Equal(args, e.Args) {
		return message.Response{}, fmt.Errorf("%w: entry %d recorded %q, got %q", ErrMismatch, e.Seq, e.Request(), got)
	}
	r.next++

	kind, ok := r.registry.Lookup(e.TOM)
	if !ok || kind.Name != e.Kind {
		kind, ok = r.registry.Kind(e.Kind)
	}
	if !ok {
		return message.Response{}, fmt.Errorf("%w: entry %d has unknown kind %s (%s)", message.ErrFraming, e.Seq, e.Kind, e.TOM)
	}
	return message.Response{Kind: kind, Payload: e.Payload}, nil
}

// Remaining returns how many entries have not been replayed.
func (r *Replayer) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries) - r.next
}
