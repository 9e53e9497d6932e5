// Package message implements the framing spoken between the host and the
// interpreter: request lines going in, type-tagged response frames coming out.
package message

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// Sentinel is the NoValue payload and the hotkey keepalive line.
	Sentinel = "\uE000"
	// ClipboardMarker prefixes hotkey lines that report a clipboard change.
	ClipboardMarker = "\uE001"
)

// Request is one call into the interpreter.
type Request struct {
	Function string
	Args     []string
}

// Encode returns the wire line for the request: the function name, then each
// argument after a comma, with literal newlines written as "`n".
func (q Request) Encode() []byte {
	var b bytes.Buffer
	b.WriteString(q.Function)
	for _, arg := range q.Args {
		b.WriteByte(',')
		b.WriteString(strings.ReplaceAll(arg, "\n", "`n"))
	}
	b.WriteByte('\n')
	return b.Bytes()
}

func (q Request) String() string {
	return strings.TrimSuffix(string(q.Encode()), "\n")
}

// Response is one decoded frame.
type Response struct {
	Kind    *Kind
	Payload []byte
}

// NewResponse builds a response of kind k carrying a text payload.
func NewResponse(k *Kind, payload string) Response {
	return Response{Kind: k, Payload: []byte(payload)}
}

// NoValueResponse is the canonical empty response.
func NoValueResponse() Response {
	return NewResponse(NoValue, Sentinel)
}

// IsNoValue reports whether the response carries no value.
func (r Response) IsNoValue() bool {
	return r.Kind != nil && r.Kind.Name == NameNoValue
}

// Unpack returns the domain value of the response. Exception and Timeout
// responses unpack to *ExecutionError and *TimeoutError.
func (r Response) Unpack() (any, error) {
	if r.Kind == nil {
		return nil, framingf("response has no kind")
	}
	return r.Kind.unpack(r.Payload)
}

// As unpacks r and asserts the value to T.
func As[T any](r Response) (T, error) {
	var zero T
	v, err := r.Unpack()
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s response unpacks to %T, not %T", ErrFraming, r.Kind.Name, v, zero)
	}
	return out, nil
}

// Encode returns the wire form of r: TOM, newline count, payload.
func Encode(r Response) []byte {
	var b bytes.Buffer
	b.WriteString(r.Kind.TOM)
	b.WriteByte('\n')
	b.WriteString(strconv.Itoa(bytes.Count(r.Payload, []byte{'\n'})))
	b.WriteByte('\n')
	b.Write(r.Payload)
	b.WriteByte('\n')
	return b.Bytes()
}

// LineReader yields newline-terminated lines. An empty result means the
// stream ended.
type LineReader interface {
	ReadLine() []byte
}

// Decode parses one frame from buf using the default registry.
func Decode(buf []byte) (Response, error) {
	return Default.Decode(buf)
}

// DecodeFrom reads one frame from lr using the default registry.
func DecodeFrom(lr LineReader) (Response, error) {
	return Default.DecodeFrom(lr)
}

// Decode parses one frame from buf. Bytes after the frame are ignored.
func (r *Registry) Decode(buf []byte) (Response, error) {
	return r.DecodeFrom(&sliceLines{buf: buf})
}

// DecodeFrom reads one frame line by line. A stream that ends before the frame
// is complete yields io.ErrUnexpectedEOF.
func (r *Registry) DecodeFrom(lr LineReader) (Response, error) {
	tomLine, err := nextLine(lr)
	if err != nil {
		return Response{}, err
	}
	tom := strings.TrimRight(string(tomLine), "\r\n")
	kind, ok := r.Lookup(tom)
	if !ok {
		return Response{}, framingf("unknown type-order mark %q", tom)
	}

	countLine, err := nextLine(lr)
	if err != nil {
		return Response{}, err
	}
	n, err := strconv.Atoi(strings.TrimRight(string(countLine), "\r\n"))
	if err != nil || n < 0 {
		return Response{}, framingf("malformed line count %q", strings.TrimRight(string(countLine), "\r\n"))
	}

	var payload bytes.Buffer
	for i := 0; i <= n; i++ {
		part, err := nextLine(lr)
		if err != nil {
			return Response{}, err
		}
		payload.Write(part)
	}
	body := bytes.TrimSuffix(payload.Bytes(), []byte{'\n'})
	return Response{Kind: kind, Payload: body}, nil
}

func nextLine(lr LineReader) ([]byte, error) {
	line := lr.ReadLine()
	if len(line) == 0 || line[len(line)-1] != '\n' {
		return nil, io.ErrUnexpectedEOF
	}
	return line, nil
}

type sliceLines struct {
	buf []byte
}

func (s *sliceLines) ReadLine() []byte {
	if len(s.buf) == 0 {
		return nil
	}
	i := bytes.IndexByte(s.buf, '\n')
	if i < 0 {
		line := s.buf
		s.buf = nil
		return line
	}
	line := s.buf[:i+1]
	s.buf = s.buf[i+1:]
	return line
}
