package message

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Point is an (x, y) screen coordinate.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Rect is a window position and size.
type Rect struct {
	X, Y, Width, Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", r.X, r.Y, r.Width, r.Height)
}

// ControlRef names one control of a window: its handle and its class name
// (ClassNN form, e.g. "Edit1").
type ControlRef struct {
	HWND  string
	Class string
}

// ControlList is the unpacked form of a WindowControlList response: the
// window that owns the controls and the controls themselves.
type ControlList struct {
	Window   string
	Controls []ControlRef
}

func framingf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrFraming}, args...)...)
}

func unpackNoValue(payload []byte) (any, error) {
	if string(payload) != Sentinel {
		return nil, framingf("NoValue payload %q is not the sentinel", payload)
	}
	return nil, nil
}

func unpackString(payload []byte) (any, error) {
	return string(payload), nil
}

func unpackWindow(payload []byte) (any, error) {
	id := strings.TrimSpace(string(payload))
	if id == "" {
		return nil, framingf("empty window id")
	}
	return id, nil
}

func unpackInteger(payload []byte) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return nil, framingf("Integer payload %q: %v", payload, err)
	}
	return n, nil
}

func unpackFloat(payload []byte) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		return nil, framingf("Float payload %q: %v", payload, err)
	}
	return f, nil
}

func unpackBoolean(payload []byte) (any, error) {
	switch strings.TrimSpace(string(payload)) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return nil, framingf("Boolean payload %q is not 0 or 1", payload)
	}
}

// parseIntTuple reads "(1, 2, 3)". A trailing comma is allowed.
func parseIntTuple(payload []byte) ([]int, error) {
	s := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, framingf("tuple payload %q is not parenthesized", payload)
	}
	s = strings.TrimSpace(s[1 : len(s)-1])
	out := []int{}
	if s == "" {
		return out, nil
	}
	parts := strings.Split(s, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" && i == len(parts)-1 {
			break
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, framingf("tuple element %q: %v", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func unpackTuple(payload []byte) (any, error) {
	return parseIntTuple(payload)
}

func unpackCoordinate(payload []byte) (any, error) {
	vals, err := parseIntTuple(payload)
	if err != nil {
		return nil, err
	}
	if len(vals) != 2 {
		return nil, framingf("Coordinate payload %q has %d elements", payload, len(vals))
	}
	return Point{X: vals[0], Y: vals[1]}, nil
}

func unpackPosition(payload []byte) (any, error) {
	vals, err := parseIntTuple(payload)
	if err != nil {
		return nil, err
	}
	if len(vals) != 4 {
		return nil, framingf("Position payload %q has %d elements", payload, len(vals))
	}
	return Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func unpackWindowIDList(payload []byte) (any, error) {
	ids := []string{}
	for _, id := range strings.Split(string(payload), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// unpackWindowControlList reads the owning window's id on the first line,
// then one "hwnd,class" pair per line.
func unpackWindowControlList(payload []byte) (any, error) {
	lines := strings.Split(string(payload), "\n")
	owner := strings.TrimSpace(strings.TrimRight(lines[0], "\r"))
	if owner == "" || strings.Contains(owner, ",") {
		return nil, framingf("control list owner %q is not a window id", owner)
	}
	list := ControlList{Window: owner, Controls: []ControlRef{}}
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		hwnd, class, ok := strings.Cut(line, ",")
		if !ok {
			return nil, framingf("control entry %q is not an hwnd,class pair", line)
		}
		list.Controls = append(list.Controls, ControlRef{HWND: strings.TrimSpace(hwnd), Class: strings.TrimSpace(class)})
	}
	return list, nil
}

func unpackException(payload []byte) (any, error) {
	return nil, &ExecutionError{Message: string(payload)}
}

func unpackTimeout(payload []byte) (any, error) {
	return nil, &TimeoutError{Message: string(payload)}
}

func unpackBinary(payload []byte) (any, error) {
	data, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(payload)))
	if err != nil {
		return nil, framingf("Binary payload: %v", err)
	}
	return data, nil
}
