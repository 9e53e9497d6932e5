package engine

import (
	"context"

	"github.com/lydakis/ahkx/internal/message"
)

// Region is a screen rectangle given by two corners.
type Region struct {
	X1, Y1, X2, Y2 int
}

func (r Region) args() []string {
	return []string{itoa(r.X1), itoa(r.Y1), itoa(r.X2), itoa(r.Y2)}
}

// PixelGetColor returns the color at (x, y) as "0xBBGGRR", or "0xRRGGBB"
// with the "RGB" option.
func (e *Engine) PixelGetColor(ctx context.Context, x, y int, coordMode, options string) (string, error) {
	return call[string](ctx, e, "PixelGetColor", itoa(x), itoa(y), coordMode, options)
}

// PixelSearch finds the first pixel in r within variation of color.
// found is false when no pixel matched.
func (e *Engine) PixelSearch(ctx context.Context, r Region, color string, variation int, coordMode, options string) (pt message.Point, found bool, err error) {
	args := append(r.args(), color, itoa(variation), coordMode, options)
	return callOptional[message.Point](ctx, e, "PixelSearch", args...)
}

// ImageSearch finds image inside r. image may carry the interpreter's
// "*n" variation prefix.
func (e *Engine) ImageSearch(ctx context.Context, r Region, image, coordMode string) (pt message.Point, found bool, err error) {
	args := append(r.args(), coordMode, image)
	return callOptional[message.Point](ctx, e, "ImageSearch", args...)
}
