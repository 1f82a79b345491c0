package gifgen

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Effect is the per-frame transform.
type Effect int

const (
	// EffectSpin rotates the image a full turn over the animation.
	EffectSpin Effect = iota
	// EffectPulse grows and shrinks the image.
	EffectPulse
	// EffectFade dims the image and brings it back.
	EffectFade
)

const (
	pulseAmplitude = 0.15
	fadeDepth      = 60.0
)

var effectNames = map[Effect]string{
	EffectSpin:  "spin",
	EffectPulse: "pulse",
	EffectFade:  "fade",
}

func (e Effect) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}

	return fmt.Sprintf("Effect(%d)", int(e))
}

// ParseEffect resolves an effect by name. The empty string selects spin.
func ParseEffect(name string) (Effect, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return EffectSpin, nil
	}
	for e, n := range effectNames {
		if n == name {
			return e, nil
		}
	}

	return 0, fmt.Errorf("unknown effect %q (want spin, pulse or fade)", name)
}

// phase is the position of frame i in a full cycle of n frames, in radians.
func phase(i, n int) float64 {
	return 2 * math.Pi * float64(i) / float64(n)
}

func (e Effect) apply(src image.Image, i, n int, bg color.Color) image.Image {
	switch e {
	case EffectPulse:
		scale := 1 + pulseAmplitude*math.Sin(phase(i, n))
		w := int(math.Round(float64(src.Bounds().Dx()) * scale))
		h := int(math.Round(float64(src.Bounds().Dy()) * scale))
		if w < 1 || h < 1 {
			return src
		}

		return imaging.Resize(src, w, h, imaging.Lanczos)
	case EffectFade:
		// 0 at the first frame, -fadeDepth halfway through.
		return imaging.AdjustBrightness(src, -fadeDepth*(1-math.Cos(phase(i, n)))/2)
	default:
		// imaging rotates counter-clockwise; negate for a clockwise spin.
		return imaging.Rotate(src, -360*float64(i)/float64(n), bg)
	}
}

// ParseColor accepts "#rrggbb", "#rrggbbaa", "white", "black" or
// "transparent". The empty string is white.
func ParseColor(s string) (color.Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "white":
		return color.White, nil
	case "black":
		return color.Black, nil
	case "transparent":
		return color.Transparent, nil
	}

	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}

	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
