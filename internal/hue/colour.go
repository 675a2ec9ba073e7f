package hue

import "math"

// Colour is anything that can describe itself in HSL. colorful.Color satisfies it.
// h is in degrees [0, 360), s and l in [0, 1].
type Colour interface {
	Hsl() (h, s, l float64)
}

// hsl is a fixed HSL value, used when the lightness of a colour is overridden.
type hsl struct {
	h, s, l float64
}

func (c hsl) Hsl() (float64, float64, float64) {
	return c.h, c.s, c.l
}

func withLightness(c Colour, l float64) Colour {
	h, s, _ := c.Hsl()
	return hsl{h: h, s: s, l: l}
}

// colourState converts a colour to the bridge's ranges: bri = l*255, sat = s*255,
// hue = degrees*182. Values are truncated, not rounded.
func colourState(c Colour) LightState {
	h, s, l := c.Hsl()
	return NewLightState().
		WithBrightness(uint8(clamp(l*255, 0, math.MaxUint8))).
		WithSaturation(uint8(clamp(s*255, 0, math.MaxUint8))).
		WithHue(uint16(clamp(h*182, 0, math.MaxUint16)))
}

func clamp(v, min, max float64) float64 {
	if math.IsNaN(v) || v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
