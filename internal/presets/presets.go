// Package presets holds long running light effects built on top of a broadcast to all lights.
// Every effect runs until its context is cancelled or a broadcast fails.
package presets

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/wheelibin/huectl/internal/constants"
	"github.com/wheelibin/huectl/internal/hue"
)

type broadcaster interface {
	Len(ctx context.Context) (int, error)
	Write(ctx context.Context, state hue.LightState) error
	SetBrightColor(ctx context.Context, c hue.Colour, overrides hue.LightState) error
}

// ErrNoLights is returned by effects that would otherwise spin without ever reaching the bridge.
var ErrNoLights = errors.New("no lights known to the bridge")

var (
	Blue = colorful.Color{R: 0, G: 0, B: 1}
	Red  = colorful.Color{R: 1, G: 0, B: 0}
)

type Presets struct {
	logger *log.Logger
	lights broadcaster
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewPresets(logger *log.Logger, lights broadcaster) *Presets {
	return &Presets{logger: logger, lights: lights, sleep: sleep}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CycleThruColorList sets every light to each colour of the list in turn, wrapping around.
// colours is not modified.
func (p *Presets) CycleThruColorList(ctx context.Context, colours []hue.Colour, interval time.Duration) error {
	if len(colours) == 0 {
		return errors.New("no colours to cycle through")
	}

	for i := 0; ; i++ {
		if err := p.lights.SetBrightColor(ctx, colours[i%len(colours)], hue.NewLightState()); err != nil {
			return err
		}
		if err := p.sleep(ctx, interval); err != nil {
			return err
		}
	}
}

// CycleThruHueRange steps the raw hue through 0..65535 in steps of 5000, forever.
func (p *Presets) CycleThruHueRange(ctx context.Context, interval time.Duration) error {
	for {
		for h := 0; h <= constants.HueRangeMax; h += constants.HueRangeStep {
			if err := p.lights.Write(ctx, hue.NewLightState().WithHue(uint16(h))); err != nil {
				return err
			}
			if err := p.sleep(ctx, interval); err != nil {
				return err
			}
		}
		p.logger.Debug("hue range wrapped")
	}
}

// PoliceLights alternates blue and red with hard switches.
func (p *Presets) PoliceLights(ctx context.Context) error {
	colours := []hue.Colour{Blue, Red}
	noFade := hue.NewLightState().WithTransitionTime(0)

	for i := 0; ; i++ {
		if err := p.lights.SetBrightColor(ctx, colours[i%len(colours)], noFade); err != nil {
			return err
		}
		if err := p.sleep(ctx, constants.PoliceLightsInterval); err != nil {
			return err
		}
	}
}

// Strobe blacks every light out once, then flashes them as fast as writes are admitted.
func (p *Presets) Strobe(ctx context.Context) error {
	n, err := p.lights.Len(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoLights
	}

	if err := p.lights.Write(ctx, hue.NewLightState().WithBrightness(0)); err != nil {
		return err
	}

	flash := hue.NewLightState().
		WithBrightness(255).
		WithAlert(hue.AlertSelect).
		WithTransitionTime(0)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.lights.Write(ctx, flash); err != nil {
			return err
		}
	}
}
