package hue

import (
	"context"
	"fmt"
)

// AllLights applies a Session operation to every light the session knows about.
// Results are discarded. A failing light does not stop the others; the failures
// are returned together once every light has been tried.
type AllLights struct {
	session *Session
}

// Len returns how many lights a broadcast would reach.
func (a *AllLights) Len(ctx context.Context) (int, error) {
	ids, err := a.session.LightIDs(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// ForEach runs fn for each light id.
func (a *AllLights) ForEach(ctx context.Context, fn func(ctx context.Context, lightID string) error) error {
	return a.session.EachLight(ctx, func(ctx context.Context, lightID string) error {
		if err := fn(ctx, lightID); err != nil {
			return fmt.Errorf("light %s: %w", lightID, err)
		}
		return nil
	})
}

func (a *AllLights) Write(ctx context.Context, state LightState) error {
	return a.ForEach(ctx, func(ctx context.Context, lightID string) error {
		_, err := a.session.Write(ctx, lightID, state)
		return err
	})
}

func (a *AllLights) On(ctx context.Context) error {
	return a.ForEach(ctx, func(ctx context.Context, lightID string) error {
		_, err := a.session.On(ctx, lightID)
		return err
	})
}

func (a *AllLights) Off(ctx context.Context) error {
	return a.ForEach(ctx, func(ctx context.Context, lightID string) error {
		_, err := a.session.Off(ctx, lightID)
		return err
	})
}

func (a *AllLights) SetColor(ctx context.Context, c Colour, overrides LightState) error {
	return a.ForEach(ctx, func(ctx context.Context, lightID string) error {
		_, err := a.session.SetColor(ctx, lightID, c, overrides)
		return err
	})
}

func (a *AllLights) SetBrightColor(ctx context.Context, c Colour, overrides LightState) error {
	return a.ForEach(ctx, func(ctx context.Context, lightID string) error {
		_, err := a.session.SetBrightColor(ctx, lightID, c, overrides)
		return err
	})
}
