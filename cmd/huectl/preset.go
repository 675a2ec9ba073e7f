package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
	"github.com/wheelibin/huectl/internal/constants"
	"github.com/wheelibin/huectl/internal/hue"
	"github.com/wheelibin/huectl/internal/presets"
)

var presetInterval time.Duration

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetColorsCmd)
	presetCmd.AddCommand(presetHuesCmd)
	presetCmd.AddCommand(presetPoliceCmd)
	presetCmd.AddCommand(presetStrobeCmd)

	presetColorsCmd.Flags().DurationVar(&presetInterval, "interval", constants.DefaultPresetInterval, "time each colour is shown")
	presetHuesCmd.Flags().DurationVar(&presetInterval, "interval", constants.DefaultPresetInterval, "time each hue step is shown")
}

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Run a light effect on every light until interrupted",
}

var presetColorsCmd = &cobra.Command{
	Use:     "colors HEX...",
	Short:   "Cycle every light through a list of colours",
	Example: `  huectl preset colors ff0000 00ff00 0000ff --interval 500ms`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		colours := make([]hue.Colour, 0, len(args))
		for _, arg := range args {
			c, err := parseColour(arg)
			if err != nil {
				return err
			}
			colours = append(colours, c)
		}
		return runPreset(cmd.Context(), func(ctx context.Context, p *presets.Presets) error {
			return p.CycleThruColorList(ctx, colours, presetInterval)
		})
	},
}

var presetHuesCmd = &cobra.Command{
	Use:   "hues",
	Short: "Sweep every light through the hue range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreset(cmd.Context(), func(ctx context.Context, p *presets.Presets) error {
			return p.CycleThruHueRange(ctx, presetInterval)
		})
	},
}

var presetPoliceCmd = &cobra.Command{
	Use:   "police",
	Short: "Alternate every light between blue and red",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreset(cmd.Context(), func(ctx context.Context, p *presets.Presets) error {
			return p.PoliceLights(ctx)
		})
	},
}

var presetStrobeCmd = &cobra.Command{
	Use:   "strobe",
	Short: "Flash every light as fast as the bridge allows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreset(cmd.Context(), func(ctx context.Context, p *presets.Presets) error {
			return p.Strobe(ctx)
		})
	},
}

// runPreset runs an effect until the command context is cancelled.
// Cancellation is the normal way out so it is not reported as an error.
func runPreset(ctx context.Context, effect func(ctx context.Context, p *presets.Presets) error) error {
	s, err := newSession(ctx, "")
	if err != nil {
		return err
	}

	logger.Info("running preset, ctrl+c to stop")
	err = effect(ctx, presets.NewPresets(logger, s.AllLights()))
	if errors.Is(err, context.Canceled) {
		logger.Info("preset stopped")
		return nil
	}
	return err
}

// parseColour accepts web colours with or without the leading #, in long or short form.
func parseColour(s string) (hue.Colour, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}
