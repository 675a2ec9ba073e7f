package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/wheelibin/huectl/internal/hue"
	"github.com/wheelibin/huectl/internal/models"
	"github.com/wheelibin/huectl/internal/tui"
)

const allLights = "all"

var (
	randomSecret bool

	watchStatus    bool
	statusInterval time.Duration

	brightColour     bool
	transitionTenths uint16

	writeOn    bool
	writeOff   bool
	writeBri   uint8
	writeSat   uint8
	writeHue   uint16
	writeAlert string
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(colorCmd)
	rootCmd.AddCommand(writeCmd)

	pairCmd.Flags().BoolVar(&randomSecret, "random-secret", false, "pair with a random username instead of the hostname hash")

	statusCmd.Flags().BoolVar(&watchStatus, "watch", false, "keep polling and show a live table")
	statusCmd.Flags().DurationVar(&statusInterval, "interval", 2*time.Second, "poll interval for --watch")

	colorCmd.Flags().BoolVar(&brightColour, "bright", false, "force full lightness")
	colorCmd.Flags().Uint16Var(&transitionTenths, "transition", 0, "transition time in tenths of a second")

	writeCmd.Flags().BoolVar(&writeOn, "on", false, "turn the light on")
	writeCmd.Flags().BoolVar(&writeOff, "off", false, "turn the light off")
	writeCmd.Flags().Uint8Var(&writeBri, "bri", 0, "brightness 0-255")
	writeCmd.Flags().Uint8Var(&writeSat, "sat", 0, "saturation 0-255")
	writeCmd.Flags().Uint16Var(&writeHue, "hue", 0, "hue 0-65535")
	writeCmd.Flags().StringVar(&writeAlert, "alert", "", "alert effect: none, select or lselect")
	writeCmd.Flags().Uint16Var(&transitionTenths, "transition", 0, "transition time in tenths of a second")
	writeCmd.MarkFlagsMutuallyExclusive("on", "off")
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find the bridge on the local network",
	Example: `  huectl discover
  huectl discover --discovery all`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, err := discoverAndCache(cmd.Context())
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ip)
		return nil
	},
}

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Pair with the bridge",
	Long: `Register this client with the bridge.

The bridge only accepts new clients for a short time after its link button
is pressed. If it has not been pressed you are asked to press it and hit Enter.`,
	Args: cobra.NoArgs,
	RunE: runPair,
}

func runPair(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	secret := ""
	if randomSecret {
		secret = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	s, err := newSession(ctx, secret)
	if err != nil {
		return err
	}

	result, err := s.Authorize(ctx)
	if err != nil {
		return err
	}

	if result.LinkButtonNotPressed() {
		fmt.Fprintln(cmd.OutOrStdout(), "Press the link button on the bridge, then hit Enter.")
		if _, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n'); err != nil {
			return fmt.Errorf("waiting for Enter: %w", err)
		}
		result, err = s.Authorize(ctx)
		if err != nil {
			return err
		}
	}

	username, ok := result.Username()
	if !ok {
		if err := result.Err(); err != nil {
			return err
		}
		return errors.New("bridge did not return a username")
	}

	if bridgeCache != nil {
		err := bridgeCache.Save(models.Bridge{IP: s.IP(), Username: username, ClientID: s.ClientID()})
		if err != nil {
			logger.Warn("could not cache pairing", "err", err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Paired with %s as %s\n", s.IP(), username)
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of every light",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := newSession(ctx, "")
		if err != nil {
			return err
		}

		if watchStatus {
			return tui.Run(ctx, s, statusInterval)
		}

		rows, err := tui.FetchRows(ctx, s)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderLights(rows))
		return nil
	},
}

var onCmd = &cobra.Command{
	Use:   "on ID|all",
	Short: "Turn a light on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return onTarget(cmd.Context(), args[0],
			func(ctx context.Context, s *hue.Session, id string) (hue.WriteResult, error) {
				return s.On(ctx, id)
			},
			func(ctx context.Context, all *hue.AllLights) error {
				return all.On(ctx)
			})
	},
}

var offCmd = &cobra.Command{
	Use:   "off ID|all",
	Short: "Turn a light off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return onTarget(cmd.Context(), args[0],
			func(ctx context.Context, s *hue.Session, id string) (hue.WriteResult, error) {
				return s.Off(ctx, id)
			},
			func(ctx context.Context, all *hue.AllLights) error {
				return all.Off(ctx)
			})
	},
}

var colorCmd = &cobra.Command{
	Use:   "color ID|all HEX",
	Short: "Set a light to a colour",
	Example: `  huectl color 3 #ff8800
  huectl color all 0000ff --bright --transition 10`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := parseColour(args[1])
		if err != nil {
			return err
		}

		overrides := hue.NewLightState()
		if cmd.Flags().Changed("transition") {
			overrides = overrides.WithTransitionTime(transitionTenths)
		}

		return onTarget(cmd.Context(), args[0],
			func(ctx context.Context, s *hue.Session, id string) (hue.WriteResult, error) {
				if brightColour {
					return s.SetBrightColor(ctx, id, c, overrides)
				}
				return s.SetColor(ctx, id, c, overrides)
			},
			func(ctx context.Context, all *hue.AllLights) error {
				if brightColour {
					return all.SetBrightColor(ctx, c, overrides)
				}
				return all.SetColor(ctx, c, overrides)
			})
	},
}

var writeCmd = &cobra.Command{
	Use:   "write ID|all",
	Short: "Write raw state fields to a light",
	Example: `  huectl write 1 --on --bri 200
  huectl write all --alert select`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := stateFromFlags(cmd)
		if err != nil {
			return err
		}

		return onTarget(cmd.Context(), args[0],
			func(ctx context.Context, s *hue.Session, id string) (hue.WriteResult, error) {
				return s.Write(ctx, id, state)
			},
			func(ctx context.Context, all *hue.AllLights) error {
				return all.Write(ctx, state)
			})
	},
}

func stateFromFlags(cmd *cobra.Command) (hue.LightState, error) {
	flags := cmd.Flags()
	state := hue.NewLightState()

	if flags.Changed("on") {
		state = state.WithOn(writeOn)
	}
	if flags.Changed("off") {
		state = state.WithOn(!writeOff)
	}
	if flags.Changed("bri") {
		state = state.WithBrightness(writeBri)
	}
	if flags.Changed("sat") {
		state = state.WithSaturation(writeSat)
	}
	if flags.Changed("hue") {
		state = state.WithHue(writeHue)
	}
	if flags.Changed("alert") {
		alert := hue.Alert(writeAlert)
		if !lo.Contains([]hue.Alert{hue.AlertNone, hue.AlertSelect, hue.AlertLSelect}, alert) {
			return state, fmt.Errorf("unknown alert %q", writeAlert)
		}
		state = state.WithAlert(alert)
	}
	if flags.Changed("transition") {
		state = state.WithTransitionTime(transitionTenths)
	}

	if state.IsEmpty() {
		return state, errors.New("nothing to write, pass at least one state flag")
	}
	return state, nil
}

// onTarget runs one for a single light id, or all for the "all" target.
func onTarget(
	ctx context.Context,
	target string,
	one func(ctx context.Context, s *hue.Session, id string) (hue.WriteResult, error),
	all func(ctx context.Context, all *hue.AllLights) error,
) error {
	s, err := newSession(ctx, "")
	if err != nil {
		return err
	}

	if target == allLights {
		return all(ctx, s.AllLights())
	}

	result, err := one(ctx, s, target)
	if err != nil {
		return err
	}
	if errs := result.Errors(); len(errs) > 0 {
		return fmt.Errorf("bridge rejected %d field(s) of light %s: %s", len(errs), target, errs[0].Description)
	}
	return nil
}
