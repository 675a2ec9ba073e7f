package hue

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/wheelibin/huectl/internal/constants"
)

type LightStatus struct {
	On        bool      `json:"on"`
	Bri       int       `json:"bri"`
	Hue       int       `json:"hue"`
	Sat       int       `json:"sat"`
	Effect    string    `json:"effect,omitempty"`
	XY        []float64 `json:"xy,omitempty"`
	CT        int       `json:"ct,omitempty"`
	Alert     string    `json:"alert,omitempty"`
	ColorMode string    `json:"colormode,omitempty"`
	Reachable bool      `json:"reachable"`
}

type Light struct {
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	ModelID   string      `json:"modelid"`
	SwVersion string      `json:"swversion"`
	State     LightStatus `json:"state"`
}

// State is one full snapshot of the bridge as returned by GET /api/{username}/.
// Only the lights collection is decoded, everything else is kept raw.
type State struct {
	Lights map[string]Light
	Raw    map[string]json.RawMessage
}

func parseState(body []byte) (*State, error) {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &raw); err != nil {
		// the bridge answers a bad request with an array of error entries instead of its state
		if entries, entriesErr := parseEntries(body); entriesErr == nil {
			if detail, ok := firstError(entries); ok {
				return nil, fmt.Errorf("%w: %s", ErrProtocol, describeAPIError(detail))
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	lightsJSON, ok := raw["lights"]
	if !ok {
		return nil, fmt.Errorf("%w: no lights in bridge state", ErrProtocol)
	}

	lights := map[string]Light{}
	if err := json.Unmarshal(lightsJSON, &lights); err != nil {
		return nil, fmt.Errorf("%w: decoding lights: %w", ErrProtocol, err)
	}
	if lights == nil {
		return nil, fmt.Errorf("%w: lights is null", ErrProtocol)
	}

	return &State{Lights: lights, Raw: raw}, nil
}

type APIErrorDetail struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// ResponseEntry is one element of the array the bridge answers writes and pairing with.
type ResponseEntry struct {
	Success map[string]any  `json:"success,omitempty"`
	Error   *APIErrorDetail `json:"error,omitempty"`
}

func parseEntries(body []byte) ([]ResponseEntry, error) {
	entries := []ResponseEntry{}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return entries, nil
}

func firstError(entries []ResponseEntry) (APIErrorDetail, bool) {
	for _, e := range entries {
		if e.Error != nil {
			return *e.Error, true
		}
	}
	return APIErrorDetail{}, false
}

func describeAPIError(e APIErrorDetail) string {
	if e.Type == constants.APIErrorUnauthorizedUser {
		return fmt.Sprintf("%s (type %d), pair with the bridge first", e.Description, e.Type)
	}
	return fmt.Sprintf("%s (type %d)", e.Description, e.Type)
}

// WriteResult is the bridge's per-field answer to a light state write.
type WriteResult []ResponseEntry

func (r WriteResult) Errors() []APIErrorDetail {
	return lo.FilterMap(r, func(e ResponseEntry, _ int) (APIErrorDetail, bool) {
		if e.Error == nil {
			return APIErrorDetail{}, false
		}
		return *e.Error, true
	})
}

type AuthorizeResult []ResponseEntry

// Username returns the username the bridge granted, if pairing succeeded.
func (r AuthorizeResult) Username() (string, bool) {
	for _, e := range r {
		if u, ok := e.Success["username"].(string); ok {
			return u, true
		}
	}
	return "", false
}

func (r AuthorizeResult) LinkButtonNotPressed() bool {
	return lo.ContainsBy(r, func(e ResponseEntry) bool {
		return e.Error != nil && e.Error.Type == constants.APIErrorLinkButtonNotPressed
	})
}

// Err returns the first error entry as a Go error, or nil.
func (r AuthorizeResult) Err() error {
	if e, ok := firstError(r); ok {
		return fmt.Errorf("pairing failed (type %d): %s", e.Type, e.Description)
	}
	return nil
}
