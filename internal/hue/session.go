package hue

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/wheelibin/huectl/internal/concurrency"
	"github.com/wheelibin/huectl/internal/constants"
)

type Transport interface {
	Request(ctx context.Context, verb string, url string, body any) ([]byte, error)
}

type Limiter interface {
	Wait(ctx context.Context) error
}

// Discoverer finds the bridge on the local network and returns its IPv4 address.
type Discoverer interface {
	Discover(ctx context.Context) (string, error)
}

type Options struct {
	// IP of the bridge. When empty the Discoverer is asked for it.
	IP string
	// ClientID is a user agent like string describing this client.
	ClientID string
	// Secret is the username used to authenticate. Defaults to the SHA-1 of the hostname.
	Secret string

	Timeout    time.Duration
	Discoverer Discoverer
	Limiter    Limiter
	Transport  Transport
	Hostname   func() (string, error)
}

// Session talks to one bridge as one authorised client.
type Session struct {
	logger  *log.Logger
	api     Transport
	limiter Limiter

	ip       string
	clientID string
	secret   string

	mu    sync.RWMutex
	state *State
}

func NewSession(ctx context.Context, logger *log.Logger, opts Options) (*Session, error) {

	ip := opts.IP
	if ip == "" {
		if opts.Discoverer == nil {
			return nil, errors.New("no bridge ip given and no way to discover one")
		}
		discovered, err := opts.Discoverer.Discover(ctx)
		if err != nil {
			return nil, fmt.Errorf("error discovering bridge: %w", err)
		}
		logger.Info("Discovered hue bridge", "ip", discovered)
		ip = discovered
	}

	clientID := opts.ClientID
	if clientID == "" {
		clientID = constants.DefaultClientID
	}

	secret := opts.Secret
	if secret == "" {
		hostname := opts.Hostname
		if hostname == nil {
			hostname = os.Hostname
		}
		name, err := hostname()
		if err != nil {
			return nil, fmt.Errorf("error reading hostname for default secret: %w", err)
		}
		secret = SecretFromHostname(name)
	}

	api := opts.Transport
	if api == nil {
		api = NewAPIService(logger, opts.Timeout)
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = concurrency.NewSlidingWindowLimiter(
			constants.DefaultRateLimitMax,
			constants.DefaultRateLimitWindow,
			constants.DefaultRateLimitPollInterval,
		)
	}

	return &Session{
		logger:   logger,
		api:      api,
		limiter:  limiter,
		ip:       ip,
		clientID: clientID,
		secret:   secret,
	}, nil
}

// SecretFromHostname is the default username: the hex SHA-1 of the trimmed hostname.
func SecretFromHostname(hostname string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(hostname)))
	return hex.EncodeToString(sum[:])
}

func (s *Session) IP() string       { return s.ip }
func (s *Session) ClientID() string { return s.clientID }
func (s *Session) Secret() string   { return s.secret }

func (s *Session) url(path string) string {
	return fmt.Sprintf("http://%s/api/%s%s", s.ip, s.secret, path)
}

// Request makes an authorised request relative to http://{ip}/api/{secret}.
// path should include its leading slash.
func (s *Session) Request(ctx context.Context, verb string, path string, body any) ([]byte, error) {
	url := s.url(path)
	data, err := s.api.Request(ctx, verb, url, body)
	if err != nil {
		return nil, &APIError{Op: strings.ToLower(verb), URL: url, Err: err}
	}
	return data, nil
}

// Authorize pairs this client with the bridge. The bridge only accepts it after its link
// button has been pressed, so callers usually call it once, ask for the button press,
// then call it again.
func (s *Session) Authorize(ctx context.Context) (AuthorizeResult, error) {
	url := fmt.Sprintf("http://%s/api/", s.ip)
	body := map[string]string{
		"devicetype": s.clientID,
		"username":   s.secret,
	}

	data, err := s.api.Request(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, &APIError{Op: "authorize", URL: url, Err: err}
	}

	entries, err := parseEntries(data)
	if err != nil {
		return nil, &APIError{Op: "authorize", URL: url, Err: err}
	}

	result := AuthorizeResult(entries)
	if username, ok := result.Username(); ok {
		s.logger.Info("Paired with hue bridge", "ip", s.ip, "username", username)
	}
	return result, nil
}

// PollState fetches the whole bridge state and replaces the cached snapshot.
func (s *Session) PollState(ctx context.Context) (*State, error) {
	data, err := s.Request(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}

	state, err := parseState(data)
	if err != nil {
		return nil, &APIError{Op: "poll", URL: s.url("/"), Err: err}
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.logger.Debug("Polled bridge state", "lights", len(state.Lights))
	return state, nil
}

// Lights returns the lights of the last snapshot, polling first if there is none.
func (s *Session) Lights(ctx context.Context) (map[string]Light, error) {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	if state == nil {
		var err error
		state, err = s.PollState(ctx)
		if err != nil {
			return nil, err
		}
	}

	return maps.Clone(state.Lights), nil
}

// LightIDs returns the ids of the known lights in ascending order.
func (s *Session) LightIDs(ctx context.Context) ([]string, error) {
	lights, err := s.Lights(ctx)
	if err != nil {
		return nil, err
	}
	ids := lo.Keys(lights)
	slices.SortFunc(ids, compareLightIDs)
	return ids, nil
}

// bridge ids are decimal strings, so order by length first
func compareLightIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

// EachLight calls fn once for every known light id.
func (s *Session) EachLight(ctx context.Context, fn func(ctx context.Context, lightID string) error) error {
	ids, err := s.LightIDs(ctx)
	if err != nil {
		return err
	}
	return concurrency.ForEach(ctx, ids, fn)
}

func (s *Session) AllLights() *AllLights {
	return &AllLights{session: s}
}

// Write sends a partial state to one light. It waits for the rate limiter first.
// The bridge's per-field answer is returned as is.
func (s *Session) Write(ctx context.Context, lightID string, state LightState) (WriteResult, error) {
	path := fmt.Sprintf("/lights/%s/state", lightID)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &APIError{Op: "write", URL: s.url(path), Err: err}
	}

	data, err := s.Request(ctx, http.MethodPut, path, state)
	if err != nil {
		return nil, err
	}

	entries, err := parseEntries(data)
	if err != nil {
		return nil, &APIError{Op: "write", URL: s.url(path), Err: err}
	}

	result := WriteResult(entries)
	for _, e := range result.Errors() {
		s.logger.Warn("bridge rejected light state", "light", lightID, "address", e.Address, "description", e.Description)
	}
	return result, nil
}

func (s *Session) On(ctx context.Context, lightID string) (WriteResult, error) {
	return s.Write(ctx, lightID, NewLightState().WithOn(true))
}

func (s *Session) Off(ctx context.Context, lightID string) (WriteResult, error) {
	return s.Write(ctx, lightID, NewLightState().WithOn(false))
}

// SetColor sets brightness, saturation and hue from the colour. The colour wins over
// the same fields in overrides.
func (s *Session) SetColor(ctx context.Context, lightID string, c Colour, overrides LightState) (WriteResult, error) {
	return s.Write(ctx, lightID, overrides.Merge(colourState(c)))
}

// SetBrightColor is SetColor at full lightness, so a saturated hue is not dimmed.
func (s *Session) SetBrightColor(ctx context.Context, lightID string, c Colour, overrides LightState) (WriteResult, error) {
	return s.SetColor(ctx, lightID, withLightness(c, 1), overrides)
}
