package hue_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wheelibin/huectl/internal/hue"
	"github.com/wheelibin/huectl/mocks"
)

var red = colorful.Color{R: 1, G: 0, B: 0}

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeBridge answers like a v1 bridge and records every request it sees
type fakeBridge struct {
	server        *httptest.Server
	stateBody     string
	writeBody     string
	authorizeBody string

	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeBridge(t *testing.T, stateBody string) *fakeBridge {
	b := &fakeBridge{
		stateBody:     stateBody,
		writeBody:     `[{"success":{"/lights/1/state/on":true}}]`,
		authorizeBody: `[{"success":{"username":"granted-user"}}]`,
	}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		b.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(b.stateBody))
		case http.MethodPost:
			_, _ = w.Write([]byte(b.authorizeBody))
		case http.MethodPut:
			_, _ = w.Write([]byte(b.writeBody))
		}
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBridge) host() string {
	return strings.TrimPrefix(b.server.URL, "http://")
}

func (b *fakeBridge) lastRequest(t *testing.T) recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.requests)
	return b.requests[len(b.requests)-1]
}

func (b *fakeBridge) requestsWith(method string) []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedRequest
	for _, r := range b.requests {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func newTestSession(t *testing.T, bridge *fakeBridge) *hue.Session {
	s, err := hue.NewSession(context.Background(), quietLogger(), hue.Options{
		IP:     bridge.host(),
		Secret: "secret",
	})
	require.NoError(t, err)
	return s
}

func Test_NewSession(t *testing.T) {

	t.Run("omitting ip should discover exactly once", func(t *testing.T) {
		// arrange
		discoverer := mocks.NewMockHueDiscoverer(t)
		discoverer.On("Discover", mock.Anything).Return("192.168.0.1", nil).Once()

		// act
		s, err := hue.NewSession(context.Background(), quietLogger(), hue.Options{Secret: "secret", Discoverer: discoverer})

		// assert
		require.NoError(t, err)
		assert.Equal(t, "192.168.0.1", s.IP())
		discoverer.AssertNumberOfCalls(t, "Discover", 1)
	})

	t.Run("supplying ip should never discover", func(t *testing.T) {
		discoverer := mocks.NewMockHueDiscoverer(t)

		s, err := hue.NewSession(context.Background(), quietLogger(), hue.Options{IP: "192.168.0.2", Secret: "secret", Discoverer: discoverer})

		require.NoError(t, err)
		assert.Equal(t, "192.168.0.2", s.IP())
		discoverer.AssertNotCalled(t, "Discover", mock.Anything)
	})

	t.Run("discovery failure is returned", func(t *testing.T) {
		discoverer := mocks.NewMockHueDiscoverer(t)
		discoverer.On("Discover", mock.Anything).Return("", errors.New("no hue found"))

		_, err := hue.NewSession(context.Background(), quietLogger(), hue.Options{Secret: "secret", Discoverer: discoverer})

		assert.ErrorContains(t, err, "no hue found")
	})

	t.Run("omitting secret should hash the hostname once", func(t *testing.T) {
		calls := 0
		hostname := func() (string, error) {
			calls++
			return "my-host\n", nil
		}

		s, err := hue.NewSession(context.Background(), quietLogger(), hue.Options{IP: "192.168.0.2", Hostname: hostname})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, hue.SecretFromHostname("my-host"), s.Secret())
		assert.Len(t, s.Secret(), 40)
	})

	t.Run("supplying secret should never hash", func(t *testing.T) {
		calls := 0
		hostname := func() (string, error) {
			calls++
			return "my-host", nil
		}

		s, err := hue.NewSession(context.Background(), quietLogger(), hue.Options{IP: "192.168.0.2", Secret: "some_random_hex", Hostname: hostname})

		require.NoError(t, err)
		assert.Equal(t, 0, calls)
		assert.Equal(t, "some_random_hex", s.Secret())
	})

	t.Run("client id defaults", func(t *testing.T) {
		s, err := hue.NewSession(context.Background(), quietLogger(), hue.Options{IP: "192.168.0.2", Secret: "x"})

		require.NoError(t, err)
		assert.Equal(t, "huectl", s.ClientID())
	})
}

func Test_PollState(t *testing.T) {

	t.Run("empty lights should succeed and be cached", func(t *testing.T) {
		// arrange
		bridge := newFakeBridge(t, `{"lights": {}}`)
		s := newTestSession(t, bridge)

		// act
		state, err := s.PollState(context.Background())

		// assert
		require.NoError(t, err)
		assert.Empty(t, state.Lights)
		req := bridge.lastRequest(t)
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/api/secret/", req.Path)

		lights, err := s.Lights(context.Background())
		require.NoError(t, err)
		assert.Empty(t, lights)
		assert.Len(t, bridge.requestsWith(http.MethodGet), 1)
	})

	t.Run("missing lights should fail with a protocol error", func(t *testing.T) {
		bridge := newFakeBridge(t, `[{"success":{"/lights":true}}]`)
		s := newTestSession(t, bridge)

		_, err := s.PollState(context.Background())

		assert.ErrorIs(t, err, hue.ErrProtocol)
		var apiErr *hue.APIError
		assert.ErrorAs(t, err, &apiErr)
	})

	t.Run("an unpaired user should see the bridge's error description", func(t *testing.T) {
		// arrange
		bridge := newFakeBridge(t, `[{"error":{"type":1,"address":"/","description":"unauthorized user"}}]`)
		s := newTestSession(t, bridge)

		// act
		_, err := s.PollState(context.Background())

		// assert
		assert.ErrorIs(t, err, hue.ErrProtocol)
		assert.ErrorContains(t, err, "unauthorized user (type 1)")
		assert.ErrorContains(t, err, "pair with the bridge first")
		assert.NotContains(t, err.Error(), "cannot unmarshal")
	})

	t.Run("state object without lights key should fail", func(t *testing.T) {
		bridge := newFakeBridge(t, `{"config": {"name": "bridge"}}`)
		s := newTestSession(t, bridge)

		_, err := s.PollState(context.Background())

		assert.ErrorIs(t, err, hue.ErrProtocol)
	})

	t.Run("lights should be decoded", func(t *testing.T) {
		bridge := newFakeBridge(t, `{"lights": {"1": {"name": "Desk", "state": {"on": true, "bri": 200, "reachable": true}}, "2": {"name": "Hall"}}}`)
		s := newTestSession(t, bridge)

		state, err := s.PollState(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "Desk", state.Lights["1"].Name)
		assert.Equal(t, 200, state.Lights["1"].State.Bri)
		assert.True(t, state.Lights["1"].State.Reachable)
		assert.Contains(t, state.Raw, "lights")
	})
}

func Test_Lights(t *testing.T) {

	t.Run("should poll when there is no snapshot yet", func(t *testing.T) {
		bridge := newFakeBridge(t, `{"lights": {"10": {}, "2": {}, "1": {}}}`)
		s := newTestSession(t, bridge)

		ids, err := s.LightIDs(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "10"}, ids)
		assert.Len(t, bridge.requestsWith(http.MethodGet), 1)
	})

	t.Run("returned map should not change the snapshot", func(t *testing.T) {
		bridge := newFakeBridge(t, `{"lights": {"1": {"name": "Desk"}}}`)
		s := newTestSession(t, bridge)

		lights, err := s.Lights(context.Background())
		require.NoError(t, err)
		delete(lights, "1")

		again, err := s.Lights(context.Background())
		require.NoError(t, err)
		assert.Contains(t, again, "1")
	})
}

func Test_Write(t *testing.T) {

	tests := []struct {
		name         string
		act          func(s *hue.Session) (hue.WriteResult, error)
		expectedBody string
	}{
		{
			name:         "switching on",
			act:          func(s *hue.Session) (hue.WriteResult, error) { return s.On(context.Background(), "1") },
			expectedBody: `{"on":true}`,
		},
		{
			name:         "switching off",
			act:          func(s *hue.Session) (hue.WriteResult, error) { return s.Off(context.Background(), "1") },
			expectedBody: `{"on":false}`,
		},
		{
			name: "setting a color",
			act: func(s *hue.Session) (hue.WriteResult, error) {
				return s.SetColor(context.Background(), "1", red, hue.NewLightState())
			},
			expectedBody: `{"bri":127,"sat":255,"hue":0}`,
		},
		{
			name: "setting a bright color",
			act: func(s *hue.Session) (hue.WriteResult, error) {
				return s.SetBrightColor(context.Background(), "1", red, hue.NewLightState())
			},
			expectedBody: `{"bri":255,"sat":255,"hue":0}`,
		},
		{
			name: "setting a color with overrides",
			act: func(s *hue.Session) (hue.WriteResult, error) {
				return s.SetColor(context.Background(), "1", red, hue.NewLightState().WithOn(true))
			},
			expectedBody: `{"on":true,"bri":127,"sat":255,"hue":0}`,
		},
		{
			name: "colour wins over overridden colour fields",
			act: func(s *hue.Session) (hue.WriteResult, error) {
				return s.SetColor(context.Background(), "1", red, hue.NewLightState().WithBrightness(10).WithTransitionTime(0))
			},
			expectedBody: `{"bri":127,"sat":255,"hue":0,"transitiontime":0}`,
		},
		{
			name: "setting blue",
			act: func(s *hue.Session) (hue.WriteResult, error) {
				return s.SetBrightColor(context.Background(), "1", colorful.Color{R: 0, G: 0, B: 1}, hue.NewLightState())
			},
			expectedBody: `{"bri":255,"sat":255,"hue":43680}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// arrange
			bridge := newFakeBridge(t, `{"lights": {}}`)
			s := newTestSession(t, bridge)

			// act
			result, err := test.act(s)

			// assert
			require.NoError(t, err)
			assert.Len(t, result, 1)
			req := bridge.lastRequest(t)
			assert.Equal(t, http.MethodPut, req.Method)
			assert.Equal(t, "/api/secret/lights/1/state", req.Path)
			assert.Equal(t, test.expectedBody, req.Body)
		})
	}

	t.Run("bridge error entries are passed through", func(t *testing.T) {
		bridge := newFakeBridge(t, `{"lights": {}}`)
		bridge.writeBody = `[{"error":{"type":201,"address":"/lights/1/state/bri","description":"parameter, bri, is not modifiable. Device is set to off."}}]`
		s := newTestSession(t, bridge)

		result, err := s.Write(context.Background(), "1", hue.NewLightState().WithBrightness(10))

		require.NoError(t, err)
		require.Len(t, result.Errors(), 1)
		assert.Equal(t, 201, result.Errors()[0].Type)
	})

	t.Run("cancelled context never reaches the bridge", func(t *testing.T) {
		bridge := newFakeBridge(t, `{"lights": {}}`)
		s := newTestSession(t, bridge)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.On(ctx, "1")

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, bridge.requestsWith(http.MethodPut))
	})
}

func Test_Authorize(t *testing.T) {

	t.Run("should post the client id and secret", func(t *testing.T) {
		bridge := newFakeBridge(t, `{"lights": {}}`)
		s, err := hue.NewSession(context.Background(), quietLogger(), hue.Options{IP: bridge.host(), Secret: "secret", ClientID: "test-client"})
		require.NoError(t, err)

		result, err := s.Authorize(context.Background())

		require.NoError(t, err)
		req := bridge.lastRequest(t)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/api/", req.Path)
		assert.JSONEq(t, `{"devicetype":"test-client","username":"secret"}`, req.Body)
		username, ok := result.Username()
		assert.True(t, ok)
		assert.Equal(t, "granted-user", username)
		assert.NoError(t, result.Err())
		assert.False(t, result.LinkButtonNotPressed())
	})

	t.Run("link button not pressed is reported, not raised", func(t *testing.T) {
		// arrange
		bridge := newFakeBridge(t, `{"lights": {}}`)
		bridge.authorizeBody = `[{"error":{"type":101,"address":"","description":"link button not pressed"}}]`
		s := newTestSession(t, bridge)

		// act
		result, err := s.Authorize(context.Background())

		// assert
		require.NoError(t, err)
		assert.True(t, result.LinkButtonNotPressed())
		_, ok := result.Username()
		assert.False(t, ok)
		assert.EqualError(t, result.Err(), "pairing failed (type 101): link button not pressed")
	})

	t.Run("other pairing errors are not mistaken for the link button", func(t *testing.T) {
		bridge := newFakeBridge(t, `{"lights": {}}`)
		bridge.authorizeBody = `[{"error":{"type":7,"address":"/username","description":"invalid value"}}]`
		s := newTestSession(t, bridge)

		result, err := s.Authorize(context.Background())

		require.NoError(t, err)
		assert.False(t, result.LinkButtonNotPressed())
		assert.ErrorContains(t, result.Err(), "invalid value")
	})
}

func Test_Request(t *testing.T) {

	t.Run("unsupported verbs are rejected", func(t *testing.T) {
		bridge := newFakeBridge(t, `{"lights": {}}`)
		s := newTestSession(t, bridge)

		_, err := s.Request(context.Background(), http.MethodDelete, "/lights/1", nil)

		assert.ErrorIs(t, err, hue.ErrUnsupportedMethod)
		assert.Empty(t, bridge.requestsWith(http.MethodDelete))
	})

	t.Run("unreachable bridge is a transport error", func(t *testing.T) {
		bridge := newFakeBridge(t, `{"lights": {}}`)
		s := newTestSession(t, bridge)
		bridge.server.Close()

		_, err := s.PollState(context.Background())

		assert.ErrorIs(t, err, hue.ErrTransport)
	})

	t.Run("non 2xx status is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()
		s, err := hue.NewSession(context.Background(), quietLogger(), hue.Options{IP: strings.TrimPrefix(server.URL, "http://"), Secret: "secret"})
		require.NoError(t, err)

		_, err = s.PollState(context.Background())

		assert.ErrorIs(t, err, hue.ErrTransport)
	})
}
