package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/huectl/internal/constants"
)

// APIService is the plain HTTP transport used to talk to the bridge.
type APIService struct {
	logger *log.Logger
	client *http.Client
}

func NewAPIService(logger *log.Logger, timeout time.Duration) *APIService {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &APIService{
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// GET fetches url without a body. Discovery uses it for description documents.
func (h *APIService) GET(ctx context.Context, url string) ([]byte, error) {
	return h.Request(ctx, http.MethodGet, url, nil)
}

// Request sends body (JSON encoded, if not nil) to url and returns the raw response body.
// Only GET, POST and PUT are supported.
func (h *APIService) Request(ctx context.Context, verb string, url string, body any) ([]byte, error) {

	switch verb {
	case http.MethodGet, http.MethodPost, http.MethodPut:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, verb)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, verb, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	h.logger.Debug("bridge request", "method", verb, "url", url)

	// make the request
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.logger.Error("Error making Hue API call", "url", url, "status", resp.Status)
		return nil, fmt.Errorf("%w: unexpected status %s", ErrTransport, resp.Status)
	}

	return responseBody, nil
}
