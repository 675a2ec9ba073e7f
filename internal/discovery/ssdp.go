package discovery

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/koron/go-ssdp"
	"github.com/samber/lo"
	"github.com/wheelibin/huectl/internal/constants"
)

// Searcher sends an SSDP search and returns the location urls of the devices that answered.
type Searcher interface {
	Search(ctx context.Context, urn string, wait time.Duration) ([]string, error)
}

// Fetcher fetches a description document.
type Fetcher interface {
	GET(ctx context.Context, url string) ([]byte, error)
}

type multicastSearcher struct{}

func NewMulticastSearcher() Searcher {
	return multicastSearcher{}
}

func (multicastSearcher) Search(ctx context.Context, urn string, wait time.Duration) ([]string, error) {
	waitSec := int(wait.Seconds())
	if waitSec < 1 {
		waitSec = 1
	}

	type result struct {
		services []ssdp.Service
		err      error
	}
	done := make(chan result, 1)
	go func() {
		services, err := ssdp.Search(urn, waitSec, "")
		done <- result{services, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("ssdp search failed: %w", r.err)
		}
		locations := lo.Map(r.services, func(s ssdp.Service, _ int) string { return s.Location })
		return lo.Uniq(lo.Filter(locations, func(l string, _ int) bool { return l != "" })), nil
	}
}

// SSDPDiscoverer searches for basic UPnP devices and picks the first whose description
// document names it a Philips hue bridge.
type SSDPDiscoverer struct {
	logger   *log.Logger
	searcher Searcher
	fetcher  Fetcher
	wait     time.Duration
}

func NewSSDPDiscoverer(logger *log.Logger, searcher Searcher, fetcher Fetcher, wait time.Duration) *SSDPDiscoverer {
	if wait <= 0 {
		wait = constants.DefaultDiscoveryTimeout
	}
	return &SSDPDiscoverer{logger: logger, searcher: searcher, fetcher: fetcher, wait: wait}
}

func (d *SSDPDiscoverer) Discover(ctx context.Context) (string, error) {
	locations, err := d.searcher.Search(ctx, constants.DiscoveryDeviceURN, d.wait)
	if err != nil {
		return "", err
	}
	d.logger.Debug("ssdp search finished", "responses", len(locations))

	for _, location := range locations {
		body, err := d.fetcher.GET(ctx, location)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			d.logger.Warn("skipping device, description not readable", "location", location, "err", err)
			continue
		}

		name, ok := friendlyName(body)
		if !ok {
			d.logger.Debug("skipping device without friendlyName", "location", location)
			continue
		}
		if !strings.HasPrefix(name, constants.DiscoveryFriendlyNamePrefix) {
			continue
		}

		ip, ok := ExtractIPv4(location)
		if !ok {
			d.logger.Warn("skipping bridge, no ipv4 address in location", "location", location)
			continue
		}
		d.logger.Info("Found hue bridge", "name", name, "ip", ip)
		return ip, nil
	}

	return "", ErrNotFound
}

// friendlyName returns the text of the first friendlyName element anywhere in the document.
func friendlyName(doc []byte) (string, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := decoder.Token()
		if err != nil {
			// io.EOF or a malformed document
			return "", false
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "friendlyName" {
			continue
		}
		var name string
		if err := decoder.DecodeElement(&name, &start); err != nil {
			return "", false
		}
		return strings.TrimSpace(name), true
	}
}
