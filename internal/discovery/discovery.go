// Package discovery finds a hue bridge on the local network.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/charmbracelet/log"
)

var ErrNotFound = errors.New("no hue bridge found on this network")

var ipv4Pattern = regexp.MustCompile(`(([01]?[0-9][0-9]?|2[0-4][0-9]|25[0-5])\.){3}([01]?[0-9][0-9]?|2[0-4][0-9]|25[0-5])`)

// Discoverer returns the IPv4 address of a bridge, or ErrNotFound.
type Discoverer interface {
	Discover(ctx context.Context) (string, error)
}

// ExtractIPv4 returns the first IPv4 address found in s.
func ExtractIPv4(s string) (string, bool) {
	ip := ipv4Pattern.FindString(s)
	return ip, ip != ""
}

type named struct {
	name string
	Discoverer
}

// Chain tries each discoverer in turn and returns the first address found.
type Chain struct {
	logger      *log.Logger
	discoverers []named
}

func NewChain(logger *log.Logger) *Chain {
	return &Chain{logger: logger}
}

func (c *Chain) Add(name string, d Discoverer) *Chain {
	c.discoverers = append(c.discoverers, named{name: name, Discoverer: d})
	return c
}

func (c *Chain) Discover(ctx context.Context) (string, error) {
	for _, d := range c.discoverers {
		ip, err := d.Discover(ctx)
		if err == nil {
			return ip, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Warn("bridge discovery failed", "method", d.name, "err", err)
	}
	return "", fmt.Errorf("%w (tried %d methods)", ErrNotFound, len(c.discoverers))
}
