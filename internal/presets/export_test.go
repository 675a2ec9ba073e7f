package presets

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

func NewPresetsWithSleep(logger *log.Logger, lights broadcaster, sleep func(ctx context.Context, d time.Duration) error) *Presets {
	return &Presets{logger: logger, lights: lights, sleep: sleep}
}
