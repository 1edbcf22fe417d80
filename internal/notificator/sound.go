package notificator

import (
	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/pkg/logger"
)

// Sound is the alert sound hook. Audio playback happens on the overlay; the
// server only logs the cue.
type Sound struct {
	logger  *logger.Logger
	enabled bool
}

func NewSound(logger *logger.Logger, enabled bool) *Sound {
	return &Sound{logger: logger, enabled: enabled}
}

func (s *Sound) PlayNotificationSound(amount float64) {
	if !s.enabled {
		return
	}
	s.logger.Info("🔊 Donation sound", "amount", models.FormatAmount(amount))
}
