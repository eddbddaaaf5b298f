package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the service logger with the configured level.
// Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}

// MaskPhone hides all but the last four digits of a phone number so
// numbers never land in logs in the clear.
func MaskPhone(phone string) string {
	runes := []rune(phone)
	if len(runes) <= 4 {
		return phone
	}
	masked := make([]rune, 0, len(runes))
	for i, r := range runes {
		if r >= '0' && r <= '9' && i < len(runes)-4 {
			masked = append(masked, '*')
			continue
		}
		masked = append(masked, r)
	}
	return string(masked)
}
