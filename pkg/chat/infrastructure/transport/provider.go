package transport

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"marketplace/pkg/chat/domain/model"
	"marketplace/pkg/common/infrastructure/config"
)

// NewSender builds the configured outbound transport. The provider is
// chosen exactly once at process start and injected into the
// orchestrator; nothing resolves it through a global lookup.
func NewSender(cfg config.Config, logger logrus.FieldLogger) (model.OutboundSender, error) {
	switch cfg.WhatsAppProvider {
	case "twilio":
		return NewTwilioSender(cfg, logger)
	case "meta":
		return NewMetaSender(cfg, logger)
	}
	return nil, errors.Errorf("unsupported whatsapp provider %q", cfg.WhatsAppProvider)
}

// NormalizePhone strips spaces, dashes and parentheses and guarantees a
// leading plus sign.
func NormalizePhone(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	normalized := replacer.Replace(phone)
	if normalized != "" && !strings.HasPrefix(normalized, "+") {
		normalized = "+" + normalized
	}
	return normalized
}
