package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds all runtime configuration of the service.
type Config struct {
	HTTPPort      int    `envconfig:"PORT" default:"4000"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseDSN   string `envconfig:"DATABASE_DSN" required:"true"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"data/migrations"`
	AppBaseURL    string `envconfig:"APP_BASE_URL" default:"https://town.tld"`

	// WhatsAppProvider selects the outbound transport: "twilio" or "meta".
	WhatsAppProvider string `envconfig:"WHATSAPP_PROVIDER" default:"twilio"`

	TwilioAccountSID   string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppFrom string `envconfig:"TWILIO_WHATSAPP_FROM"`

	MetaPhoneNumberID string `envconfig:"META_PHONE_NUMBER_ID"`
	MetaAccessToken   string `envconfig:"META_ACCESS_TOKEN"`
	MetaVerifyToken   string `envconfig:"META_VERIFY_TOKEN"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to process environment configuration")
	}
	return c, nil
}
