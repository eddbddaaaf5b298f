package transport

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/pkg/common/infrastructure/config"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+573001112233", NormalizePhone("+57 300 111-2233"))
	assert.Equal(t, "+573001112233", NormalizePhone("57 (300) 111 2233"))
	assert.Equal(t, "+573001112233", NormalizePhone("+573001112233"))
	assert.Equal(t, "", NormalizePhone(""))
}

func TestNewSenderSelectsProvider(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sender, err := NewSender(config.Config{
		WhatsAppProvider:   "twilio",
		TwilioAccountSID:   "AC123",
		TwilioAuthToken:    "token",
		TwilioWhatsAppFrom: "whatsapp:+14155238886",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &TwilioSender{}, sender)

	sender, err = NewSender(config.Config{
		WhatsAppProvider:  "meta",
		MetaPhoneNumberID: "12345",
		MetaAccessToken:   "token",
		MetaVerifyToken:   "verify",
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &MetaSender{}, sender)

	_, err = NewSender(config.Config{WhatsAppProvider: "carrier-pigeon"}, logger)
	assert.Error(t, err)
}
