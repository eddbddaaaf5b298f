package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandler(provider, verifyToken string) *Handler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Handler{provider: provider, verifyToken: verifyToken, logger: logger}
}

func TestVerifyWebhookMetaHandshake(t *testing.T) {
	h := testHandler("meta", "secret-token")

	r := httptest.NewRequest(http.MethodGet,
		"/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	h.verifyWebhookHandler(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())
}

func TestVerifyWebhookMetaRejectsBadToken(t *testing.T) {
	h := testHandler("meta", "secret-token")

	r := httptest.NewRequest(http.MethodGet,
		"/webhook/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	h.verifyWebhookHandler(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "12345")
}

func TestVerifyWebhookTwilioAlwaysActive(t *testing.T) {
	h := testHandler("twilio", "")

	r := httptest.NewRequest(http.MethodGet, "/webhook/whatsapp", nil)
	w := httptest.NewRecorder()
	h.verifyWebhookHandler(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "active")
}

func TestParseTwilioPayload(t *testing.T) {
	form := url.Values{}
	form.Set("From", "whatsapp:+573001112233")
	form.Set("Body", "hola, ¿tienen empanadas?")
	r := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	msg, ok := parseTwilioPayload(r)

	require.True(t, ok)
	assert.Equal(t, "+573001112233", msg.From)
	assert.Equal(t, "hola, ¿tienen empanadas?", msg.Body)
}

func TestParseTwilioPayloadMissingFields(t *testing.T) {
	form := url.Values{}
	form.Set("From", "whatsapp:+573001112233")
	r := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, ok := parseTwilioPayload(r)

	assert.False(t, ok)
}

func TestParseMetaPayload(t *testing.T) {
	payload := `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "573001112233",
						"timestamp": "1767225600",
						"text": {"body": "¿cuánto cuesta la pizza?"}
					}]
				}
			}]
		}]
	}`
	r := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(payload))

	msg, ok := parseMetaPayload(r)

	require.True(t, ok)
	assert.Equal(t, "573001112233", msg.From)
	assert.Equal(t, "¿cuánto cuesta la pizza?", msg.Body)
	assert.Equal(t, int64(1767225600), msg.Timestamp.Unix())
}

func TestParseMetaPayloadMalformed(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		`{}`,
		`{"entry": []}`,
		`{"entry": [{"changes": [{"value": {"messages": []}}]}]}`,
		`{"entry": [{"changes": [{"value": {"messages": [{"from": "", "text": {"body": "hola"}}]}}]}]}`,
	} {
		r := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(payload))
		_, ok := parseMetaPayload(r)
		assert.False(t, ok, "payload %q must be rejected", payload)
	}
}
