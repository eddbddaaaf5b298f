package tests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace/pkg/chat/domain/model"
	"marketplace/pkg/chat/domain/service"
)

func TestClassifyIntentGreeting(t *testing.T) {
	intent, confidence := service.ClassifyIntent("hola, buenas tardes")

	assert.Equal(t, model.IntentGreeting, intent)
	assert.Greater(t, confidence, 0.3)
}

func TestClassifyIntentPrice(t *testing.T) {
	intent, _ := service.ClassifyIntent("¿cuánto cuesta la pizza?")
	assert.Equal(t, model.IntentPrice, intent)

	// A bare currency sign counts as a price question, even glued to
	// the surrounding words.
	intent, _ = service.ClassifyIntent("pizza$5000")
	assert.Equal(t, model.IntentPrice, intent)
}

func TestClassifyIntentStock(t *testing.T) {
	intent, _ := service.ClassifyIntent("¿queda stock de empanadas?")
	assert.Equal(t, model.IntentStock, intent)

	intent, _ = service.ClassifyIntent("tienen empanadas disponibles")
	assert.Equal(t, model.IntentStock, intent)
}

func TestClassifyIntentProductSearchFallback(t *testing.T) {
	intent, confidence := service.ClassifyIntent("empanadas de pino")

	assert.Equal(t, model.IntentProductSearch, intent)
	assert.Equal(t, 0.6, confidence)
}

func TestClassifyIntentUnknown(t *testing.T) {
	for _, text := range []string{"", "   ", "¿?"} {
		intent, confidence := service.ClassifyIntent(text)
		assert.Equal(t, model.IntentUnknown, intent, "text %q", text)
		assert.Equal(t, 0.1, confidence)
	}
}

func TestClassifyIntentFirstMatchWins(t *testing.T) {
	// "precio" (PRICE) and "menú" (MENU) both match; PRICE sits higher
	// in the rule table and must win.
	intent, _ := service.ClassifyIntent("precio del menú")
	assert.Equal(t, model.IntentPrice, intent)
}

func TestClassifyIntentConfidenceCapped(t *testing.T) {
	// A match covering the whole message would exceed 0.9 without the cap.
	_, confidence := service.ClassifyIntent("precio")
	assert.Equal(t, 0.9, confidence)
}

func TestParseMessage(t *testing.T) {
	parsed := service.ParseMessage("¿Cuánto cuesta la Pizza Napolitana?")

	assert.Equal(t, model.IntentPrice, parsed.Intent)
	assert.Equal(t, "¿cuánto cuesta la pizza napolitana?", parsed.NormalizedText)
	assert.Contains(t, parsed.Keywords, "pizza napolitana")
	assert.Greater(t, parsed.Confidence, 0.3)
}

func TestIsSpamMessageLengthBounds(t *testing.T) {
	assert.True(t, service.IsSpamMessage("a"), "single character is spam")
	assert.True(t, service.IsSpamMessage(strings.Repeat("x", 600)), "600 characters is spam")
	assert.False(t, service.IsSpamMessage("¿tienen pizza napolitana disponible?"))
}

func TestIsSpamMessageRepeatedCharacters(t *testing.T) {
	assert.True(t, service.IsSpamMessage(strings.Repeat("j", 20)))
	assert.True(t, service.IsSpamMessage("holaaaaaaaaaaaaaaa amigo"))
	assert.False(t, service.IsSpamMessage("hola amigo"))
}

func TestIsSpamMessagePatterns(t *testing.T) {
	assert.True(t, service.IsSpamMessage("congratulations you are the winner"))
	assert.True(t, service.IsSpamMessage("gana $$$ ya"))
	assert.False(t, service.IsSpamMessage("quiero ganar un premio"))
}
