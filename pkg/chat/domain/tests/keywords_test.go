package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/pkg/chat/domain/service"
)

func TestExtractKeywordsEmptyInput(t *testing.T) {
	assert.Empty(t, service.ExtractKeywords(""))
	assert.Empty(t, service.ExtractKeywords("   "))
	assert.Empty(t, service.ExtractKeywords("¿?!"))
}

func TestExtractKeywordsDropsStopWordsAndDigits(t *testing.T) {
	keywords := service.ExtractKeywords("quiero la pizza para 2 personas")

	assert.Contains(t, keywords, "pizza")
	assert.Contains(t, keywords, "personas")
	assert.NotContains(t, keywords, "quiero")
	assert.NotContains(t, keywords, "la")
	assert.NotContains(t, keywords, "para")
	assert.NotContains(t, keywords, "2")
}

func TestExtractKeywordsBuildsPhrases(t *testing.T) {
	keywords := service.ExtractKeywords("empanadas de pino caseras")

	assert.Contains(t, keywords, "empanadas pino")
	assert.Contains(t, keywords, "empanadas pino caseras")
	assert.Contains(t, keywords, "pino caseras")
	assert.Contains(t, keywords, "empanadas")
	assert.Contains(t, keywords, "pino")
}

func TestExtractKeywordsLongestFirst(t *testing.T) {
	keywords := service.ExtractKeywords("empanadas de pino")

	require.NotEmpty(t, keywords)
	for i := 1; i < len(keywords); i++ {
		assert.GreaterOrEqual(t,
			len([]rune(keywords[i-1])), len([]rune(keywords[i])),
			"keywords must be ordered by descending length")
	}
	assert.Equal(t, "empanadas pino", keywords[0])
}

func TestExtractKeywordsDeduplicates(t *testing.T) {
	keywords := service.ExtractKeywords("pizza pizza pizza")

	count := 0
	for _, kw := range keywords {
		if kw == "pizza" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractKeywordsKeepsAccents(t *testing.T) {
	keywords := service.ExtractKeywords("¡Café con azúcar!")

	assert.Contains(t, keywords, "café")
	assert.Contains(t, keywords, "azúcar")
}

func TestNormalizeTextStripsPunctuation(t *testing.T) {
	assert.Equal(t, "cuánto cuesta la pizza", service.NormalizeText("¿Cuánto cuesta la pizza?"))
	assert.Equal(t, "hola buenas", service.NormalizeText("  Hola,   buenas!  "))
}
