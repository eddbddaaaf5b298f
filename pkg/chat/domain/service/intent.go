package service

import (
	"regexp"
	"strings"

	"marketplace/pkg/chat/domain/model"
)

// intentRule pairs an intent with its trigger patterns. Rules are
// evaluated top to bottom and the first pattern that matches wins
// immediately, so the order of this table decides precedence between
// overlapping intents (a message with both a PRICE and a MENU keyword
// classifies as PRICE).
type intentRule struct {
	intent   model.Intent
	patterns []*regexp.Regexp
}

var intentRules = []intentRule{
	{model.IntentPrice, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(precio|cuánto|cuanto|cuesta|vale|valor|\$|pesos?|cop)\b`),
		regexp.MustCompile(`(?i)\b(qué.*precio|cuál.*precio|precio.*de)\b`),
	}},
	{model.IntentStock, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(stock|queda|quedan|disponible|disponibles|hay|tienen)\b`),
		regexp.MustCompile(`(?i)\b(cuánto.*queda|cuanto.*queda|qué.*hay|que.*hay)\b`),
	}},
	{model.IntentPayment, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(pago|pagos?|pagar|transfer|transferencia|efectivo|cash|dinero)\b`),
		regexp.MustCompile(`(?i)\b(cómo.*pago|como.*pago|formas.*pago|métodos.*pago)\b`),
	}},
	{model.IntentDelivery, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(delivery|envío|envio|entrega|domicilio|llevar|traer)\b`),
		regexp.MustCompile(`(?i)\b(cuánto.*envío|cuanto.*envio|costo.*envío|precio.*envío)\b`),
	}},
	{model.IntentMenu, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(menú|menu|carta|catálogo|catalogo|categoría|categoria|categorias|productos?)\b`),
		regexp.MustCompile(`(?i)\b(qué.*tienen|que.*tienen|qué.*venden|que.*venden|mostrar.*todo)\b`),
	}},
	{model.IntentHelp, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(ayuda|help|auxilio|asistencia|soporte)\b`),
		regexp.MustCompile(`(?i)\b(cómo.*funciona|como.*funciona|qué.*puedo|que.*puedo)\b`),
	}},
	{model.IntentGreeting, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(hola|buenas?|buenos?|saludos?|hey|hi|hello)\b`),
		regexp.MustCompile(`(?i)\b(buenos.*días|buenas.*tardes|buenas.*noches|buen.*día)\b`),
	}},
}

// ClassifyIntent maps free text to exactly one intent with a confidence
// score in [0,1]. Deterministic and pure.
func ClassifyIntent(text string) (model.Intent, float64) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return model.IntentUnknown, 0.1
	}

	textLen := len([]rune(normalized))
	for _, rule := range intentRules {
		for _, pattern := range rule.patterns {
			match := pattern.FindString(normalized)
			if match == "" {
				continue
			}
			// A match that covers more of the message earns more
			// confidence, capped at 0.9.
			confidence := float64(len([]rune(match)))/float64(textLen) + 0.3
			if confidence > 0.9 {
				confidence = 0.9
			}
			return rule.intent, confidence
		}
	}

	if len(ExtractKeywords(text)) > 0 {
		return model.IntentProductSearch, 0.6
	}
	return model.IntentUnknown, 0.1
}

// ParseMessage runs the full keyword + intent analysis for one message.
func ParseMessage(text string) model.ParsedMessage {
	intent, confidence := ClassifyIntent(text)
	return model.ParsedMessage{
		OriginalText:   text,
		NormalizedText: strings.ToLower(strings.TrimSpace(text)),
		Keywords:       ExtractKeywords(text),
		Intent:         intent,
		Confidence:     confidence,
	}
}
