package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"marketplace/pkg/chat/domain/model"
)

const (
	maxMenuCategories      = 6
	maxProductsPerCategory = 3
	searchReplyLimit       = 3
	categorySuggestions    = 5
	lowStockThreshold      = 5
	shortDescriptionRunes  = 100
)

// Responder renders intents and search results into user-facing Spanish
// text. All money stays in integer minor units until the final formatting
// step; there is no floating-point arithmetic anywhere in the path.
type Responder struct {
	engine  *SearchEngine
	catalog model.CatalogReader
	baseURL string
	printer *message.Printer
	logger  logrus.FieldLogger
}

func NewResponder(engine *SearchEngine, catalog model.CatalogReader, baseURL string, logger logrus.FieldLogger) *Responder {
	return &Responder{
		engine:  engine,
		catalog: catalog,
		baseURL: strings.TrimRight(baseURL, "/"),
		printer: message.NewPrinter(language.MustParse("es-CO")),
		logger:  logger,
	}
}

// FormatPrice renders integer minor units as whole currency units with
// es-CO digit grouping and no decimals.
func (r *Responder) FormatPrice(priceCents int64) string {
	return r.printer.Sprintf("$ %d", priceCents/100)
}

// StaticReply renders the fixed template for intents that need no
// catalog access, optionally parameterized by the top keywords.
func (r *Responder) StaticReply(intent model.Intent, keywords []string) string {
	switch intent {
	case model.IntentGreeting:
		return "¡Hola! 👋 Bienvenido a Town. Te puedo ayudar a encontrar productos, consultar precios, stock y más. ¿Qué buscas hoy?"

	case model.IntentHelp:
		return `¡Estoy aquí para ayudarte! 🤖

Puedes preguntarme sobre:
• 💰 *Precios* - "¿Cuánto cuesta la pizza?"
• 📦 *Stock* - "¿Hay empanadas disponibles?"
• 💳 *Pagos* - "¿Cómo puedo pagar?"
• 🚚 *Entregas* - "¿Hacen delivery?"
• 📋 *Menú* - "¿Qué productos tienen?"

Solo escribe lo que buscas y te ayudo a encontrarlo.`

	case model.IntentMenu:
		return "📋 Te muestro nuestro catálogo de productos disponibles. Aquí tienes las categorías principales:"

	case model.IntentPayment:
		return `💳 *Métodos de pago disponibles:*

• 💵 Efectivo (al recibir)
• 💸 Transferencia bancaria
• 📱 Pago móvil

¿Hay algún producto específico que te interese? Te ayudo a hacer el pedido.`

	case model.IntentDelivery:
		return `🚚 *Información de entregas:*

• Delivery disponible en la zona
• Tiempo estimado: 30-45 minutos
• Costo según ubicación

¿Me das tu dirección para calcular el costo exacto?`

	case model.IntentPrice:
		if len(keywords) > 0 {
			return fmt.Sprintf("💰 Te ayudo a consultar precios. Buscando información sobre: *%s*...", keywords[0])
		}
		return "💰 ¿De qué producto quieres saber el precio? Escribe el nombre y te doy la información."

	case model.IntentStock:
		if len(keywords) > 0 {
			return fmt.Sprintf("📦 Consultando disponibilidad de: *%s*...", keywords[0])
		}
		return "📦 ¿De qué producto quieres saber la disponibilidad? Escribe el nombre y verifico el stock."

	case model.IntentProductSearch:
		if len(keywords) > 0 {
			top := keywords
			if len(top) > 2 {
				top = top[:2]
			}
			return fmt.Sprintf("🔍 Buscando productos relacionados con: *%s*...", strings.Join(top, ", "))
		}
		return "🔍 ¿Qué producto buscas? Escribe el nombre y te muestro las opciones disponibles."

	default:
		return `No entendí bien tu mensaje. 🤔

Puedes preguntarme sobre:
• Precios de productos
• Stock disponible
• Métodos de pago
• Información de delivery
• Ver el menú completo

¿En qué te puedo ayudar?`
	}
}

// SearchReply runs the search engine and renders the ranked results, or
// category suggestions when nothing matched.
func (r *Responder) SearchReply(ctx context.Context, keywords []string, opts SearchOptions) string {
	opts.Limit = searchReplyLimit
	results := r.engine.Search(ctx, keywords, opts)

	if len(results) == 0 {
		categories, err := r.catalog.AvailableCategories(ctx)
		if err != nil {
			r.logger.WithError(err).Error("failed to load categories for empty search reply")
		}
		if len(categories) > categorySuggestions {
			categories = categories[:categorySuggestions]
		}
		return fmt.Sprintf(`🔍 No encontré productos con "%s"

¿Te interesa alguna de estas categorías?
📋 %s

O escribe *menú* para ver todo el catálogo.`, strings.Join(keywords, " "), strings.Join(categories, ", "))
	}

	plural := ""
	if len(results) > 1 {
		plural = "s"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Encontré %d producto%s:\n\n", len(results), plural)
	for i, result := range results {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, r.formatListing(result.Listing))
	}
	b.WriteString("💳 *Pagos:* Efectivo o transferencia\n")
	b.WriteString("📱 ¿Quieres reservar alguno? ¡Solo dime cuál te interesa!")
	return b.String()
}

// MenuReply renders the full catalog grouped by category.
func (r *Responder) MenuReply(ctx context.Context) string {
	categories, err := r.catalog.AvailableCategories(ctx)
	if err != nil {
		r.logger.WithError(err).Error("failed to load menu categories")
		return "Error al cargar el menú. Por favor intenta escribiendo el nombre de un producto específico."
	}
	if len(categories) == 0 {
		return "Lo siento, no tenemos productos disponibles en este momento. 😔\n\nPor favor intenta más tarde."
	}
	if len(categories) > maxMenuCategories {
		categories = categories[:maxMenuCategories]
	}

	var b strings.Builder
	b.WriteString("📋 *Nuestro Menú por Categorías:*\n\n")
	for _, category := range categories {
		listings, err := r.catalog.ProductsByCategory(ctx, category, maxProductsPerCategory)
		if err != nil {
			r.logger.WithError(err).WithField("category", category).Error("failed to load category products")
			continue
		}
		if len(listings) == 0 {
			continue
		}

		fmt.Fprintf(&b, "🏷️ *%s*\n", strings.ToUpper(category))
		for _, listing := range listings {
			fmt.Fprintf(&b, "• %s - %s", listing.Title, r.FormatPrice(listing.PriceCents))
			if listing.Stock <= lowStockThreshold {
				fmt.Fprintf(&b, " (¡Últimas %d!)", listing.Stock)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("💬 Escribe el nombre de cualquier producto para más información.\n")
	b.WriteString("📱 ¿Te interesa algo? ¡Solo dime qué quieres pedir!")
	return b.String()
}

// formatListing renders one search result line: title, localized price,
// stock note, short description and a storefront link.
func (r *Responder) formatListing(listing model.Listing) string {
	stockText := "(agotado)"
	if listing.Stock > 0 {
		stockText = fmt.Sprintf("(stock: %d)", listing.Stock)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* - %s %s", listing.Title, r.FormatPrice(listing.PriceCents), stockText)
	if listing.Description != "" && len([]rune(listing.Description)) < shortDescriptionRunes {
		b.WriteString("\n" + listing.Description)
	}
	fmt.Fprintf(&b, "\n🔗 Ver más: %s/product/%s", r.baseURL, listing.ID)
	return b.String()
}
