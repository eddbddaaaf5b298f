package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"marketplace/pkg/chat/domain/model"
	"marketplace/pkg/common/infrastructure/logging"
)

const apologyText = "Disculpa, hubo un problema procesando tu mensaje. Por favor intenta de nuevo en unos minutos."

// Orchestrator processes one inbound message end to end: spam filter,
// parse, branch on intent, send. It is stateless by contract — no
// session or context is carried between messages, every message is
// classified on its own. The outbound transport is an injected
// capability, selected once at process start.
type Orchestrator struct {
	responder *Responder
	sender    model.OutboundSender
	logger    logrus.FieldLogger
}

func NewOrchestrator(responder *Responder, sender model.OutboundSender, logger logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{responder: responder, sender: sender, logger: logger}
}

// HandleInbound runs the pipeline for one message. Failures are logged,
// never returned: the conversation path is best-effort and the webhook
// has already been acknowledged by the time this runs.
func (o *Orchestrator) HandleInbound(ctx context.Context, msg model.InboundMessage) {
	if msg.From == "" || msg.Body == "" {
		o.logger.Warn("dropping malformed inbound message")
		return
	}

	if IsSpamMessage(msg.Body) {
		o.logger.WithField("from", logging.MaskPhone(msg.From)).Warn("spam message dropped")
		return
	}

	parsed := ParseMessage(msg.Body)
	o.logger.WithFields(logrus.Fields{
		"from":         logging.MaskPhone(msg.From),
		"intent":       parsed.Intent,
		"keywordCount": len(parsed.Keywords),
		"confidence":   parsed.Confidence,
	}).Info("processing message")

	reply := o.buildReply(ctx, parsed)

	result := o.sender.Send(ctx, msg.From, reply)
	if result.Success {
		o.logger.WithFields(logrus.Fields{
			"to":        logging.MaskPhone(msg.From),
			"messageId": result.MessageID,
			"intent":    parsed.Intent,
		}).Info("reply sent")
		return
	}

	o.logger.WithFields(logrus.Fields{
		"to":    logging.MaskPhone(msg.From),
		"error": result.Error,
	}).Error("failed to send reply")

	// One best-effort apology so the user is never left without any
	// answer; after that, give up.
	if fallback := o.sender.Send(ctx, msg.From, apologyText); !fallback.Success {
		o.logger.WithFields(logrus.Fields{
			"to":    logging.MaskPhone(msg.From),
			"error": fallback.Error,
		}).Error("failed to send apology fallback")
	}
}

func (o *Orchestrator) buildReply(ctx context.Context, parsed model.ParsedMessage) string {
	switch parsed.Intent {
	case model.IntentMenu:
		return o.responder.MenuReply(ctx)
	case model.IntentPrice, model.IntentStock, model.IntentProductSearch:
		// STOCK includes sold-out items so the user can be told
		// "agotado" instead of getting silence.
		return o.responder.SearchReply(ctx, parsed.Keywords, SearchOptions{
			IncludeOutOfStock: parsed.Intent == model.IntentStock,
		})
	default:
		return o.responder.StaticReply(parsed.Intent, parsed.Keywords)
	}
}
