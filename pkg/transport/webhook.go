package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	chatmodel "marketplace/pkg/chat/domain/model"
	whatsapp "marketplace/pkg/chat/infrastructure/transport"
	"marketplace/pkg/common/infrastructure/logging"
)

// pipelineTimeout bounds the detached classify→search→respond run so an
// unresponsive store or provider cannot leak goroutines forever.
const pipelineTimeout = 30 * time.Second

// verifyWebhookHandler answers the Meta subscription handshake. Twilio
// performs no GET verification, so for it the endpoint just reports
// itself active.
func (h *Handler) verifyWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if h.provider != "meta" {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Webhook endpoint active"})
		return
	}

	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.verifyToken {
		h.logger.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
		return
	}

	h.logger.Warn("webhook verification failed")
	writeError(w, http.StatusForbidden, "Forbidden")
}

// incomingMessageHandler acknowledges the webhook immediately and runs
// the conversation pipeline as a detached continuation. The webhook
// caller always gets a 200: malformed payloads are dropped, not errors.
func (h *Handler) incomingMessageHandler(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.parseIncoming(r)
	if !ok {
		h.logger.Warn("could not parse incoming webhook payload")
		writeJSON(w, http.StatusOK, map[string]string{"message": "Message ignored"})
		return
	}

	msg.From = whatsapp.NormalizePhone(msg.From)
	h.logger.WithFields(map[string]interface{}{
		"from":          logging.MaskPhone(msg.From),
		"messageLength": len(msg.Body),
	}).Info("incoming whatsapp message")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
		defer cancel()
		h.orchestrator.HandleInbound(ctx, msg)
	}()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Message received"})
}

func (h *Handler) parseIncoming(r *http.Request) (chatmodel.InboundMessage, bool) {
	switch h.provider {
	case "twilio":
		return parseTwilioPayload(r)
	case "meta":
		return parseMetaPayload(r)
	}
	return chatmodel.InboundMessage{}, false
}

func parseTwilioPayload(r *http.Request) (chatmodel.InboundMessage, bool) {
	if err := r.ParseForm(); err != nil {
		return chatmodel.InboundMessage{}, false
	}
	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	if from == "" || body == "" {
		return chatmodel.InboundMessage{}, false
	}
	from = strings.TrimPrefix(from, "whatsapp:")
	return chatmodel.InboundMessage{From: from, Body: body, Timestamp: time.Now().UTC()}, true
}

func parseMetaPayload(r *http.Request) (chatmodel.InboundMessage, bool) {
	var payload struct {
		Entry []struct {
			Changes []struct {
				Value struct {
					Messages []struct {
						From      string `json:"from"`
						Timestamp string `json:"timestamp"`
						Text      struct {
							Body string `json:"body"`
						} `json:"text"`
					} `json:"messages"`
				} `json:"value"`
			} `json:"changes"`
		} `json:"entry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return chatmodel.InboundMessage{}, false
	}
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return chatmodel.InboundMessage{}, false
	}
	messages := payload.Entry[0].Changes[0].Value.Messages
	if len(messages) == 0 {
		return chatmodel.InboundMessage{}, false
	}

	msg := messages[0]
	if msg.From == "" || msg.Text.Body == "" {
		return chatmodel.InboundMessage{}, false
	}

	timestamp := time.Now().UTC()
	if unix, err := strconv.ParseInt(msg.Timestamp, 10, 64); err == nil {
		timestamp = time.Unix(unix, 0).UTC()
	}
	return chatmodel.InboundMessage{From: msg.From, Body: msg.Text.Body, Timestamp: timestamp}, true
}
