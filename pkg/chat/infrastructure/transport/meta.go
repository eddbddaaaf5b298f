package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"marketplace/pkg/chat/domain/model"
	"marketplace/pkg/common/infrastructure/config"
	"marketplace/pkg/common/infrastructure/logging"
)

const metaAPIBase = "https://graph.facebook.com/v18.0"

// MetaSender sends WhatsApp messages through the Meta Business API.
type MetaSender struct {
	phoneNumberID string
	accessToken   string
	verifyToken   string
	client        *http.Client
	logger        logrus.FieldLogger
}

func NewMetaSender(cfg config.Config, logger logrus.FieldLogger) (*MetaSender, error) {
	if cfg.MetaPhoneNumberID == "" || cfg.MetaAccessToken == "" || cfg.MetaVerifyToken == "" {
		return nil, errors.New("meta configuration is incomplete")
	}
	return &MetaSender{
		phoneNumberID: cfg.MetaPhoneNumberID,
		accessToken:   cfg.MetaAccessToken,
		verifyToken:   cfg.MetaVerifyToken,
		client:        &http.Client{Timeout: 15 * time.Second},
		logger:        logger,
	}, nil
}

func (s *MetaSender) Send(ctx context.Context, toPhone, text string) model.SendResult {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		// Meta expects the number without the plus prefix.
		"to":   strings.TrimPrefix(toPhone, "+"),
		"type": "text",
		"text": map[string]string{"body": text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return model.SendResult{Error: err.Error()}
	}

	endpoint := fmt.Sprintf("%s/%s/messages", metaAPIBase, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return model.SendResult{Error: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WithError(err).Error("meta request failed")
		return model.SendResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(raw),
		}).Error("meta API error")
		return model.SendResult{Error: fmt.Sprintf("meta error: %d", resp.StatusCode)}
	}

	var reply struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return model.SendResult{Error: err.Error()}
	}

	messageID := ""
	if len(reply.Messages) > 0 {
		messageID = reply.Messages[0].ID
	}
	s.logger.WithFields(logrus.Fields{
		"messageId": messageID,
		"to":        logging.MaskPhone(toPhone),
	}).Info("message sent via meta")
	return model.SendResult{Success: true, MessageID: messageID}
}

// VerifyToken is the shared secret Meta echoes during the webhook
// verification handshake.
func (s *MetaSender) VerifyToken() string {
	return s.verifyToken
}
