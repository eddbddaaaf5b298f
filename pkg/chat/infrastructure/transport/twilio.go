package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"marketplace/pkg/chat/domain/model"
	"marketplace/pkg/common/infrastructure/config"
	"marketplace/pkg/common/infrastructure/logging"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioSender sends WhatsApp messages through the Twilio REST API.
// Send never panics and never returns an error value; failures are
// reported inside the SendResult.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	client     *http.Client
	logger     logrus.FieldLogger
}

func NewTwilioSender(cfg config.Config, logger logrus.FieldLogger) (*TwilioSender, error) {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioWhatsAppFrom == "" {
		return nil, errors.New("twilio configuration is incomplete")
	}
	return &TwilioSender{
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		from:       cfg.TwilioWhatsAppFrom,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}, nil
}

func (s *TwilioSender) Send(ctx context.Context, toPhone, text string) model.SendResult {
	form := url.Values{}
	form.Set("From", s.from)
	form.Set("To", "whatsapp:"+toPhone)
	form.Set("Body", text)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioAPIBase, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return model.SendResult{Error: err.Error()}
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WithError(err).Error("twilio request failed")
		return model.SendResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("twilio API error")
		return model.SendResult{Error: fmt.Sprintf("twilio error: %d", resp.StatusCode)}
	}

	var payload struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.SendResult{Error: err.Error()}
	}

	s.logger.WithFields(logrus.Fields{
		"messageId": payload.SID,
		"to":        logging.MaskPhone(toPhone),
	}).Info("message sent via twilio")
	return model.SendResult{Success: true, MessageID: payload.SID}
}
