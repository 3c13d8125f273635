package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/appoetlabs/appoet/internal/config"
	mailerdomain "github.com/appoetlabs/appoet/internal/mailer/domain"
)

// Sender delivers rendered emails through the Resend REST API.
type Sender struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	log        *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *Sender {
	return &Sender{
		baseURL:    strings.TrimRight(cfg.Resend.BaseURL, "/"),
		apiKey:     cfg.Resend.APIKey,
		from:       cfg.Resend.From,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.Named("mailer.resend"),
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *Sender) Send(ctx context.Context, email mailerdomain.Email) error {
	raw, err := json.Marshal(sendRequest{
		From:    s.from,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", mailerdomain.ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.log.Warn("resend rejected email",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("%w: status %d", mailerdomain.ErrSendFailed, resp.StatusCode)
	}
	return nil
}
