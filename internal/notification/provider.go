// Package notification delivers approval outcomes to the requester.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cerven-ot/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var ErrProviderFailure = errors.New("notification provider failure")

// Message is one email handed to a provider.
type Message struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type Provider interface {
	Send(ctx context.Context, msg Message) error
}

// NewProvider picks the email provider from config. A webhook provider
// without a URL falls back to logging.
func NewProvider(cfg config.Notify, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("notification.provider")

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "stub", "log":
		return logProvider{logger: log}
	case "noop":
		return noopProvider{}
	case "fail":
		return failProvider{}
	case "webhook":
		if cfg.WebhookURL == "" {
			log.Warn("webhook provider configured without url, logging instead")
			return logProvider{logger: log}
		}
		return newWebhookProvider(cfg.WebhookURL, cfg.WebhookToken)
	default:
		if strings.HasPrefix(cfg.Provider, "http://") || strings.HasPrefix(cfg.Provider, "https://") {
			return newWebhookProvider(cfg.Provider, cfg.WebhookToken)
		}
		log.Warn("unknown notification provider, logging instead", zap.String("provider", cfg.Provider))
		return logProvider{logger: log}
	}
}

type logProvider struct {
	logger *zap.Logger
}

func (p logProvider) Send(ctx context.Context, msg Message) error {
	p.logger.Info("email notification",
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject),
	)
	return nil
}

type noopProvider struct{}

func (noopProvider) Send(ctx context.Context, msg Message) error {
	return nil
}

type failProvider struct{}

func (failProvider) Send(ctx context.Context, msg Message) error {
	return ErrProviderFailure
}

type webhookProvider struct {
	url    string
	token  string
	client *http.Client
}

func newWebhookProvider(url, token string) webhookProvider {
	return webhookProvider{
		url:   url,
		token: token,
		client: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (p webhookProvider) Send(ctx context.Context, msg Message) error {
	payload := map[string]string{
		"channel":   "email",
		"recipient": msg.Recipient,
		"subject":   msg.Subject,
		"message":   msg.Body,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: webhook returned %d", ErrProviderFailure, resp.StatusCode)
	}
	return nil
}
