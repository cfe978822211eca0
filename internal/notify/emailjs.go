package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/isdelr/pinpass/internal/config"
)

// DefaultEmailJSURL is the EmailJS REST send endpoint.
const DefaultEmailJSURL = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJSClient delivers emails through the EmailJS REST API.
type EmailJSClient struct {
	serviceID  string
	templateID string
	publicKey  string
	privateKey string
	endpoint   string
	httpClient *http.Client
}

// NewEmailJSClient creates a client from the EmailJS credentials. A client
// with any credential missing reports ErrNotConfigured on every send.
func NewEmailJSClient(cfg config.EmailJSConfig) *EmailJSClient {
	return &EmailJSClient{
		serviceID:  cfg.ServiceID,
		templateID: cfg.TemplateID,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		endpoint:   DefaultEmailJSURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint points the client at a different send URL.
func (c *EmailJSClient) WithEndpoint(url string) *EmailJSClient {
	c.endpoint = url
	return c
}

// IsConfigured reports whether every credential is present.
func (c *EmailJSClient) IsConfigured() bool {
	return c.serviceID != "" && c.templateID != "" && c.publicKey != "" && c.privateKey != ""
}

type emailRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken"`
	TemplateParams map[string]string `json:"template_params"`
}

// SendPINRecovery emails the stored PIN to its owner.
func (c *EmailJSClient) SendPINRecovery(ctx context.Context, msg PINRecovery) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(emailRequest{
		ServiceID:   c.serviceID,
		TemplateID:  c.templateID,
		UserID:      c.publicKey,
		AccessToken: c.privateKey,
		TemplateParams: map[string]string{
			"email":     msg.Email,
			"pin":       msg.PIN,
			"from_name": msg.SenderName,
		},
	})
	if err != nil {
		return fmt.Errorf("encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: emailjs status %d: %s", ErrDelivery, resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
