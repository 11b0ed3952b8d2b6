package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/workbridge/ims-api/pkg/config"
)

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// WhatsAppSender delivers a templated message to a mobile number through the
// provider's HTTP webhook.
type WhatsAppSender interface {
	Send(ctx context.Context, mobile, message string) error
	Enabled() bool
}

type noopWhatsApp struct{}

func (noopWhatsApp) Send(context.Context, string, string) error { return nil }
func (noopWhatsApp) Enabled() bool                              { return false }

type whatsAppClient struct {
	cfg    config.WhatsAppConfig
	client *http.Client
}

// NewWhatsApp returns a webhook-backed sender, or a disabled no-op when the
// endpoint or token is not configured.
func NewWhatsApp(cfg config.WhatsAppConfig) WhatsAppSender {
	if cfg.Endpoint == "" || cfg.Token == "" {
		return noopWhatsApp{}
	}
	return &whatsAppClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (w *whatsAppClient) Enabled() bool { return true }

// Send issues the provider's GET request. The number must be a bare 10-digit
// mobile; the configured country code is prefixed on the wire.
func (w *whatsAppClient) Send(ctx context.Context, mobile, message string) error {
	if !mobilePattern.MatchString(mobile) {
		return fmt.Errorf("invalid or missing mobile number: %q", mobile)
	}

	params := url.Values{}
	params.Set("username", w.cfg.Username)
	params.Set("number", w.cfg.CountryCode+mobile)
	params.Set("message", message)
	params.Set("token", w.cfg.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// ValidMobile reports whether the number is deliverable without issuing a
// request.
func ValidMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}
