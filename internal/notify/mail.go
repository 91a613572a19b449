package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mailgun/mailgun-go/v4"
	"golang.org/x/time/rate"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/model"
)

// ErrRateLimited is returned when a sink drops a notification to stay
// under its send rate.
var ErrRateLimited = errors.New("rate limited")

// MailSink sends each notification as a plain-text email through Mailgun.
type MailSink struct {
	mg        mailgun.Mailgun
	sender    string
	recipient string
	limiter   *rate.Limiter
}

// NewMailSink returns a Mailgun-backed sink, or nil when email is disabled
// or no API key is configured.
func NewMailSink(cfg config.EmailConfig, apiKey string) *MailSink {
	if !cfg.Enabled || apiKey == "" || cfg.Domain == "" || cfg.Recipient == "" {
		return nil
	}
	perMinute := cfg.PerMinute
	if perMinute <= 0 {
		perMinute = 1
	}
	sender := cfg.Sender
	if sender == "" {
		sender = "fintrack <fintrack@" + cfg.Domain + ">"
	}
	return &MailSink{
		mg:        mailgun.NewMailgun(cfg.Domain, apiKey),
		sender:    sender,
		recipient: cfg.Recipient,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

func (s *MailSink) Name() string { return "mailgun" }

// Deliver sends n unless the per-minute budget is spent.
func (s *MailSink) Deliver(ctx context.Context, n model.Notification) error {
	if !s.limiter.Allow() {
		return ErrRateLimited
	}
	body := n.Message
	if n.Detail != "" {
		body += "\n\n" + n.Detail
	}
	msg := s.mg.NewMessage(s.sender, n.Title, body, s.recipient)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	log.Debug("notification mailed", "to", s.recipient, "id", id)
	return nil
}
