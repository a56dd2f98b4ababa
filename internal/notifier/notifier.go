// Package notifier delivers order notifications. Delivery is best-effort:
// an order is considered placed regardless of whether the mail goes out.
package notifier

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/config"
	"github.com/stockroom-app/stockroom/internal/entity"
)

// Client delivers a finalized order batch to the configured recipients.
type Client interface {
	Send(ctx context.Context, batch entity.OrderBatch) error
}

// Module wires the notification client.
var Module = fx.Provide(NewClient)

// NewClient builds a notification client based on configuration.
func NewClient(cfg config.Config, logger *zap.Logger) (Client, error) {
	if !cfg.SMTP.Enabled {
		logger.Info("notifications disabled; using noop mailer")
		return noopClient{}, nil
	}
	return newSMTPClient(cfg.SMTP)
}

type noopClient struct{}

func (noopClient) Send(context.Context, entity.OrderBatch) error { return nil }

type smtpClient struct {
	client *mail.Client
	cfg    config.SMTP
}

func newSMTPClient(cfg config.SMTP) (Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.UseSSL {
		opts = append(opts, mail.WithSSL())
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &smtpClient{client: client, cfg: cfg}, nil
}

func (s *smtpClient) Send(ctx context.Context, batch entity.OrderBatch) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(s.cfg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(fmt.Sprintf("Supply Order from %s at %s", batch.Orderer, batch.GeneratedAt))
	msg.SetBodyString(mail.TypeTextPlain, renderBody(batch))

	return s.client.DialAndSendWithContext(ctx, msg)
}

func renderBody(batch entity.OrderBatch) string {
	body := fmt.Sprintf("Order placed by: %s on %s\n\n", batch.Orderer, batch.GeneratedAt)
	for _, line := range batch.Lines {
		body += fmt.Sprintf("%s — %s — Qty %d\n", line.Item, line.ProductNumber, line.Qty)
	}
	return body
}
