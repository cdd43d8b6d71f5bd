package notify

import (
	"context"

	"github.com/arogyacare/arogya-api/internal/config"
	"gopkg.in/gomail.v2"
)

// SMTPGateway sends email through a standard SMTP relay. It only
// handles the email channel; SMS destinations are rejected so the
// caller can fall back or report the failure.
type SMTPGateway struct {
	cfg config.SMTPConfig
}

var _ Gateway = (*SMTPGateway)(nil)

func NewSMTPGateway(cfg config.SMTPConfig) *SMTPGateway {
	return &SMTPGateway{cfg: cfg}
}

func (g *SMTPGateway) Send(ctx context.Context, dest Destination, message string) error {
	if dest.Channel != ChannelEmail {
		return &DeliveryError{Dest: dest, Err: ErrUnsupportedChannel}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", g.cfg.From)
	m.SetHeader("To", dest.Address)
	m.SetHeader("Subject", "Password Reset Code")
	m.SetBody("text/plain", message)

	d := gomail.NewDialer(g.cfg.Host, g.cfg.Port, g.cfg.Username, g.cfg.Password)

	// gomail has no context support; run the dial in a goroutine so a
	// slow relay cannot hold the caller past the context deadline.
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.DialAndSend(m)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return &DeliveryError{Dest: dest, Err: err}
		}
		return nil
	case <-ctx.Done():
		return &DeliveryError{Dest: dest, Err: ctx.Err()}
	}
}
