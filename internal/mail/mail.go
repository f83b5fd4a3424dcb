// Package mail sends the practice's outbound email.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/iliyamo/practice-booking/internal/config"
)

// Message is a single email with a plain text body and an optional HTML
// alternative.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

var ErrNoRecipients = errors.New("mail: message has no recipients")

// sendTimeout caps one SMTP session when the caller sets no earlier deadline.
const sendTimeout = 15 * time.Second

func (m Message) build(now time.Time) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to address: %w", err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetDateWithValue(now)
	msg.SetBodyString(gomail.TypeTextPlain, m.Text)
	if m.HTML != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, m.HTML)
	}
	return msg, nil
}

// Bytes renders m as an RFC 5322 message.
func (m Message) Bytes(now time.Time) ([]byte, error) {
	msg, err := m.build(now)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write message: %w", err)
	}
	return buf.Bytes(), nil
}

// SMTPSender sends through an SMTP relay.  STARTTLS is used when the relay
// offers it, port 465 dials TLS directly, and PLAIN auth is enabled when a
// username is configured.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	now      func() time.Time
}

// NewSMTPSender builds a sender for cfg.  An unparsable port falls back to
// 587.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port <= 0 {
		port = 587
	}
	return &SMTPSender{
		host:     cfg.Host,
		port:     port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		now:      time.Now,
	}
}

// Send delivers m in one SMTP session.  The session is bounded by ctx and by
// sendTimeout, whichever ends first; a relay that stops answering makes Send
// fail instead of blocking.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if m.From == "" {
		m.From = s.from
	}
	msg, err := m.build(s.now())
	if err != nil {
		return fmt.Errorf("render mail: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, _ := ctx.Deadline()
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return context.DeadlineExceeded
	}

	client, err := gomail.NewClient(s.host, s.options(remaining)...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp send: %w", errors.Join(ctxErr, err))
		}
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) options(timeout time.Duration) []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTimeout(timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithDialContextFunc(deadlineDialer(s.host, s.port == 465)),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}
	return opts
}

// deadlineDialer dials the relay and pins the connection deadline to the
// dial context's deadline, so a silent greeting times out.
func deadlineDialer(host string, implicitTLS bool) gomail.DialContextFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		var (
			d    net.Dialer
			conn net.Conn
			err  error
		)
		if implicitTLS {
			td := tls.Dialer{NetDialer: &d, Config: &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}}
			conn, err = td.DialContext(ctx, network, addr)
		} else {
			conn, err = d.DialContext(ctx, network, addr)
		}
		if err != nil {
			return nil, err
		}
		if dl, ok := ctx.Deadline(); ok {
			if err := conn.SetDeadline(dl); err != nil {
				_ = conn.Close()
				return nil, err
			}
		}
		return conn, nil
	}
}

// LogSender writes messages to the log instead of sending them.  It is used
// when no SMTP host is configured.
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender logs through log.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "mail").Logger()}
}

func (s *LogSender) Send(_ context.Context, m Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	s.log.Info().
		Strs("to", m.To).
		Str("reply_to", m.ReplyTo).
		Str("subject", m.Subject).
		Str("body", m.Text).
		Msg("mail not sent: smtp disabled")
	return nil
}

// NewSender picks the SMTP sender when a host is configured and the log
// sender otherwise.
func NewSender(cfg config.SMTPConfig, log zerolog.Logger) Sender {
	if cfg.Host == "" {
		return NewLogSender(log)
	}
	return NewSMTPSender(cfg)
}
