// Package mailer delivers email-shaped notifications over a pooled SMTP
// connection. Configuration is resolved once per process; every failure
// is captured in the returned Outcome rather than raised to the caller.
package mailer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/support-desk/internal/config"
)

const (
	fromDisplayName = "Support Desk"

	// Bounds both the TCP connect and the SMTP greeting/auth exchange so
	// a dead relay cannot block a send indefinitely.
	dialTimeout = 10 * time.Second
)

// Outcome is the captured result of a single delivery attempt.
type Outcome struct {
	Success   bool
	MessageID string
	Err       string
}

// Sender delivers one message to one recipient.
type Sender interface {
	Send(recipient, subject, htmlBody string) Outcome
}

// SMTPMailer is the process-wide outbound mail channel. The transport
// profile is resolved lazily on first use and never re-read; concurrent
// first calls share a single initialization via sync.Once.
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger

	init   sync.Once
	dialer *gomail.Dialer
	host   string
	from   string

	// dial opens one SMTP session. Defaults to dialWithTimeout; tests
	// swap it to exercise the pooling behavior without a relay.
	dial func() (gomail.SendCloser, error)

	mu   sync.Mutex
	conn gomail.SendCloser
}

// New constructs the mailer. No connection is made until the first Send.
func New(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) configure() {
	p := resolveProfile(m.cfg)
	dialer := gomail.NewDialer(p.Host, p.Port, m.cfg.Username, m.cfg.Password)
	dialer.SSL = p.SSL

	m.dialer = dialer
	m.host = p.Host
	m.from = m.cfg.Username
	if m.dial == nil {
		m.dial = m.dialWithTimeout
	}

	m.logger.Info("mail transport configured",
		zap.String("provider", string(m.cfg.Provider)),
		zap.String("host", p.Host),
		zap.Int("port", p.Port),
		zap.Bool("ssl", p.SSL),
	)
}

// Send delivers one HTML message. Exactly one attempt is made; the
// connection is reused across calls and dropped on failure so the next
// call redials.
func (m *SMTPMailer) Send(recipient, subject, htmlBody string) Outcome {
	m.init.Do(m.configure)

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.host)

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, fromDisplayName)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-Id", messageID)
	msg.SetBody("text/html", htmlBody)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		conn, err := m.dial()
		if err != nil {
			return Outcome{Err: fmt.Sprintf("smtp dial: %v", err)}
		}
		m.conn = conn
	}

	if err := gomail.Send(m.conn, msg); err != nil {
		_ = m.conn.Close()
		m.conn = nil
		return Outcome{Err: fmt.Sprintf("smtp send: %v", err)}
	}

	return Outcome{Success: true, MessageID: messageID}
}

// dialWithTimeout bounds Dial, which performs connect, greeting, and
// auth. gomail exposes no deadline of its own, so the dial is raced
// against a timer; a connection that arrives late is closed.
func (m *SMTPMailer) dialWithTimeout() (gomail.SendCloser, error) {
	type dialResult struct {
		conn gomail.SendCloser
		err  error
	}

	ch := make(chan dialResult, 1)
	go func() {
		conn, err := m.dialer.Dial()
		ch <- dialResult{conn: conn, err: err}
	}()

	select {
	case res := <-ch:
		return res.conn, res.err
	case <-time.After(dialTimeout):
		go func() {
			if res := <-ch; res.conn != nil {
				_ = res.conn.Close()
			}
		}()
		return nil, fmt.Errorf("timed out after %s", dialTimeout)
	}
}
