package notify

import (
	"context"
	"crypto/tls"
	"cvewatch/internal/providers"
	"cvewatch/internal/retry"
	"cvewatch/internal/structures"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const (
	portTls      = 465
	portStartTls = 587
	portPlain    = 25
)

type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// connectError marks failures while establishing the SMTP session; those are retried.
type connectError struct {
	msg string
	err error
}

func (e *connectError) Error() string { return fmt.Sprintf("%s: %v", e.msg, e.err) }

func (e *connectError) Unwrap() error { return e.err }

// SmtpSender opens one SMTP session per message.
type SmtpSender struct {
	conf   structures.MailConfig
	policy retry.Policy
	logger providers.Logger
}

func NewSmtpSender(conf *structures.Config, logger providers.Logger) *SmtpSender {
	s := &SmtpSender{conf: conf.Mail, logger: logger}
	s.policy = retry.Policy{
		Attempts:     conf.Mail.Retries,
		InitialDelay: conf.Mail.RetryDelay,
		Multiplier:   2,
		Retryable: func(err error) bool {
			var ce *connectError
			return errors.As(err, &ce)
		},
		Wrap: func(attempts int, err error) error {
			return fmt.Errorf("giving up after %d connection attempts: %w", attempts, err)
		},
		Notify: func(attempt int, err error, next time.Duration) {
			logger.Warnf(providers.TypeMail, "SMTP attempt %d failed: %v, retrying in %s", attempt, err, next)
		},
	}
	return s
}

// Port returns the configured port or the default for the chosen transport security.
func (s *SmtpSender) Port() int {
	switch {
	case s.conf.Port > 0:
		return s.conf.Port
	case s.conf.Tls:
		return portTls
	case s.conf.StartTls:
		return portStartTls
	}
	return portPlain
}

func (s *SmtpSender) Send(ctx context.Context, msg *Message) error {
	var client *smtp.Client
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		c, err := s.connect(ctx)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}
	if err := client.Quit(); err != nil {
		s.logger.Debugf(providers.TypeMail, "QUIT to %s: %v", msg.To, err)
	}
	return nil
}

func (s *SmtpSender) connect(ctx context.Context) (*smtp.Client, error) {
	host := s.conf.Host
	addr := net.JoinHostPort(host, strconv.Itoa(s.Port()))
	tlsConf := &tls.Config{ServerName: host, InsecureSkipVerify: !s.conf.Verify}
	dialer := &net.Dialer{Timeout: s.conf.Timeout}

	var (
		conn net.Conn
		err  error
	)
	if s.conf.Tls {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConf}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, &connectError{msg: "SMTP connection error", err: err}
	}
	if s.conf.Timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(s.conf.Timeout)); err != nil {
			conn.Close()
			return nil, &connectError{msg: "SMTP connection error", err: err}
		}
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, &connectError{msg: "SMTP connection error", err: err}
	}

	if !s.conf.Tls {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConf); err != nil {
				client.Close()
				return nil, &connectError{msg: "SMTP ssl validation error", err: err}
			}
		} else if s.conf.StartTls {
			client.Close()
			return nil, errors.New("SMTP server does not support STARTTLS")
		}
	}

	if s.conf.Auth {
		if err := client.Auth(smtp.PlainAuth("", s.conf.Username, s.conf.Password, host)); err != nil {
			client.Close()
			return nil, fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	return client, nil
}
