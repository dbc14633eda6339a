package utils

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"
	"time"

	"riverside/config"
)

// Mailer delivers plain-text transactional email. Two variants exist
// depending on deployment: a direct SMTP session with STARTTLS, or an
// HTTP call to a transactional-email API with an API key.
type Mailer interface {
	Send(to, subject, body string) error
}

// NewMailer picks the delivery variant from configuration. The HTTP API
// wins when configured; SMTP is the fallback. Returns nil when neither
// is configured.
func NewMailer(cfg config.AppConfig) Mailer {
	if cfg.EmailAPIURL != "" && cfg.EmailAPIKey != "" {
		return &APIMailer{
			Endpoint: cfg.EmailAPIURL,
			APIKey:   cfg.EmailAPIKey,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			Client:   &http.Client{Timeout: 15 * time.Second},
		}
	}
	if cfg.SMTPHost != "" && cfg.SMTPFrom != "" {
		return &SMTPMailer{cfg: cfg}
	}
	return nil
}

// ContactBody composes the plain-text body for a contact-form notification.
func ContactBody(name, email, message string) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\n\n%s\n", name, email, message)
}

// ResetBody composes the plain-text body for a password-reset notice.
func ResetBody(link string) string {
	return fmt.Sprintf("Reset your password: %s\n\nIf you did not request this, you can ignore this email.\n", link)
}

// SMTPMailer sends mail over SMTP, upgrading to TLS when the server offers it.
type SMTPMailer struct {
	cfg config.AppConfig
}

// Send delivers a plain-text message to a single recipient.
func (m *SMTPMailer) Send(to, subject, body string) error {
	cfg := m.cfg
	if cfg.SMTPHost == "" || cfg.SMTPFrom == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort))
	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)

	fromName := cfg.SMTPFromName
	if fromName == "" {
		fromName = "Riverside"
	}
	fromHeader := fmt.Sprintf("%s <%s>", encodeHeader(fromName), cfg.SMTPFrom)

	headers := map[string]string{
		"From":         fromHeader,
		"To":           to,
		"Subject":      encodeHeader(subject),
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}
	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if cfg.SMTPTLS {
		d := net.Dialer{Timeout: 5 * time.Second}
		conn, err := d.Dial("tcp", addr)
		if err != nil {
			return err
		}
		_ = conn.SetDeadline(time.Now().Add(15 * time.Second))
		host, _, _ := net.SplitHostPort(addr)
		c, err := smtp.NewClient(conn, host)
		if err != nil {
			_ = conn.Close()
			return err
		}
		defer c.Close()
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
		if cfg.SMTPUsername != "" {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
		if err := c.Mail(cfg.SMTPFrom); err != nil {
			return err
		}
		if err := c.Rcpt(to); err != nil {
			return err
		}
		wc, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := wc.Write([]byte(msg.String())); err != nil {
			_ = wc.Close()
			return err
		}
		return wc.Close()
	}

	// Plain SMTP without TLS (not recommended)
	return smtp.SendMail(addr, auth, cfg.SMTPFrom, []string{to}, []byte(msg.String()))
}

// APIMailer posts to a transactional-email HTTP API (ElasticEmail wire format).
type APIMailer struct {
	Endpoint string
	APIKey   string
	From     string
	FromName string
	Client   *http.Client
}

// Send delivers a message through the HTTP API.
func (m *APIMailer) Send(to, subject, body string) error {
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	data := url.Values{
		"apikey":   {m.APIKey},
		"subject":  {subject},
		"from":     {m.From},
		"fromName": {m.FromName},
		"to":       {to},
		"bodyText": {body},
	}
	resp, err := client.PostForm(m.Endpoint, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email api returned %s", resp.Status)
	}
	return nil
}

// encodeHeader applies RFC 2047 encoding when a header contains non-ASCII bytes.
func encodeHeader(s string) string {
	return mime.BEncoding.Encode("UTF-8", s)
}
