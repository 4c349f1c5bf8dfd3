package mailer

import (
	"bytes"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// Config holds the SMTP delivery settings.
type Config struct {
	Host        string
	Port        int
	User        string
	Pass        string
	FromAddress string
	FromName    string
	To          []string
	// PGPPublicKey is an armored public key. When set, feedback bodies are
	// encrypted to it before they leave the process.
	PGPPublicKey string
}

// Message is a single outgoing email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer sends emails via SMTP.
type Mailer struct {
	cfg *Config
	// sendFn delivers a formatted message; tests replace it.
	sendFn func(msg Message) error
}

// New returns a Mailer using cfg.
func New(cfg *Config) *Mailer {
	if cfg == nil {
		cfg = &Config{}
	}
	m := &Mailer{cfg: cfg}
	m.sendFn = m.smtpSend
	return m
}

func (m *Mailer) send(msg Message) error {
	return m.sendFn(msg)
}

func (m *Mailer) smtpSend(msg Message) error {
	cfg := m.cfg
	if cfg.Host == "" {
		return fmt.Errorf("mailer: not configured")
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	return smtp.SendMail(addr, auth, cfg.FromAddress, msg.To, []byte(m.formatMessage(msg)))
}

// formatMessage renders msg with RFC 5322 headers.
func (m *Mailer) formatMessage(msg Message) string {
	cfg := m.cfg

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s <%s>\r\n", cfg.FromName, cfg.FromAddress)
	fmt.Fprintf(&sb, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&sb, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	fmt.Fprintf(&sb, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(msg.Body)
	return sb.String()
}

// Ping dials the SMTP server without sending anything.
func (m *Mailer) Ping() error {
	cfg := m.cfg
	if cfg.Host == "" {
		return fmt.Errorf("mailer: not configured")
	}
	c, err := smtp.Dial(net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return fmt.Errorf("mailer: dial: %w", err)
	}
	defer c.Close()
	return c.Noop()
}

// CanEncrypt returns nil when a usable PGP public key is configured.
func (m *Mailer) CanEncrypt() error {
	cfg := m.cfg
	if cfg.PGPPublicKey == "" {
		return fmt.Errorf("mailer: no PGP public key configured")
	}
	if _, err := openpgp.ReadArmoredKeyRing(strings.NewReader(cfg.PGPPublicKey)); err != nil {
		return fmt.Errorf("mailer: cannot parse PGP public key: %w", err)
	}
	return nil
}

// encryptBody encrypts body to the armored public key and returns an
// armored PGP message.
func encryptBody(armoredKey, body string) (string, error) {
	entityList, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKey))
	if err != nil {
		return "", fmt.Errorf("parsing public key: %w", err)
	}

	var buf bytes.Buffer
	armorWriter, err := armor.Encode(&buf, "PGP MESSAGE", nil)
	if err != nil {
		return "", fmt.Errorf("creating armor writer: %w", err)
	}

	encWriter, err := openpgp.Encrypt(armorWriter, entityList, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("creating encrypt writer: %w", err)
	}
	if _, err := encWriter.Write([]byte(body)); err != nil {
		return "", fmt.Errorf("writing encrypted data: %w", err)
	}
	if err := encWriter.Close(); err != nil {
		return "", fmt.Errorf("closing encrypt writer: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return "", fmt.Errorf("closing armor writer: %w", err)
	}
	return buf.String(), nil
}

// sanitizeHeader keeps header values on one line.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
