package register

import (
	"context"
	"fmt"
	"net/smtp"
	"net/url"
	"os"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// RegisterLinkPlaceholder is substituted verbatim with the activation URL
// when rendering the mail body.
const RegisterLinkPlaceholder = "$REGISTERLINK"

// MailTemplate is the plain-text activation mail body containing the
// literal $REGISTERLINK placeholder.
type MailTemplate struct {
	content string
}

// NewMailTemplate wraps an in-memory template body.
func NewMailTemplate(content string) *MailTemplate {
	return &MailTemplate{content: content}
}

// LoadMailTemplate reads the template from disk once at startup.
func LoadMailTemplate(path string) (*MailTemplate, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not read activation mail template").
			WithTextCode(TextCodeMailDispatchFailed)
	}
	return &MailTemplate{content: string(content)}, nil
}

// Render substitutes the placeholder with the activation link.
func (t *MailTemplate) Render(link string) string {
	return strings.ReplaceAll(t.content, RegisterLinkPlaceholder, link)
}

// BuildActivationLink assembles <prefix>?user=<id>&token=<token> with both
// values query-escaped.
func BuildActivationLink(prefix, user, token string) string {
	return prefix + "?user=" + url.QueryEscape(user) + "&token=" + url.QueryEscape(token)
}

// ComposeActivationMail renders the message sent to a freshly registered
// primary address.
func ComposeActivationMail(cfg *Config, tmpl *MailTemplate, to, user, token string) MailMessage {
	link := BuildActivationLink(cfg.ActivationLinkPrefix, user, token)
	return MailMessage{
		From:    cfg.MailFrom,
		To:      to,
		Subject: cfg.MailSubject,
		Body:    tmpl.Render(link),
	}
}

// SMTPConfig holds the submission endpoint for the SMTP mailer.
type SMTPConfig struct {
	// Addr is the host:port of the submission endpoint.
	Addr string
	// Username and Password enable PLAIN auth when both are set.
	Username string
	Password string
	// Host overrides the auth host when it differs from Addr's host part.
	Host string
}

// SMTPMailer submits messages synchronously over SMTP. Transport failures
// come back wrapped with the mail dispatch text code so the workflow can
// tell them apart from its own errors.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
}

// NewSMTPMailer creates a mailer from cfg.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		host := cfg.Host
		if host == "" {
			host = cfg.Addr
			if i := strings.LastIndex(host, ":"); i >= 0 {
				host = host[:i]
			}
		}
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}
	return &SMTPMailer{addr: cfg.Addr, auth: auth}
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	if err := ctx.Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "context cancelled before mail submission")
	}

	if err := smtp.SendMail(m.addr, m.auth, msg.From, []string{msg.To}, encodeMail(msg)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "activation mail submission failed").
			WithTextCode(TextCodeMailDispatchFailed)
	}

	return nil
}

func encodeMail(msg MailMessage) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
