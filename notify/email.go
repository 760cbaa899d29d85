// Package notify wraps the outbound providers (SendGrid email, Twilio SMS)
// behind validated forms, so handler code dispatches notifications without
// touching provider types. Failures come back wrapped with
// apikit.ErrExternalServiceFailure; bad form input comes back as an
// apikit.ValidationError.
package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/poofware/go-apikit"
	"github.com/poofware/go-apikit/form"
)

// EmailForm carries everything needed for a single outbound email. FromName
// and ToName are display names and may be empty; HTML may be empty for a
// plain-text-only message.
type EmailForm struct {
	FromName  string `json:"fromName"`
	FromEmail string `json:"fromEmail" validate:"required,email"`
	ToName    string `json:"toName"`
	ToEmail   string `json:"toEmail" validate:"required,email"`
	Subject   string `json:"subject" validate:"required"`
	PlainText string `json:"plainText" validate:"required"`
	HTML      string `json:"html"`
}

// sendgridAPI is the slice of the SendGrid client used here, extracted so
// tests can fake it.
type sendgridAPI interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// EmailSender sends email through SendGrid.
type EmailSender struct {
	api     sendgridAPI
	sandbox bool
}

// EmailOption adjusts an EmailSender at construction.
type EmailOption func(*EmailSender)

// WithSandboxMode makes SendGrid validate each message without delivering
// it. Used in dev and test environments.
func WithSandboxMode() EmailOption {
	return func(s *EmailSender) { s.sandbox = true }
}

// NewEmailSender builds an EmailSender over a real SendGrid send client.
func NewEmailSender(apiKey string, opts ...EmailOption) *EmailSender {
	return newEmailSender(sendgrid.NewSendClient(apiKey), opts)
}

// NewEmailSenderFromAPI wires an existing SendGrid client, real or fake.
func NewEmailSenderFromAPI(api sendgridAPI, opts ...EmailOption) *EmailSender {
	return newEmailSender(api, opts)
}

func newEmailSender(api sendgridAPI, opts []EmailOption) *EmailSender {
	s := &EmailSender{api: api}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send validates the form and dispatches it through SendGrid.
func (s *EmailSender) Send(ctx context.Context, f EmailForm) error {
	if err := form.Validate(f); err != nil {
		return err
	}

	from := mail.NewEmail(f.FromName, f.FromEmail)
	to := mail.NewEmail(f.ToName, f.ToEmail)
	msg := mail.NewSingleEmail(from, f.Subject, to, f.PlainText, f.HTML)

	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, sendErr := s.api.Send(msg)
	if sendErr != nil {
		apikit.Logger.WithError(sendErr).Errorf("Failed to send email to %s via SendGrid", f.ToEmail)
		return fmt.Errorf("%w: failed to send email via sendgrid: %v", apikit.ErrExternalServiceFailure, sendErr)
	}
	// SendGrid reports rejection through the response status, not the error.
	if resp != nil && resp.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
		apikit.Logger.WithError(err).Errorf("Failed to send email to %s via SendGrid", f.ToEmail)
		return fmt.Errorf("%w: failed to send email via sendgrid: %v", apikit.ErrExternalServiceFailure, err)
	}
	return nil
}
