package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/poofware/go-apikit"
	"github.com/poofware/go-apikit/form"
)

// SMSForm carries one outbound text message. Numbers must be in E.164
// format; Twilio caps a message body at 1600 characters.
type SMSForm struct {
	To   string `json:"to" validate:"required,e164"`
	From string `json:"from" validate:"required,e164"`
	Body string `json:"body" validate:"required,max=1600"`
}

// twilioAPI is the slice of the Twilio message API used here, extracted so
// tests can fake it.
type twilioAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSSender sends SMS through Twilio.
type SMSSender struct {
	api twilioAPI
}

// NewSMSSender builds an SMSSender over a real Twilio rest client.
func NewSMSSender(accountSID, authToken string) *SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSSender{api: client.Api}
}

// NewSMSSenderFromAPI wires an existing Twilio message API, real or fake.
func NewSMSSenderFromAPI(api twilioAPI) *SMSSender {
	return &SMSSender{api: api}
}

// Send validates the form and dispatches it through Twilio.
func (s *SMSSender) Send(ctx context.Context, f SMSForm) error {
	if err := form.Validate(f); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(f.To)
	params.SetFrom(f.From)
	params.SetBody(f.Body)

	_, sendErr := s.api.CreateMessage(params)
	if sendErr != nil {
		apikit.Logger.WithError(sendErr).Errorf("Failed to send SMS to %s via Twilio", f.To)
		return fmt.Errorf("%w: failed to send sms via twilio: %v", apikit.ErrExternalServiceFailure, sendErr)
	}
	return nil
}
