package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"injuryshield/internal/config"
)

var ErrNotifierDisabled = errors.New("sms notifier disabled")

type Notifier interface {
	Send(ctx context.Context, body string) error
}

// NopNotifier stands in when SMS credentials are not configured. Every send
// fails, so no cooldown is ever recorded.
type NopNotifier struct{}

func (NopNotifier) Send(ctx context.Context, body string) error {
	return ErrNotifierDisabled
}

type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
	to     string
}

func NewTwilioNotifier(conf config.AlertConfig) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: conf.TwilioAccountSID,
		Password: conf.TwilioAuthToken,
	})
	return &TwilioNotifier{
		client: client,
		from:   conf.TwilioPhoneNumber,
		to:     conf.RecipientPhoneNumber,
	}
}

func (n *TwilioNotifier) Send(ctx context.Context, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	if resp.Sid != nil {
		logrus.WithField("component", "alert").Infof("sms sent, sid %s", *resp.Sid)
	}
	return nil
}

// NewNotifier picks Twilio when fully configured and the no-op notifier
// otherwise.
func NewNotifier(conf config.AlertConfig) Notifier {
	if !conf.SMSEnabled() {
		logrus.WithField("component", "alert").Warn("twilio credentials or phone numbers not configured, sms alerts disabled")
		return NopNotifier{}
	}
	return NewTwilioNotifier(conf)
}
