package outbound

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioCarrier delivers messages through the Twilio Programmable Messaging
// API.
type TwilioCarrier struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioCarrier creates a carrier sending from the given phone number.
func NewTwilioCarrier(accountSID, authToken, from string) *TwilioCarrier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioCarrier{client: client, from: from}
}

// Deliver sends one message. Media variants attach their media URL.
func (c *TwilioCarrier) Deliver(_ context.Context, msg Message) error {
	params := &openapi.CreateMessageParams{}
	params.SetFrom(c.from)
	params.SetTo(msg.Destination())

	switch m := msg.(type) {
	case Text:
		params.SetBody(m.Body)
	case Media:
		params.SetBody(m.Body)
		params.SetMediaUrl([]string{m.MediaURL})
	default:
		return fmt.Errorf("unknown outbound message type %T", msg)
	}

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	if resp.ErrorCode != nil {
		return fmt.Errorf("carrier error %d: %s", *resp.ErrorCode, strDeref(resp.ErrorMessage))
	}
	return nil
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
