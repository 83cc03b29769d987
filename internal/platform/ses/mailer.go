// Package ses delivers composed notifications through Amazon SES.
package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/innovatech/deskprov/pkg/cloud"
)

// Mailer sends email from a fixed verified sender address.
type Mailer struct {
	ses    cloud.SESAPI
	sender string
}

// NewMailer creates a mailer bound to the configured sender.
func NewMailer(api cloud.SESAPI, sender string) *Mailer {
	return &Mailer{ses: api, sender: sender}
}

// Send delivers one message with both text and HTML bodies.
func (m *Mailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	_, err := m.ses.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(textBody)},
					Html: &sestypes.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// VerifySender checks that the sender identity exists and is verified,
// for startup preflight.
func (m *Mailer) VerifySender(ctx context.Context) error {
	out, err := m.ses.GetEmailIdentity(ctx, &sesv2.GetEmailIdentityInput{
		EmailIdentity: aws.String(m.sender),
	})
	if err != nil {
		return fmt.Errorf("sender identity %s not reachable: %w", m.sender, err)
	}
	if !out.VerifiedForSendingStatus {
		return fmt.Errorf("sender identity %s is not verified for sending", m.sender)
	}
	return nil
}
