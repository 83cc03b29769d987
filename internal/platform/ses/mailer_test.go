package ses

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovatech/deskprov/pkg/cloud/fakes"
)

func TestSend(t *testing.T) {
	t.Parallel()

	api := &fakes.FakeSES{}
	m := NewMailer(api, "it@innovatech.com")

	err := m.Send(context.Background(), "ada@innovatech.com", "Welcome", "text body", "<p>html body</p>")
	require.NoError(t, err)

	require.Len(t, api.SendEmailCalls, 1)
	call := api.SendEmailCalls[0]
	assert.Equal(t, "it@innovatech.com", aws.ToString(call.FromEmailAddress))
	assert.Equal(t, []string{"ada@innovatech.com"}, call.Destination.ToAddresses)
	assert.Equal(t, "Welcome", aws.ToString(call.Content.Simple.Subject.Data))
	assert.Equal(t, "text body", aws.ToString(call.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>html body</p>", aws.ToString(call.Content.Simple.Body.Html.Data))
}

func TestSendFailure(t *testing.T) {
	t.Parallel()

	api := &fakes.FakeSES{
		SendEmailFunc: func(context.Context, *sesv2.SendEmailInput) (*sesv2.SendEmailOutput, error) {
			return nil, errors.New("rejected")
		},
	}
	m := NewMailer(api, "it@innovatech.com")

	err := m.Send(context.Background(), "ada@innovatech.com", "Welcome", "t", "h")
	assert.ErrorContains(t, err, "ada@innovatech.com")
}

func TestVerifySender(t *testing.T) {
	t.Parallel()

	verified := &fakes.FakeSES{
		GetEmailIdentityFunc: func(context.Context, *sesv2.GetEmailIdentityInput) (*sesv2.GetEmailIdentityOutput, error) {
			return &sesv2.GetEmailIdentityOutput{VerifiedForSendingStatus: true}, nil
		},
	}
	assert.NoError(t, NewMailer(verified, "it@innovatech.com").VerifySender(context.Background()))

	unverified := &fakes.FakeSES{}
	assert.ErrorContains(t,
		NewMailer(unverified, "it@innovatech.com").VerifySender(context.Background()),
		"not verified")
}
