package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/innovatech/deskprov/pkg/cloud"
)

// Publisher pushes ensure-identity messages onto the SNS topic consumed by the
// configuration-management pipeline that owns the self-managed domain
// controllers. The message carries create-or-reset semantics, so redelivered
// events converge on the same account with the latest credential.
type Publisher struct {
	sns      cloud.SNSAPI
	topicARN string
}

// NewPublisher creates an SNS-backed identity provisioner.
func NewPublisher(api cloud.SNSAPI, topicARN string) *Publisher {
	return &Publisher{sns: api, topicARN: topicARN}
}

type ensureUserMessage struct {
	Action      string `json:"action"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Group       string `json:"group"`
	OU          string `json:"ou"`
}

// EnsureIdentity publishes the ensure-user message. Delivery to the topic is
// at-least-once downstream; the consumer performs the idempotent apply.
func (p *Publisher) EnsureIdentity(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(ensureUserMessage{
		Action:      "ensure_user",
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Credential,
		Group:       req.Group.Name,
		OU:          req.Group.OU,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal ensure-user message: %v", ErrInvalidRequest, err)
	}

	_, err = p.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(fmt.Sprintf("Ensure AD User: %s", req.Username)),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		return classify(err)
	}

	log.Printf("[Identity] Published ensure-user for %s to %s", req.Username, p.topicARN)
	return nil
}
