package stream

import (
	"fmt"

	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"

	"github.com/innovatech/deskprov/internal/orchestrator"
)

// DecodeEvent converts a stream record's new image into a change event. The
// stream types are a separate attribute-value family from the table client's,
// so the handful of fields is decoded by hand.
func DecodeEvent(record streamtypes.Record) (orchestrator.Event, error) {
	if record.Dynamodb == nil || record.Dynamodb.NewImage == nil {
		return orchestrator.Event{}, fmt.Errorf("stream record has no new image")
	}
	image := record.Dynamodb.NewImage

	ev := orchestrator.Event{
		ID:         stringAttr(image, "id"),
		Name:       stringAttr(image, "name"),
		Email:      stringAttr(image, "email"),
		Username:   stringAttr(image, "username"),
		Department: stringAttr(image, "department"),
		Role:       stringAttr(image, "role"),
		Processed:  boolAttr(image, "processed"),
	}
	if ev.ID == "" {
		return orchestrator.Event{}, fmt.Errorf("stream record image has no id")
	}
	return ev, nil
}

func stringAttr(image map[string]streamtypes.AttributeValue, key string) string {
	if v, ok := image[key].(*streamtypes.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func boolAttr(image map[string]streamtypes.AttributeValue, key string) bool {
	if v, ok := image[key].(*streamtypes.AttributeValueMemberBOOL); ok {
		return v.Value
	}
	return false
}
