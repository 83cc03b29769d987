package stream

import (
	"testing"

	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertRecord(image map[string]streamtypes.AttributeValue) streamtypes.Record {
	return streamtypes.Record{
		EventName: streamtypes.OperationTypeInsert,
		Dynamodb: &streamtypes.StreamRecord{
			NewImage: image,
		},
	}
}

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	record := insertRecord(map[string]streamtypes.AttributeValue{
		"id":         &streamtypes.AttributeValueMemberS{Value: "emp-1"},
		"name":       &streamtypes.AttributeValueMemberS{Value: "Ada Lovelace"},
		"email":      &streamtypes.AttributeValueMemberS{Value: "ada@innovatech.com"},
		"username":   &streamtypes.AttributeValueMemberS{Value: "alovelace"},
		"department": &streamtypes.AttributeValueMemberS{Value: "Engineering"},
		"role":       &streamtypes.AttributeValueMemberS{Value: "Developer"},
		"processed":  &streamtypes.AttributeValueMemberBOOL{Value: false},
	})

	ev, err := DecodeEvent(record)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", ev.ID)
	assert.Equal(t, "Ada Lovelace", ev.Name)
	assert.Equal(t, "alovelace", ev.Username)
	assert.Equal(t, "Engineering", ev.Department)
	assert.Equal(t, "Developer", ev.Role)
	assert.False(t, ev.Processed)
}

func TestDecodeEventMissingOptionalFields(t *testing.T) {
	t.Parallel()

	// role and processed absent from the image: zero values, the orchestrator
	// applies the role default.
	record := insertRecord(map[string]streamtypes.AttributeValue{
		"id":       &streamtypes.AttributeValueMemberS{Value: "emp-2"},
		"name":     &streamtypes.AttributeValueMemberS{Value: "Grace Hopper"},
		"email":    &streamtypes.AttributeValueMemberS{Value: "grace@innovatech.com"},
		"username": &streamtypes.AttributeValueMemberS{Value: "ghopper"},
	})

	ev, err := DecodeEvent(record)
	require.NoError(t, err)
	assert.Empty(t, ev.Role)
	assert.False(t, ev.Processed)
}

func TestDecodeEventRejectsEmptyImage(t *testing.T) {
	t.Parallel()

	_, err := DecodeEvent(streamtypes.Record{})
	assert.ErrorContains(t, err, "no new image")

	_, err = DecodeEvent(insertRecord(map[string]streamtypes.AttributeValue{
		"name": &streamtypes.AttributeValueMemberS{Value: "No ID"},
	}))
	assert.ErrorContains(t, err, "no id")
}

func TestDecodeEventWrongAttributeType(t *testing.T) {
	t.Parallel()

	record := insertRecord(map[string]streamtypes.AttributeValue{
		"id":       &streamtypes.AttributeValueMemberN{Value: "42"},
		"username": &streamtypes.AttributeValueMemberS{Value: "x"},
	})

	_, err := DecodeEvent(record)
	assert.Error(t, err)
}
