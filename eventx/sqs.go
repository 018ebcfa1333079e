package eventx

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the part of the SQS client the publisher uses
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends each event as one JSON message to a queue
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
}

func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// NewSQSPublisherFromEnv builds the client from the default AWS credential
// chain (environment, shared config, instance role).
func NewSQSPublisherFromEnv(ctx context.Context, queueURL string) (*SQSPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, ErrorRegistry.New(ErrPublishFailed).
			WithCause(err).
			WithDetail("reason", "load aws config")
	}
	return NewSQSPublisher(sqs.NewFromConfig(cfg), queueURL), nil
}

func (p *SQSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := ToJSON(event)
	if err != nil {
		return err
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Type()),
			},
		},
	})
	if err != nil {
		return ErrorRegistry.New(ErrPublishFailed).
			WithCause(err).
			WithDetail("event_id", event.ID()).
			WithDetail("queue_url", p.queueURL)
	}
	return nil
}
