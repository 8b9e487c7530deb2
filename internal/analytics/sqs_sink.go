package analytics

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

const defaultSendTimeout = 3 * time.Second

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type envelope struct {
	Event      string     `json:"event"`
	Properties Properties `json:"properties,omitempty"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// SQSSink publishes events to an SQS queue in the background.
type SQSSink struct {
	client   sqsAPI
	queueURL string
	timeout  time.Duration
	logger   *logging.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewSQSSink builds a sink for queueURL.
func NewSQSSink(client sqsAPI, queueURL string, logger *logging.Logger) *SQSSink {
	if client == nil {
		panic("analytics: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("analytics: SQS queueURL cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SQSSink{
		client:   client,
		queueURL: queueURL,
		timeout:  defaultSendTimeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Record serialises the event and sends it without blocking the caller.
func (s *SQSSink) Record(ctx context.Context, name string, props Properties) {
	body, err := json.Marshal(envelope{Event: name, Properties: props, RecordedAt: s.now().UTC()})
	if err != nil {
		s.logger.Warn("analytics: marshal event", "event", name, "error", err)
		return
	}

	// Outlive the request; the event is already decided.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		_, err := s.client.SendMessage(sendCtx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(s.queueURL),
			MessageBody: aws.String(string(body)),
		})
		if err != nil {
			s.logger.Warn("analytics: send event", "event", name, "error", err)
		}
	}()
}

// Flush waits for in-progress sends. Called on shutdown.
func (s *SQSSink) Flush() {
	s.wg.Wait()
}
