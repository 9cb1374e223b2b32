package service

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/finsight/fraudlens/internal/models"
	"github.com/finsight/fraudlens/pkg/config"
	"github.com/finsight/fraudlens/pkg/jobs"
)

// Sender delivers a reviewer notification. The contract is "attempted", never
// "delivered": senders report errors so the queue can retry, nothing more.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// SlackSender posts notifications to a Slack channel.
type SlackSender struct {
	client  *slack.Client
	channel string
}

// NewSlackSender builds a sender from configuration.
func NewSlackSender(cfg config.NotificationConfig) *SlackSender {
	opts := []slack.Option{}
	if cfg.SlackAPIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.SlackAPIURL))
	}
	return &SlackSender{
		client:  slack.New(cfg.SlackToken, opts...),
		channel: cfg.SlackChannel,
	}
}

// Send posts the message to the configured channel.
func (s *SlackSender) Send(ctx context.Context, message string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel, slack.MsgOptionText(message, false))
	return err
}

// LogSender writes notifications to the application log. Used when no Slack
// token is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender constructs the sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the notification message.
func (s *LogSender) Send(ctx context.Context, message string) error {
	s.logger.Info("reviewer notification", zap.String("message", message))
	return nil
}

// NotificationService dispatches reviewer notifications through a background
// queue so review creation never waits on delivery.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService wires the sender behind a worker queue.
func NewNotificationService(sender Sender, cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		message, ok := job.Payload.(string)
		if !ok {
			return fmt.Errorf("unexpected notification payload %T", job.Payload)
		}
		return sender.Send(ctx, message)
	}
	queue := jobs.NewQueue("reviewer-notifications", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return &NotificationService{queue: queue, logger: logger}
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Dispatch enqueues a notification for a newly created review.
func (s *NotificationService) Dispatch(review models.ReviewRecord) error {
	message := fmt.Sprintf("Review %s needs attention: priority %d/10, reason %s (%s), amount %s at %q",
		review.ID,
		review.Priority,
		review.Reason,
		ReasonDescription(review.Reason),
		review.TransactionDetails.Amount.String(),
		review.TransactionDetails.Merchant,
	)
	return s.queue.Enqueue(jobs.Job{
		ID:      review.ID,
		Type:    "review_created",
		Payload: message,
	})
}
