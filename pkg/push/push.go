package push

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/osteovet/clinic-backend/pkg/config"
	"github.com/osteovet/clinic-backend/pkg/logger"
	"google.golang.org/api/option"
)

// Notification is one push message for clinic staff devices.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Notifier delivers notifications. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TopicNotifier publishes to a single FCM topic every staff device subscribes to.
type TopicNotifier struct {
	client sender
	topic  string
}

// NewTopicNotifier builds an FCM-backed notifier from a service account file.
func NewTopicNotifier(ctx context.Context, cfg config.PushConfig) (*TopicNotifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}
	return newTopicNotifier(client, cfg.Topic), nil
}

func newTopicNotifier(client sender, topic string) *TopicNotifier {
	return &TopicNotifier{client: client, topic: strings.TrimSpace(topic)}
}

// Notify sends n to the configured topic.
func (t *TopicNotifier) Notify(ctx context.Context, n Notification) error {
	if t.topic == "" {
		return fmt.Errorf("push topic is required")
	}
	_, err := t.client.Send(ctx, &messaging.Message{
		Topic: t.topic,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
	})
	if err != nil {
		return fmt.Errorf("send push to topic %s: %w", t.topic, err)
	}
	return nil
}

// LogNotifier only logs; used when push is disabled.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	if l.logg != nil {
		l.logg.Debug(l.logg.WithFields(ctx, map[string]any{"title": n.Title, "data": n.Data}), "push disabled, notification dropped")
	}
	return nil
}

// New returns the FCM notifier when push is enabled, otherwise a LogNotifier.
func New(ctx context.Context, cfg config.PushConfig, logg *logger.Logger) (Notifier, error) {
	if !cfg.Enabled {
		return NewLogNotifier(logg), nil
	}
	return NewTopicNotifier(ctx, cfg)
}
