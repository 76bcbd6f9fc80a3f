package fcm

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/go-notify-nosql/internal/domain"
	"google.golang.org/api/option"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Gateway delivers push messages to FCM registration tokens.
type Gateway struct {
	client messageSender
}

// NewGateway initialises a Firebase app from a service-account file and returns
// a Gateway backed by its messaging client.
func NewGateway(ctx context.Context, credentialsPath string) (*Gateway, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials file %s: %w", credentialsPath, err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firebase messaging client: %w", err)
	}
	return &Gateway{client: client}, nil
}

func (g *Gateway) Send(ctx context.Context, token string, msg domain.PushMessage) error {
	if _, err := g.client.Send(ctx, buildMessage(token, msg)); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}

func buildMessage(token string, msg domain.PushMessage) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title:    msg.Title,
			Body:     msg.Body,
			ImageURL: msg.ImageURL,
		},
	}
}
