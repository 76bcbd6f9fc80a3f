package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-notify-nosql/internal/domain"
)

type publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Gateway delivers push messages through SNS mobile push. Device tokens are
// SNS platform endpoint ARNs.
type Gateway struct {
	client publisher
}

// NewGateway creates an SNS gateway for the given region.
func NewGateway(awsCfg aws.Config, region string) *Gateway {
	return &Gateway{client: sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if region != "" {
			o.Region = region
		}
	})}
}

func (g *Gateway) Send(ctx context.Context, endpointARN string, msg domain.PushMessage) error {
	payload, err := buildPayload(msg)
	if err != nil {
		return err
	}
	_, err = g.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(endpointARN),
		Message:          aws.String(payload),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

type gcmPayload struct {
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Image string `json:"image,omitempty"`
	} `json:"notification"`
}

type apnsAlert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type apnsPayload struct {
	Aps struct {
		Alert          apnsAlert `json:"alert"`
		MutableContent int       `json:"mutable-content,omitempty"`
	} `json:"aps"`
	ImageURL string `json:"image_url,omitempty"`
}

// buildPayload renders the per-platform envelope SNS expects when
// MessageStructure is "json": each platform value is itself a JSON string.
func buildPayload(msg domain.PushMessage) (string, error) {
	var gcm gcmPayload
	gcm.Notification.Title = msg.Title
	gcm.Notification.Body = msg.Body
	gcm.Notification.Image = msg.ImageURL

	var apns apnsPayload
	apns.Aps.Alert = apnsAlert{Title: msg.Title, Body: msg.Body}
	if msg.ImageURL != "" {
		apns.Aps.MutableContent = 1
		apns.ImageURL = msg.ImageURL
	}

	gcmJSON, err := json.Marshal(gcm)
	if err != nil {
		return "", fmt.Errorf("encode gcm payload: %w", err)
	}
	apnsJSON, err := json.Marshal(apns)
	if err != nil {
		return "", fmt.Errorf("encode apns payload: %w", err)
	}

	out, err := json.Marshal(map[string]string{
		"default":      msg.Body,
		"GCM":          string(gcmJSON),
		"APNS":         string(apnsJSON),
		"APNS_SANDBOX": string(apnsJSON),
	})
	if err != nil {
		return "", fmt.Errorf("encode sns message: %w", err)
	}
	return string(out), nil
}
