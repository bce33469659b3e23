package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const webIcon = "/icon-192.svg"

// Client wraps Firebase Cloud Messaging
type Client struct {
	messaging *messaging.Client
	logger    *zap.Logger
}

// NewClient initializes Firebase from credentialsFile, or from application
// default credentials when the path is empty.
func NewClient(ctx context.Context, credentialsFile string, logger *zap.Logger) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &Client{messaging: client, logger: logger.Named("fcm")}, nil
}

// NotificationData is the content of a push notification
type NotificationData struct {
	Title string
	Body  string
	// Data is delivered to the app alongside the notification
	Data map[string]string
	// ClickAction is the frontend path opened when the notification is clicked
	ClickAction string
}

// SendToDevices multicasts a notification and returns the tokens that failed.
func (c *Client) SendToDevices(ctx context.Context, tokens []string, n NotificationData) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	if n.ClickAction != "" {
		data["click_action"] = n.ClickAction
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: n.Title,
				Body:  n.Body,
				Icon:  webIcon,
			},
		},
	}

	response, err := c.messaging.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	c.logger.Debug("multicast sent",
		zap.Int("success", response.SuccessCount),
		zap.Int("failure", response.FailureCount),
	)

	var failed []string
	for i, resp := range response.Responses {
		if resp.Success {
			continue
		}
		failed = append(failed, tokens[i])
		c.logger.Info("device token rejected", zap.String("token", redact(tokens[i])), zap.Error(resp.Error))
	}
	return failed, nil
}

func redact(token string) string {
	if len(token) <= 12 {
		return "..."
	}
	return token[:12] + "..."
}
