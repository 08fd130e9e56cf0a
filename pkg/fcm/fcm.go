package fcm

import (
	"context"
	"errors"
	"fmt"
	"log"

	"schoolapp/internal/notification/domain"
	"schoolapp/internal/notification/scheduler"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// ErrNoDeviceToken is returned when there is no installation token to deliver to.
var ErrNoDeviceToken = errors.New("fcm: no device token")

// sender is the subset of *messaging.Client the presenter needs.
type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TokenSource yields the installation's current device token.
type TokenSource interface {
	Cached(ctx context.Context) string
}

// Client presents local notifications by delivering them through Firebase
// Cloud Messaging to this installation's own token.
type Client struct {
	messagingClient sender
	tokens          TokenSource
}

// NewClient creates a new FCM client using the provided credentials file
func NewClient(credentialsFile string, tokens TokenSource) (*Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Client initialized successfully")
	return &Client{
		messagingClient: messagingClient,
		tokens:          tokens,
	}, nil
}

var _ scheduler.Presenter = (*Client)(nil)

// Present sends n to the device token held by the token source.
func (c *Client) Present(ctx context.Context, n scheduler.Notification) error {
	token := c.tokens.Cached(ctx)
	if token == "" {
		return ErrNoDeviceToken
	}

	response, err := c.messagingClient.Send(ctx, buildMessage(token, n))
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	log.Printf("[FCM] Notification %s presented on channel %s: %s", n.ID, n.Channel, response)
	return nil
}

func buildMessage(token string, n scheduler.Notification) *messaging.Message {
	data := make(map[string]string, len(n.Content.Data)+2)
	for k, v := range n.Content.Data {
		data[k] = v
	}
	data["type"] = string(n.Content.Type)
	data["notificationId"] = n.ID

	priority := "normal"
	if n.Channel == domain.ChannelAlerts {
		priority = "high"
	}

	aps := &messaging.Aps{Sound: "default"}
	if n.Content.Badge > 0 {
		badge := n.Content.Badge
		aps.Badge = &badge
	}

	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Content.Title,
			Body:  n.Content.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: priority,
			Notification: &messaging.AndroidNotification{
				ChannelID:         string(n.Channel),
				NotificationCount: intPtrOrNil(n.Content.Badge),
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": apnsPriority(priority),
			},
			Payload: &messaging.APNSPayload{Aps: aps},
		},
	}
}

func apnsPriority(priority string) string {
	if priority == "high" {
		return "10"
	}
	return "5"
}

func intPtrOrNil(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
