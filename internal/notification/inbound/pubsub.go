// Package inbound feeds push messages published on Pub/Sub into the message
// router, standing in for the platform's foreground and opened callbacks.
package inbound

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"schoolapp/internal/notification/domain"
	"schoolapp/internal/notification/router"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// EventAttribute tells whether a message arrived in the foreground or was
// opened by the user from the notification tray.
const (
	EventAttribute = "event"
	EventOpened    = "opened"

	seenCapacity = 256
)

// Handler receives decoded messages. *router.Router satisfies it.
type Handler interface {
	HandleForeground(ctx context.Context, msg domain.Message) router.Delivery
	HandleOpened(ctx context.Context, msg domain.Message) router.Destination
}

type Service struct {
	pubsubClient *pubsub.Client
	handler      Handler
	topicName    string
	subName      string

	mu   sync.Mutex
	seen map[string]struct{}
	ring []string
}

func NewService(projectID, topicName, subName string, handler Handler, credentialsFile string) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	s := newService(handler)
	s.pubsubClient = client
	s.topicName = topicName
	s.subName = subName
	if s.subName == "" {
		s.subName = topicName + "-device"
	}
	return s, nil
}

func newService(handler Handler) *Service {
	return &Service{handler: handler, seen: make(map[string]struct{})}
}

// Start blocks receiving messages until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting inbound messages with topic: %s, subscription: %s", s.topicName, s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg.Data, msg.Attributes)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (s *Service) Close() error {
	if s.pubsubClient == nil {
		return nil
	}
	return s.pubsubClient.Close()
}

func (s *Service) handleMessage(ctx context.Context, data []byte, attrs map[string]string) {
	var msg domain.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("[PubSub] Failed to unmarshal message: %v", err)
		return
	}

	if msg.MessageID != "" && s.markSeen(msg.MessageID+"/"+attrs[EventAttribute]) {
		log.Printf("[PubSub] Skipping duplicate message %s", msg.MessageID)
		return
	}

	if attrs[EventAttribute] == EventOpened {
		dest := s.handler.HandleOpened(ctx, msg)
		log.Printf("[PubSub] Opened message %s routed to %s", msg.MessageID, dest)
		return
	}

	d := s.handler.HandleForeground(ctx, msg)
	log.Printf("[PubSub] Foreground message %s: display=%s stored=%v", msg.MessageID, d.Display, d.Stored)
}

// markSeen reports whether key was already seen, remembering the most recent keys.
func (s *Service) markSeen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[key]; ok {
		return true
	}
	s.seen[key] = struct{}{}
	s.ring = append(s.ring, key)
	if len(s.ring) > seenCapacity {
		delete(s.seen, s.ring[0])
		s.ring = s.ring[1:]
	}
	return false
}

// Reset forgets delivered message IDs. It is registered as a logout observer.
func (s *Service) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]struct{})
	s.ring = nil
	return nil
}
