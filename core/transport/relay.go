package transport

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/sirupsen/logrus"

	"github.com/bitbill-network/ebill-core/core/chain"
)

// Relay is a durable publish/subscribe broker, standing in for a Nostr
// relay: every participant publishes and subscribes on the topic named by
// its own messaging key (§3, §4.4).
type Relay interface {
	Publish(ctx context.Context, topic string, data []byte) error
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
	Close() error
}

// Subscription yields raw envelope bytes published to one topic.
type Subscription struct {
	sub *pubsub.Subscription
}

// Next blocks until the next message arrives on the topic or ctx is done.
func (s *Subscription) Next(ctx context.Context) ([]byte, error) {
	msg, err := s.sub.Next(ctx)
	if err != nil {
		return nil, err
	}
	return msg.Data, nil
}

// MessagingTopic derives the pubsub topic name a node publishes/subscribes
// on from its messaging key (the x-only coordinate of the node's public key,
// see chain.MessagingKeyFromPublicKey).
func MessagingTopic(key chain.MessagingKey) string {
	return fmt.Sprintf("ebill/v1/%x", key)
}

// PubSubRelay is a Relay backed by libp2p gossipsub, used when nodes peer
// directly rather than through an external relay operator.
type PubSubRelay struct {
	host host.Host
	ps   *pubsub.PubSub
	log  *logrus.Entry

	topics map[string]*pubsub.Topic
}

// NewPubSubRelay starts a libp2p host and a gossipsub router over it.
func NewPubSubRelay(ctx context.Context, log *logrus.Logger) (*PubSubRelay, error) {
	h, err := libp2p.New()
	if err != nil {
		return nil, fmt.Errorf("transport: start libp2p host: %w", err)
	}
	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("transport: start gossipsub: %w", err)
	}
	return &PubSubRelay{
		host:   h,
		ps:     ps,
		log:    log.WithField("component", "relay"),
		topics: make(map[string]*pubsub.Topic),
	}, nil
}

func (r *PubSubRelay) topic(name string) (*pubsub.Topic, error) {
	if t, ok := r.topics[name]; ok {
		return t, nil
	}
	t, err := r.ps.Join(name)
	if err != nil {
		return nil, fmt.Errorf("transport: join topic %s: %w", name, err)
	}
	r.topics[name] = t
	return t, nil
}

func (r *PubSubRelay) Publish(ctx context.Context, topic string, data []byte) error {
	t, err := r.topic(topic)
	if err != nil {
		return err
	}
	if err := t.Publish(ctx, data); err != nil {
		return fmt.Errorf("transport: publish to %s: %w", topic, err)
	}
	r.log.WithField("topic", topic).Debug("published envelope")
	return nil
}

func (r *PubSubRelay) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	t, err := r.topic(topic)
	if err != nil {
		return nil, err
	}
	sub, err := t.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("transport: subscribe to %s: %w", topic, err)
	}
	return &Subscription{sub: sub}, nil
}

func (r *PubSubRelay) Close() error {
	return r.host.Close()
}
