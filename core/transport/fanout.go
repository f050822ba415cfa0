package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/store"
)

// Enqueue encodes env and places it on queue for the Outbox to deliver,
// addressed to recipientKey's messaging topic. It is how a local action
// (issuing, accepting, endorsing...) hands its freshly appended block to the
// retrying delivery path instead of publishing inline and risking a lost
// send on a transient relay failure.
func Enqueue(ctx context.Context, queue store.NostrQueueStore, senderID chain.NodeID, recipientKey chain.MessagingKey, env Envelope) error {
	blob, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return queue.Enqueue(ctx, store.NostrQueuedMessage{
		ID:            uuid.NewString(),
		SenderID:      senderID,
		RecipientNode: chain.NodeID(MessagingTopic(recipientKey)),
		Payload:       blob,
		Created:       uint64(time.Now().Unix()),
		MaxRetries:    store.DefaultMaxRetries,
	})
}

// TopicSender resolves a queued message's pre-computed topic (see Enqueue),
// for use as an Outbox.Sender.
func TopicSender(ctx context.Context, m store.NostrQueuedMessage) (string, error) {
	return string(m.RecipientNode), nil
}
