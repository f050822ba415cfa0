package transport

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/bitbill-network/ebill-core/core/store"
)

// backoffFor is linear: attempt N waits N minutes before the next try,
// capped at backoffCap (§9 Open Questions: outbox linear backoff,
// max_retries=5, 1-minute unit).
const (
	backoffUnit = time.Minute
	backoffCap  = 5 * time.Minute
)

func backoffFor(numRetries int) time.Duration {
	d := time.Duration(numRetries) * backoffUnit
	if d > backoffCap {
		return backoffCap
	}
	return d
}

// Outbox retries relay sends that failed: a ticking loop that scans a queue
// for work that's due and processes it under a rate limit.
type Outbox struct {
	Queue   store.NostrQueueStore
	Relay   Relay
	Limiter *rate.Limiter
	Log     *logrus.Entry

	// Sender resolves where to publish an already-enqueued message; it is
	// the same topic derivation the live fan-out path uses.
	Sender func(ctx context.Context, m store.NostrQueuedMessage) (topic string, err error)
}

// NewOutbox builds an Outbox rate-limited to maxPerSecond publishes.
func NewOutbox(queue store.NostrQueueStore, relay Relay, maxPerSecond float64, log *logrus.Logger) *Outbox {
	return &Outbox{
		Queue:   queue,
		Relay:   relay,
		Limiter: rate.NewLimiter(rate.Limit(maxPerSecond), 1),
		Log:     log.WithField("component", "outbox"),
	}
}

// Run scans the queue every interval until ctx is done, retrying messages
// whose backoff has elapsed.
func (o *Outbox) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.tick(ctx)
		}
	}
}

func (o *Outbox) tick(ctx context.Context) {
	now := uint64(time.Now().Unix())
	pending, err := o.Queue.GetRetryable(ctx, now)
	if err != nil {
		o.Log.WithError(err).Warn("list retryable outbox messages")
		return
	}
	for _, m := range pending {
		if m.LastTry != 0 && now-m.LastTry < uint64(backoffFor(m.NumRetries).Seconds()) {
			continue
		}
		if err := o.Limiter.Wait(ctx); err != nil {
			return
		}
		o.send(ctx, m, now)
	}
}

func (o *Outbox) send(ctx context.Context, m store.NostrQueuedMessage, now uint64) {
	topic, err := o.Sender(ctx, m)
	if err != nil {
		o.Log.WithError(err).WithField("message_id", m.ID).Warn("resolve outbox topic")
		_ = o.Queue.MarkFailedAttempt(ctx, m.ID, now)
		return
	}
	if err := o.Relay.Publish(ctx, topic, m.Payload); err != nil {
		o.Log.WithError(err).WithField("message_id", m.ID).Warn("retry publish failed")
		_ = o.Queue.MarkFailedAttempt(ctx, m.ID, now)
		return
	}
	_ = o.Queue.MarkSent(ctx, m.ID)
}
