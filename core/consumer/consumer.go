// Package consumer subscribes to a node's own relay topic and applies
// incoming bill envelopes: verifying and appending new blocks, assembling
// the resulting view, and notifying local subscribers (§4.4, §4.5).
package consumer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bitbill-network/ebill-core/core/billcache"
	"github.com/bitbill-network/ebill-core/core/billview"
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/notification"
	"github.com/bitbill-network/ebill-core/core/pushbus"
	"github.com/bitbill-network/ebill-core/core/store"
	"github.com/bitbill-network/ebill-core/core/transport"
)

// Consumer drains one node's relay subscription and folds incoming
// envelopes into local storage.
type Consumer struct {
	NodeID        chain.NodeID
	Relay         transport.Relay
	Offsets       store.NostrOffsetStore
	Blocks        store.BlockStore
	Bills         store.BillStore
	Notifications store.NotificationStore
	Cache         *billcache.Cache
	Bus           *pushbus.Bus
	Now           func() uint64
	Log           *logrus.Entry
}

// New builds a Consumer for nodeID, subscribing on its messaging topic.
func New(nodeID chain.NodeID, key chain.MessagingKey, relay transport.Relay, offsets store.NostrOffsetStore, blocks store.BlockStore, bills store.BillStore, notifications store.NotificationStore, cache *billcache.Cache, bus *pushbus.Bus, now func() uint64, log *logrus.Logger) *Consumer {
	return &Consumer{
		NodeID:        nodeID,
		Relay:         relay,
		Offsets:       offsets,
		Blocks:        blocks,
		Bills:         bills,
		Notifications: notifications,
		Cache:         cache,
		Bus:           bus,
		Now:           now,
		Log:           log.WithField("component", "consumer").WithField("node_id", string(nodeID)),
	}
}

// Run subscribes to the node's topic and processes messages until ctx is
// canceled or the subscription errors.
func (c *Consumer) Run(ctx context.Context, topic string) error {
	sub, err := c.Relay.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("consumer: subscribe: %w", err)
	}
	for {
		data, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("consumer: read subscription: %w", err)
		}
		if err := c.handle(ctx, data); err != nil {
			c.Log.WithError(err).Warn("failed to process incoming envelope")
		}
	}
}

// handle decodes and applies one envelope. It is exported-shaped (lower
// case, but independently testable) so handlers.go's predicate can be unit
// tested without a live relay.
func (c *Consumer) handle(ctx context.Context, data []byte) error {
	env, err := transport.DecodeEnvelope(data)
	if err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if !handlesEvent(c.NodeID, env) {
		return nil
	}
	eventID := fmt.Sprintf("%s:%d", env.BillID, len(env.Blocks))
	seen, err := c.Offsets.SeenEvent(ctx, c.NodeID, eventID)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if seen {
		return nil
	}

	keys, err := c.Bills.GetKeys(ctx, env.BillID)
	haveKeys := err == nil
	existing, err := c.Blocks.GetChain(ctx, env.BillID)
	if err != nil {
		existing = chain.NewChain(env.BillID, nil)
	}
	for _, block := range env.Blocks {
		if head := existing.Latest(); head != nil && block.ID <= head.ID {
			continue
		}
		if err := existing.Append(block); err != nil {
			return fmt.Errorf("verify block %d: %w", block.ID, err)
		}
		if err := c.Blocks.AddBlock(ctx, env.BillID, block); err != nil {
			return fmt.Errorf("append block %d: %w", block.ID, err)
		}
	}
	if c.Cache != nil {
		c.Cache.Invalidate(env.BillID)
	}
	last := env.Blocks[len(env.Blocks)-1]
	if c.Notifications != nil {
		if err := c.Notifications.Create(ctx, notification.Notification{
			ID:          eventID,
			NodeID:      c.NodeID,
			Kind:        notification.KindBill,
			Action:      notification.ActionType(last.OpCode),
			ReferenceID: string(env.BillID),
			BlockHeight: last.ID,
			Description: env.Action,
			Datetime:    c.Now(),
			Active:      true,
		}); err != nil {
			c.Log.WithError(err).Warn("record incoming notification")
		}
	}
	if c.Bus != nil {
		c.Bus.Publish(pushbus.Event{BillID: string(env.BillID), OpCode: string(last.OpCode), BlockHeight: last.ID})
	}
	if haveKeys && c.Cache != nil {
		ch, err := c.Blocks.GetChain(ctx, env.BillID)
		if err != nil {
			return fmt.Errorf("reload chain for cache warm: %w", err)
		}
		dec := func(b *chain.Block, out any) error { return b.DecryptData(keys.Private, out) }
		v, err := billview.Assemble(ch, dec, c.Now())
		if err != nil {
			return fmt.Errorf("assemble incoming bill view: %w", err)
		}
		c.Cache.Put(env.BillID, v)
	}
	return nil
}
