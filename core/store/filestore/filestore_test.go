package filestore

import (
	"context"
	"testing"

	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/identity"
	"github.com/bitbill-network/ebill-core/core/notification"
)

func TestBlockStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kp, _ := chain.NewKeyPair()
	billID := chain.NewBillID(kp.Public)

	s, err := NewBlockStore(dir)
	if err != nil {
		t.Fatalf("NewBlockStore: %v", err)
	}
	block := &chain.Block{ID: 1, OpCode: chain.OpIssue}
	if err := s.AddBlock(ctx, billID, block); err != nil {
		t.Fatalf("AddBlock: %v", err)
	}

	reopened, err := NewBlockStore(dir)
	if err != nil {
		t.Fatalf("reopen NewBlockStore: %v", err)
	}
	got, err := reopened.GetLatestBlock(ctx, billID)
	if err != nil {
		t.Fatalf("GetLatestBlock: %v", err)
	}
	if got == nil || got.ID != 1 {
		t.Fatalf("expected block id 1 to survive reopen, got %+v", got)
	}
}

func TestBillStoreKeysAndPaidStatePersist(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kp, _ := chain.NewKeyPair()
	billID := chain.NewBillID(kp.Public)

	s, err := NewBillStore(dir)
	if err != nil {
		t.Fatalf("NewBillStore: %v", err)
	}
	if exists, _ := s.Exists(ctx, billID); exists {
		t.Fatalf("expected bill to not exist yet")
	}
	if err := s.SaveKeys(ctx, billID, kp); err != nil {
		t.Fatalf("SaveKeys: %v", err)
	}
	if err := s.SetToPaid(ctx, billID, "addr1"); err != nil {
		t.Fatalf("SetToPaid: %v", err)
	}

	reopened, err := NewBillStore(dir)
	if err != nil {
		t.Fatalf("reopen NewBillStore: %v", err)
	}
	if exists, _ := reopened.Exists(ctx, billID); !exists {
		t.Fatalf("expected bill to exist after reopen")
	}
	got, err := reopened.GetKeys(ctx, billID)
	if err != nil {
		t.Fatalf("GetKeys: %v", err)
	}
	if !got.Public.IsEqual(kp.Public) {
		t.Fatalf("expected recovered key to match original")
	}
	paid, _ := reopened.IsPaid(ctx, billID, "addr1")
	if !paid {
		t.Fatalf("expected paid state to survive reopen")
	}
}

func TestContactStorePersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewContactStore(dir)
	if err != nil {
		t.Fatalf("NewContactStore: %v", err)
	}
	c := identity.Contact{NodeID: "node1", Name: "Alice"}
	if err := s.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	reopened, err := NewContactStore(dir)
	if err != nil {
		t.Fatalf("reopen NewContactStore: %v", err)
	}
	got, err := reopened.Get(ctx, "node1")
	if err != nil || got.Name != "Alice" {
		t.Fatalf("Get: %v, %+v", err, got)
	}
	if err := reopened.Delete(ctx, "node1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := reopened.Get(ctx, "node1"); err == nil {
		t.Fatalf("expected error after delete")
	}
}

func TestIdentityStoreRoundTripsKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kp, _ := chain.NewKeyPair()

	s, err := NewIdentityStore(dir)
	if err != nil {
		t.Fatalf("NewIdentityStore: %v", err)
	}
	id := identity.Identity{NodeID: chain.NodeIDFromPublicKey(kp.Public), Name: "Alice", Keys: kp}
	if err := s.Save(ctx, id); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := NewIdentityStore(dir)
	if err != nil {
		t.Fatalf("reopen NewIdentityStore: %v", err)
	}
	got, err := reopened.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Alice" || got.Keys == nil || !got.Keys.Public.IsEqual(kp.Public) {
		t.Fatalf("expected identity and keys to survive reopen, got %+v", got)
	}
}

func TestNotificationStoreDedupPersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewNotificationStore(dir)
	if err != nil {
		t.Fatalf("NewNotificationStore: %v", err)
	}
	n := notification.Notification{
		ID: "n1", NodeID: "node1", Kind: notification.KindBill,
		Action: notification.ActionRequestToAcceptTimeout, ReferenceID: "bill1",
		BlockHeight: 2, Active: true,
	}
	if err := s.Create(ctx, n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reopened, err := NewNotificationStore(dir)
	if err != nil {
		t.Fatalf("reopen NewNotificationStore: %v", err)
	}
	exists, _ := reopened.ExistsDeduped(ctx, "bill1", 2, string(notification.ActionRequestToAcceptTimeout))
	if !exists {
		t.Fatalf("expected dedup entry to survive reopen")
	}
	active, err := reopened.GetActiveForNode(ctx, "node1")
	if err != nil || len(active) != 1 {
		t.Fatalf("GetActiveForNode: %v, %d results", err, len(active))
	}
}
