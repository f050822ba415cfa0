package transport

import (
	"testing"

	"github.com/bitbill-network/ebill-core/core/chain"
)

func TestEnvelopeEncodeDecodeRoundTrip(t *testing.T) {
	e := Envelope{
		SenderNodeID:    "sender",
		RecipientNodeID: "recipient",
		BillID:          "bill1",
		Blocks:          []*chain.Block{{ID: 1, OpCode: chain.OpIssue}},
	}
	blob, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeEnvelope(blob)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if got.SenderNodeID != e.SenderNodeID || got.RecipientNodeID != e.RecipientNodeID || got.BillID != e.BillID {
		t.Fatalf("round trip lost identity fields: %+v", got)
	}
	if len(got.Blocks) != 1 || got.Blocks[0].ID != 1 {
		t.Fatalf("round trip lost blocks: %+v", got.Blocks)
	}
}

func TestBackoffForCapsAtCeiling(t *testing.T) {
	if backoffFor(0) != 0 {
		t.Fatalf("expected zero backoff on first attempt")
	}
	if backoffFor(3) != 3*backoffUnit {
		t.Fatalf("expected linear backoff before cap")
	}
	if backoffFor(100) != backoffCap {
		t.Fatalf("expected backoff to cap at %v, got %v", backoffCap, backoffFor(100))
	}
}
