// Package transport fans newly appended blocks out to the other
// participants of a bill over a relay network (§4.4), and runs the outbox
// retry loop for sends that failed. The relay abstraction is modeled on a
// Nostr relay: participants are reachable at a public key derived "messaging
// key", and a relay is just a durable pubsub broker.
package transport

import (
	"encoding/binary"
	"fmt"

	"github.com/bitbill-network/ebill-core/core/chain"
)

// Envelope is the length-prefixed, field-ordered wire frame for
// transporting blocks (and whole chains) between nodes: the counterpart of
// core/chain's block-payload envelope, but for the outer transport layer
// rather than the bill's own encryption.
type Envelope struct {
	SenderNodeID    chain.NodeID
	RecipientNodeID chain.NodeID
	BillID          chain.BillID
	// Blocks is either a single new block (fan-out of a fresh append) or the
	// full chain (first contact with a participant — see
	// Chain.ParticipantFirstSeenHeight).
	Blocks []*chain.Block
	// Action tags the event for recipients named in a generate_action_messages
	// override (e.g. "AcceptBill", "CheckBill"); empty for the default
	// BillBlock/None tag (§4.4).
	Action string
}

func putLP(buf []byte, field []byte) []byte {
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(field)))
	buf = append(buf, lenBytes[:]...)
	return append(buf, field...)
}

func readLP(buf []byte) ([]byte, []byte, error) {
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("transport: truncated length prefix")
	}
	n := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]
	if uint32(len(buf)) < n {
		return nil, nil, fmt.Errorf("transport: truncated field")
	}
	return buf[:n], buf[n:], nil
}
