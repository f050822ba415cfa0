package transport

import (
	"encoding/json"
	"fmt"

	"github.com/bitbill-network/ebill-core/core/chain"
)

// Encode serializes e into the wire frame relayed over a Relay: five
// length-prefixed fields (sender, recipient, bill id, JSON-encoded blocks,
// action tag).
func (e Envelope) Encode() ([]byte, error) {
	blocksJSON, err := json.Marshal(e.Blocks)
	if err != nil {
		return nil, fmt.Errorf("transport: marshal blocks: %w", err)
	}
	var buf []byte
	buf = putLP(buf, []byte(e.SenderNodeID))
	buf = putLP(buf, []byte(e.RecipientNodeID))
	buf = putLP(buf, []byte(e.BillID))
	buf = putLP(buf, blocksJSON)
	buf = putLP(buf, []byte(e.Action))
	return buf, nil
}

// DecodeEnvelope parses the frame Encode produced. The trailing action field
// is optional on read so frames written before it existed still decode.
func DecodeEnvelope(blob []byte) (Envelope, error) {
	var e Envelope
	sender, rest, err := readLP(blob)
	if err != nil {
		return e, err
	}
	recipient, rest, err := readLP(rest)
	if err != nil {
		return e, err
	}
	billID, rest, err := readLP(rest)
	if err != nil {
		return e, err
	}
	blocksJSON, rest, err := readLP(rest)
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(blocksJSON, &e.Blocks); err != nil {
		return e, fmt.Errorf("transport: unmarshal blocks: %w", err)
	}
	e.SenderNodeID = chain.NodeID(sender)
	e.RecipientNodeID = chain.NodeID(recipient)
	e.BillID = chain.BillID(billID)
	if len(rest) > 0 {
		if action, _, err := readLP(rest); err == nil {
			e.Action = string(action)
		}
	}
	return e, nil
}

// GenerateActionMessages derives one outbound Envelope per participant who
// has ever appeared on c, per §4.4: a participant whose first-seen block
// height equals the chain head is a brand-new participant and receives the
// whole chain as bootstrap; everyone else receives only the latest block.
// selfNodeID is never sent an envelope. overrides tags a specific recipient
// with an explicit action (e.g. "AcceptBill", "CheckBill"); recipients
// absent from overrides get the default, untagged "BillBlock" event.
func GenerateActionMessages(c *chain.Chain, decrypt func(*chain.Block, any) error, selfNodeID chain.NodeID, overrides map[chain.NodeID]string) ([]Envelope, error) {
	firstSeen, err := c.ParticipantFirstSeenHeight(decrypt)
	if err != nil {
		return nil, fmt.Errorf("transport: derive participants: %w", err)
	}
	head := c.Latest().ID
	envelopes := make([]Envelope, 0, len(firstSeen))
	for nodeID, height := range firstSeen {
		if nodeID == selfNodeID {
			continue
		}
		env := Envelope{
			SenderNodeID:    selfNodeID,
			RecipientNodeID: nodeID,
			BillID:          c.BillID,
			Action:          overrides[nodeID],
		}
		if height == head {
			env.Blocks = append([]*chain.Block(nil), c.Blocks...)
		} else {
			env.Blocks = []*chain.Block{c.Latest()}
		}
		envelopes = append(envelopes, env)
	}
	return envelopes, nil
}
