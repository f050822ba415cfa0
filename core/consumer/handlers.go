package consumer

import (
	"github.com/bitbill-network/ebill-core/core/chain"
	"github.com/bitbill-network/ebill-core/core/transport"
)

// handlesEvent reports whether nodeID is the intended recipient of env. A
// node only applies envelopes addressed to it; everything else is relay
// noise from other subscribers sharing the same topic namespace.
func handlesEvent(nodeID chain.NodeID, env transport.Envelope) bool {
	return env.RecipientNodeID == nodeID
}
