package chain

import (
	"encoding/binary"
	"fmt"
)

// This file implements the length-prefixed, field-ordered binary framing
// used for encrypted payload envelopes (§6: "stable across versions
// (additions are new trailing fields)"). Wire envelopes in core/transport
// use their own copy of the same length-prefix scheme.
// Every variable-length field is preceded by a uint32 length in big-endian.

func putLP(buf []byte, field []byte) []byte {
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(field)))
	buf = append(buf, lenBytes[:]...)
	buf = append(buf, field...)
	return buf
}

func readLP(buf []byte) (field, rest []byte, err error) {
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("truncated length prefix")
	}
	n := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]
	if uint32(len(buf)) < n {
		return nil, nil, fmt.Errorf("truncated field: want %d bytes, have %d", n, len(buf))
	}
	return buf[:n], buf[n:], nil
}

func encodeEnvelope(env envelope) ([]byte, error) {
	var out []byte
	out = putLP(out, env.EphemeralPub)
	out = putLP(out, env.Nonce)
	out = putLP(out, env.Ciphertext)
	return out, nil
}

func decodeEnvelope(blob []byte) (envelope, error) {
	var env envelope
	var err error
	env.EphemeralPub, blob, err = readLP(blob)
	if err != nil {
		return envelope{}, fmt.Errorf("envelope ephemeral pub: %w", err)
	}
	env.Nonce, blob, err = readLP(blob)
	if err != nil {
		return envelope{}, fmt.Errorf("envelope nonce: %w", err)
	}
	env.Ciphertext, _, err = readLP(blob)
	if err != nil {
		return envelope{}, fmt.Errorf("envelope ciphertext: %w", err)
	}
	return env, nil
}
