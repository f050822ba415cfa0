package chain

import (
	"crypto/rand"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/chacha20poly1305"
)

// Signature is a detached secp256k1 ECDSA signature over a block hash.
type Signature []byte

// Sign produces a signature over hash using the signer's private key.
func Sign(priv *secp256k1.PrivateKey, hash [32]byte) Signature {
	sig := ecdsa.Sign(priv, hash[:])
	return Signature(sig.Serialize())
}

// Verify reports whether sig is a valid signature over hash by pub.
func Verify(pub *secp256k1.PublicKey, hash [32]byte, sig Signature) bool {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(hash[:], pub)
}

// envelope is the deterministic byte layout of an encrypted block payload:
// an ephemeral public key, followed by the AEAD nonce, followed by the
// ciphertext (which includes the Poly1305 authentication tag).
type envelope struct {
	EphemeralPub []byte `json:"ephemeral_pub"`
	Nonce        []byte `json:"nonce"`
	Ciphertext   []byte `json:"ciphertext"`
}

// EncryptPayload performs ECIES-style hybrid encryption of plaintext to
// recipientPub: an ephemeral secp256k1 key is generated, its ECDH shared
// secret with recipientPub becomes an XChaCha20-Poly1305 key, and the
// plaintext is sealed under a random nonce. The output is a self-contained,
// deterministic-layout blob; decrypting it requires only recipientPub's
// matching private key.
func EncryptPayload(recipientPub *secp256k1.PublicKey, plaintext []byte) ([]byte, error) {
	ephemeral, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("ephemeral key: %w", err)
	}
	shared := secp256k1.GenerateSharedSecret(ephemeral, recipientPub)

	aead, err := chacha20poly1305.NewX(shared)
	if err != nil {
		return nil, fmt.Errorf("aead init: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	env := envelope{
		EphemeralPub: ephemeral.PubKey().SerializeCompressed(),
		Nonce:        nonce,
		Ciphertext:   ciphertext,
	}
	return encodeEnvelope(env)
}

// DecryptPayload reverses EncryptPayload given the recipient's private key.
func DecryptPayload(recipientPriv *secp256k1.PrivateKey, blob []byte) ([]byte, error) {
	env, err := decodeEnvelope(blob)
	if err != nil {
		return nil, err
	}
	ephemeralPub, err := secp256k1.ParsePubKey(env.EphemeralPub)
	if err != nil {
		return nil, fmt.Errorf("ephemeral pub: %w", err)
	}
	shared := secp256k1.GenerateSharedSecret(recipientPriv, ephemeralPub)

	aead, err := chacha20poly1305.NewX(shared)
	if err != nil {
		return nil, fmt.Errorf("aead init: %w", err)
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
