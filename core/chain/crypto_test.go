package chain

import "testing"

func TestEncryptDecryptPayloadRoundTrip(t *testing.T) {
	kp, err := NewKeyPair()
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	plaintext := []byte(`{"hello":"world"}`)

	blob, err := EncryptPayload(kp.Public, plaintext)
	if err != nil {
		t.Fatalf("EncryptPayload: %v", err)
	}
	got, err := DecryptPayload(kp.Private, blob)
	if err != nil {
		t.Fatalf("DecryptPayload: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestDecryptPayloadWrongKeyFails(t *testing.T) {
	kp, _ := NewKeyPair()
	other, _ := NewKeyPair()

	blob, err := EncryptPayload(kp.Public, []byte("secret"))
	if err != nil {
		t.Fatalf("EncryptPayload: %v", err)
	}
	if _, err := DecryptPayload(other.Private, blob); err == nil {
		t.Fatalf("expected decryption failure with wrong key")
	}
}

func TestSignVerify(t *testing.T) {
	kp, _ := NewKeyPair()
	hash := Hash{1, 2, 3}

	sig := Sign(kp.Private, hash)
	if !Verify(kp.Public, hash, sig) {
		t.Fatalf("expected signature to verify")
	}

	other, _ := NewKeyPair()
	if Verify(other.Public, hash, sig) {
		t.Fatalf("expected signature to fail under wrong public key")
	}
}

func TestNodeIDRoundTrip(t *testing.T) {
	kp, _ := NewKeyPair()
	id := NodeIDFromPublicKey(kp.Public)

	pub, err := id.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}
	if string(pub.SerializeCompressed()) != string(kp.Public.SerializeCompressed()) {
		t.Fatalf("recovered public key does not match original")
	}
}
