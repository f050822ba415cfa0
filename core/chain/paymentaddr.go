package chain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// DerivePaymentAddress computes the P2WPKH address that reconciles a single
// waiting-for-payment block (§4.3):
//
//	addr = p2wpkh(bill_keys.public_key ⊕ holder_public_key)
//
// where ⊕ is secp256k1 public-key (curve point) addition. The caller supplies
// the Bitcoin network parameters the deployment targets.
func DerivePaymentAddress(billPub, holderPub *secp256k1.PublicKey, net *chaincfg.Params) (string, error) {
	sumPub, err := addPublicKeys(billPub, holderPub)
	if err != nil {
		return "", err
	}
	hash160 := btcutil.Hash160(sumPub.SerializeCompressed())
	addr, err := btcutil.NewAddressWitnessPubKeyHash(hash160, net)
	if err != nil {
		return "", fmt.Errorf("derive p2wpkh address: %w", err)
	}
	return addr.EncodeAddress(), nil
}

// addPublicKeys adds two secp256k1 points and rejects the point at infinity
// (§9 Open Questions: implementations must check and fail the op).
func addPublicKeys(a, b *secp256k1.PublicKey) (*secp256k1.PublicKey, error) {
	var aJac, bJac, sumJac secp256k1.JacobianPoint
	a.AsJacobian(&aJac)
	b.AsJacobian(&bJac)
	secp256k1.AddNonConst(&aJac, &bJac, &sumJac)
	if sumJac.Z.IsZero() {
		return nil, ErrInvalidPaymentKey
	}
	sumJac.ToAffine()
	return secp256k1.NewPublicKey(&sumJac.X, &sumJac.Y), nil
}

// DerivePaymentPrivateKey computes the scalar sum bill_keys.private +
// holder_keys.private (mod n), the private key that spends funds sent to the
// address returned by DerivePaymentAddress. It is released to the
// beneficiary only after the block they authorized is appended.
func DerivePaymentPrivateKey(billPriv, holderPriv *secp256k1.PrivateKey) *secp256k1.PrivateKey {
	var sum secp256k1.ModNScalar
	sum.Set(&billPriv.Key)
	sum.Add(&holderPriv.Key)
	return secp256k1.NewPrivateKey(&sum)
}
