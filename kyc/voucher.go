// Package kyc implements the off-chain authorization layer of the sale:
// vouchers issued by a trusted know-your-customer backend, their wire
// encoding, and signature verification against the configured signer set.
//
// A voucher binds three things together under one signature:
//   - a contributor identity (address plus a numeric backend id)
//   - the maximum raw value that identity is allowed to contribute
//   - the specific sale deployment (via the sale identity hash)
//
// The digest is domain-separated, so a voucher can never be replayed against
// a different sale, and a signature over one contributor/cap pair cannot be
// reused for another. Verification is pure: enforcing the max-amount ceiling
// against actual deposits is the engine's job.
package kyc

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hivepower/go-crowdsale/utils/compact"
)

// authorizationTag is the fixed domain-separation prefix of the voucher
// digest. Changing it invalidates every issued voucher.
const authorizationTag = "hivepower sale authorization"

// SignatureLength is the expected [R || S || V] signature size.
const SignatureLength = 65

// Voucher is an off-chain-issued contribution authorization.
type Voucher struct {
	// ContributorID is the KYC backend's numeric id for the contributor.
	// It is part of the signed digest so backend records can be correlated
	// with on-sale activity during audits.
	ContributorID uint64

	// MaxAmount is the ceiling (in base value units) on the contributor's
	// cumulative deposits under this voucher.
	MaxAmount *big.Int

	// Signature is the 65-byte [R || S || V] secp256k1 signature over the
	// voucher digest, produced by one of the sale's KYC signers.
	Signature []byte
}

// Digest computes the signed message hash for a voucher covering the given
// contributor and sale instance. The layout is:
//
//	keccak256(tag ++ saleID ++ contributor ++ contributorID ++ maxAmount)
//
// wrapped in the standard Ethereum signed-message envelope, so commodity
// wallet tooling can produce and audit the signatures.
func Digest(saleID common.Hash, contributor common.Address, contributorID uint64, maxAmount *big.Int) common.Hash {
	w := &compact.Writer{}
	w.FixedBytes([]byte(authorizationTag))
	w.FixedBytes(saleID.Bytes())
	w.FixedBytes(contributor.Bytes())
	w.Uint64(contributorID)
	w.BigInt(maxAmount)
	inner := crypto.Keccak256(w.Bytes())

	prefixed := crypto.Keccak256(
		[]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(inner))),
		inner,
	)
	return common.BytesToHash(prefixed)
}

// Encode serializes the voucher into its compact wire form. This is the blob
// the KYC backend hands to the contributor.
func (v *Voucher) Encode() ([]byte, error) {
	if v.MaxAmount == nil || v.MaxAmount.Sign() < 0 {
		return nil, errors.New("voucher: max amount must be non-negative")
	}
	if len(v.Signature) != SignatureLength {
		return nil, fmt.Errorf("voucher: signature must be %d bytes", SignatureLength)
	}
	w := &compact.Writer{}
	w.Uint64(v.ContributorID)
	w.BigInt(v.MaxAmount)
	w.FixedBytes(v.Signature)
	return w.Bytes(), nil
}

// DecodeVoucher parses a wire blob back into a Voucher. Truncated, padded or
// non-canonical blobs are rejected.
func DecodeVoucher(raw []byte) (*Voucher, error) {
	v := &Voucher{}
	err := compact.Decode(raw, func(r *compact.Reader) error {
		v.ContributorID = r.Uint64()
		v.MaxAmount = r.BigInt()
		v.Signature = r.FixedBytes(SignatureLength)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("voucher: %w", err)
	}
	return v, nil
}

// Issue creates a signed voucher. It is used by the signer-side tooling and
// by tests; the sale engine itself only ever verifies.
func Issue(key *ecdsa.PrivateKey, saleID common.Hash, contributor common.Address, contributorID uint64, maxAmount *big.Int) (*Voucher, error) {
	digest := Digest(saleID, contributor, contributorID, maxAmount)
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return nil, fmt.Errorf("voucher: signing failed: %w", err)
	}
	return &Voucher{
		ContributorID: contributorID,
		MaxAmount:     new(big.Int).Set(maxAmount),
		Signature:     sig,
	}, nil
}
