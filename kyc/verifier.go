package kyc

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidSignature covers every verification failure: malformed
// signature, unrecoverable public key, or a recovered signer outside the
// trusted set. Callers get no finer detail on purpose; distinguishing the
// cases would leak which part of a forged voucher was wrong.
var ErrInvalidSignature = errors.New("invalid voucher signature")

// Verifier checks a voucher against a contributor and a sale instance and
// returns the identity that signed it. The engine depends on this interface
// rather than on the concrete recovery code, so the state machine is
// testable with a fake while production wiring uses real curve recovery.
type Verifier interface {
	Verify(v *Voucher, contributor common.Address, saleID common.Hash) (common.Address, error)
}

// SignerSet is the production Verifier: secp256k1 public key recovery
// checked against the sale's configured KYC signers.
type SignerSet struct {
	signers map[common.Address]struct{}
}

// NewSignerSet builds a verifier trusting exactly the given identities.
func NewSignerSet(signers []common.Address) *SignerSet {
	set := make(map[common.Address]struct{}, len(signers))
	for _, s := range signers {
		set[s] = struct{}{}
	}
	return &SignerSet{signers: set}
}

// Contains reports whether the identity is in the trusted set.
func (s *SignerSet) Contains(addr common.Address) bool {
	_, ok := s.signers[addr]
	return ok
}

// Verify recovers the signer of the voucher digest and succeeds only if it
// is a member of the trusted set. Pure: no state is read or written beyond
// the arguments.
func (s *SignerSet) Verify(v *Voucher, contributor common.Address, saleID common.Hash) (common.Address, error) {
	if v == nil || v.MaxAmount == nil || len(v.Signature) != SignatureLength {
		return common.Address{}, ErrInvalidSignature
	}
	digest := Digest(saleID, contributor, v.ContributorID, v.MaxAmount)
	pub, err := crypto.SigToPub(digest.Bytes(), v.Signature)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	signer := crypto.PubkeyToAddress(*pub)
	if !s.Contains(signer) {
		return common.Address{}, ErrInvalidSignature
	}
	return signer, nil
}
