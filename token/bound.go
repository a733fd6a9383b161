package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hivepower/go-crowdsale/sale"
)

// BoundLedger is the ledger surface seen by a single caller identity. The
// sale engine holds one bound to its own address, which is how it acts as
// the ledger's owner without threading a caller argument through every
// call. It satisfies the engine's TokenLedger port.
type BoundLedger struct {
	ledger *Ledger
	as     common.Address
}

// Bind fixes a caller identity over the ledger.
func (l *Ledger) Bind(as common.Address) *BoundLedger {
	return &BoundLedger{ledger: l, as: as}
}

// Mint credits tokens as the bound identity.
func (b *BoundLedger) Mint(to common.Address, amount *big.Int) error {
	return b.ledger.Mint(b.as, to, amount)
}

// MintLocked mints a step-vested grant as the bound identity.
func (b *BoundLedger) MintLocked(to common.Address, amount *big.Int, unlockStart sale.Timestamp, steps, stepSeconds uint64) error {
	return b.ledger.MintLocked(b.as, to, amount, unlockStart, steps, stepSeconds)
}

// FinishMinting flips the mint latch as the bound identity.
func (b *BoundLedger) FinishMinting() error {
	return b.ledger.FinishMinting(b.as)
}

// TransferOwnership hands the ledger over as the bound identity.
func (b *BoundLedger) TransferOwnership(newOwner common.Address) error {
	return b.ledger.TransferOwnership(b.as, newOwner)
}
