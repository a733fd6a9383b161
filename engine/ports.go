package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hivepower/go-crowdsale/sale"
)

// TokenLedger is the engine's view of the external token collaborator. The
// engine is the ledger's owner for the duration of the sale, so every call
// here is owner-authorized on the other side. token.Ledger.Bind provides
// the production implementation.
//
// These calls are the only points (besides the vault) where an operation
// can fail after validation; the engine orders its work so a failure here
// leaves the sale state unchanged.
type TokenLedger interface {
	Mint(to common.Address, amount *big.Int) error
	MintLocked(to common.Address, amount *big.Int, unlockStart sale.Timestamp, steps, stepSeconds uint64) error
	FinishMinting() error
	TransferOwnership(newOwner common.Address) error
}

// ValueVault is the custody port: it holds contributed value while the sale
// runs and performs the irreversible outbound transfers (beneficiary payout
// on Success, refunds on Failure). The engine only calls Transfer after all
// internal invariants are satisfied, so a mock vault suffices to test the
// state machine without real value movement.
type ValueVault interface {
	// Deposit takes custody of a contribution.
	Deposit(from common.Address, amount *big.Int) error

	// Transfer pays out from custody to the given identity.
	Transfer(to common.Address, amount *big.Int) error
}
