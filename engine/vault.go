package engine

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// MemoryVault is an in-process ValueVault: a pooled balance with an outbox
// of credits per identity. It backs tests and the simulate command; a real
// deployment substitutes an implementation wired to actual custody.
type MemoryVault struct {
	mu      sync.Mutex
	held    *big.Int
	credits map[common.Address]*big.Int
}

// NewMemoryVault creates an empty vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{
		held:    new(big.Int),
		credits: make(map[common.Address]*big.Int),
	}
}

// Deposit takes custody of a contribution.
func (v *MemoryVault) Deposit(from common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if amount == nil || amount.Sign() <= 0 {
		return errors.New("vault: deposit must be positive")
	}
	v.held.Add(v.held, amount)
	return nil
}

// Transfer pays out of custody, crediting the recipient's outbox.
func (v *MemoryVault) Transfer(to common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if amount == nil || amount.Sign() <= 0 {
		return errors.New("vault: transfer must be positive")
	}
	if v.held.Cmp(amount) < 0 {
		return errors.New("vault: transfer exceeds held value")
	}
	v.held.Sub(v.held, amount)
	credit, ok := v.credits[to]
	if !ok {
		credit = new(big.Int)
		v.credits[to] = credit
	}
	credit.Add(credit, amount)
	return nil
}

// Held returns the value currently in custody.
func (v *MemoryVault) Held() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.held)
}

// CreditedTo returns the total ever paid out to an identity.
func (v *MemoryVault) CreditedTo(addr common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	credit, ok := v.credits[addr]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(credit)
}
