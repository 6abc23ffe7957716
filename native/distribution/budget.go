package distribution

import (
	"fmt"
	"math/bits"

	"assembly/native/token"
)

// InitializeBudget mints allocations[i] of accts.Mint into the associated
// account at Remaining[2i], owned by Remaining[2i+1], creating the account when
// it does not exist. The mint's authority must be the allocation authority
// derived from the session.
func (e *Engine) InitializeBudget(accts InitializeBudgetAccounts, allocations []uint64, bump uint8) error {
	if err := e.ready(); err != nil {
		return err
	}
	if len(accts.Remaining) != 2*len(allocations) {
		return fmt.Errorf("%w: %d accounts for %d allocations", ErrInvalidNumberOfAccounts, len(accts.Remaining), len(allocations))
	}
	if err := e.requireSigner(accts.Payer, "payer"); err != nil {
		return err
	}
	if err := e.requireSigner(accts.Session, "session"); err != nil {
		return err
	}
	allocationD := allocationDerivation(accts.Session, bump)
	if err := e.verify("allocation authority", accts.AllocationAuthority, allocationD); err != nil {
		return err
	}
	if _, err := e.ledger.Mint(accts.Mint); err != nil {
		return err
	}

	var total uint64
	for _, amount := range allocations {
		var carry uint64
		total, carry = bits.Add64(total, amount, 0)
		if carry != 0 {
			return fmt.Errorf("%w: budget total", ErrOverflow)
		}
	}

	authority := token.Derived(allocationD)
	for i, amount := range allocations {
		account := accts.Remaining[2*i]
		owner := accts.Remaining[2*i+1]
		expected, err := e.ledger.AssociatedAddress(owner, accts.Mint)
		if err != nil {
			return err
		}
		if expected != account {
			return fmt.Errorf("%w: allocation %d account %s, want %s", ErrAddressMismatch, i, account, expected)
		}
		if _, err := e.ledger.CreateAssociatedAccount(owner, accts.Mint); err != nil {
			return fmt.Errorf("allocation %d: %w", i, err)
		}
		if err := e.ledger.MintTo(accts.Mint, account, authority, amount); err != nil {
			return fmt.Errorf("allocation %d: %w", i, err)
		}
	}
	e.emit(NewBudgetAllocatedEvent(accts.Session, accts.Mint, len(allocations), total))
	return nil
}
