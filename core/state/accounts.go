package state

import (
	"fmt"
	"strings"

	errs "assembly/core/errors"
	"assembly/crypto"
)

// AllocateAccount registers program as the owner of addr. Allocation fails
// with ErrAccountInUse when any program already owns the address.
func (m *Manager) AllocateAccount(addr crypto.Address, program string) error {
	program = strings.TrimSpace(program)
	if program == "" {
		return fmt.Errorf("state: owner program must not be empty")
	}
	var existing string
	ok, err := m.KVGet(AccountOwnerKey(addr), &existing)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: %s owned by %s", errs.ErrAccountInUse, addr, existing)
	}
	return m.KVPut(AccountOwnerKey(addr), program)
}

// AccountOwner returns the program that allocated addr.
func (m *Manager) AccountOwner(addr crypto.Address) (string, bool, error) {
	var owner string
	ok, err := m.KVGet(AccountOwnerKey(addr), &owner)
	if err != nil || !ok {
		return "", false, err
	}
	return owner, true, nil
}

// RequireOwner fails unless addr was allocated by program.
func (m *Manager) RequireOwner(addr crypto.Address, program string) error {
	owner, ok, err := m.AccountOwner(addr)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrAccountNotFound, addr)
	}
	if owner != program {
		return fmt.Errorf("%w: %s owned by %s, want %s", errs.ErrAccountOwner, addr, owner, program)
	}
	return nil
}
