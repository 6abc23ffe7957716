package token

import (
	"fmt"

	"assembly/crypto"
)

// Authority is a capability presented to a ledger primitive. Keyed authorities
// are honoured only when the key signed the transaction; derived authorities
// are honoured only inside a program invocation and resolve under that
// program's ID, so no caller can present a derived authority it does not own.
type Authority interface {
	resolve(l *Ledger) (crypto.Address, error)
}

type keyAuthority struct {
	addr crypto.Address
}

// Key returns an authority backed by a transaction signature of addr.
func Key(addr crypto.Address) Authority { return keyAuthority{addr: addr} }

func (k keyAuthority) resolve(l *Ledger) (crypto.Address, error) {
	if !l.IsSigner(k.addr) {
		return crypto.Address{}, fmt.Errorf("%w: %s", ErrMissingSignature, k.addr)
	}
	return k.addr, nil
}

type derivedAuthority struct {
	derived crypto.DerivedAddress
}

// Derived returns an authority backed by a seed path of the invoking program.
func Derived(d crypto.DerivedAddress) Authority { return derivedAuthority{derived: d} }

func (d derivedAuthority) resolve(l *Ledger) (crypto.Address, error) {
	if l.invoker == nil {
		return crypto.Address{}, ErrInvalidSigner
	}
	return d.derived.Derive(*l.invoker)
}
