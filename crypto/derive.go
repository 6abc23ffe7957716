package crypto

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrDerivationMismatch is returned when an address does not equal the
	// canonical derivation of its seeds.
	ErrDerivationMismatch = errors.New("crypto: derived address mismatch")
	// ErrNonCanonicalBump is returned when a derivation succeeds with a bump
	// other than the first (highest) valid one.
	ErrNonCanonicalBump = errors.New("crypto: non-canonical bump")
)

// DerivedAddress is a keyless address described by its seed path and bump. It
// has no private key; a program proves control by presenting the same seeds and
// bump, which the ledger re-derives under the invoking program's ID.
type DerivedAddress struct {
	Seeds [][]byte
	Bump  uint8
}

// NewDerivedAddress copies the provided seeds into a derivation value.
func NewDerivedAddress(bump uint8, seeds ...[]byte) DerivedAddress {
	copied := make([][]byte, len(seeds))
	for i, seed := range seeds {
		copied[i] = append([]byte(nil), seed...)
	}
	return DerivedAddress{Seeds: copied, Bump: bump}
}

// SignerSeeds returns the seeds with the bump appended, the exact input to the
// derivation function.
func (d DerivedAddress) SignerSeeds() [][]byte {
	out := make([][]byte, 0, len(d.Seeds)+1)
	out = append(out, d.Seeds...)
	return append(out, []byte{d.Bump})
}

// Derive computes the address for programID. It fails when the seeds are
// malformed or the result lands on the ed25519 curve.
func (d DerivedAddress) Derive(programID Address) (Address, error) {
	addr, err := solana.CreateProgramAddress(d.SignerSeeds(), programID)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: derive address: %w", err)
	}
	return addr, nil
}

// FindDerivedAddress searches for the canonical bump of seeds under programID.
func FindDerivedAddress(programID Address, seeds ...[]byte) (Address, DerivedAddress, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return Address{}, DerivedAddress{}, fmt.Errorf("crypto: find derived address: %w", err)
	}
	return addr, NewDerivedAddress(bump, seeds...), nil
}

// VerifyDerivation checks that expected is the canonical derivation of d under
// programID. Only the canonical bump is accepted.
func VerifyDerivation(programID, expected Address, d DerivedAddress) error {
	canonical, found, err := FindDerivedAddress(programID, d.Seeds...)
	if err != nil {
		return err
	}
	if found.Bump != d.Bump {
		return fmt.Errorf("%w: got %d want %d", ErrNonCanonicalBump, d.Bump, found.Bump)
	}
	if !canonical.Equals(expected) {
		return fmt.Errorf("%w: got %s want %s", ErrDerivationMismatch, expected, canonical)
	}
	return nil
}
