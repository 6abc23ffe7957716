package distribution

import (
	"fmt"

	"assembly/crypto"
)

func (e *Engine) requireSigner(addr crypto.Address, role string) error {
	if !e.ledger.IsSigner(addr) {
		return fmt.Errorf("%w: %s %s", ErrMissingSignature, role, addr)
	}
	return nil
}

// verify rejects expected unless it is the canonical derivation of d under
// the engine's program ID.
func (e *Engine) verify(label string, expected crypto.Address, d crypto.DerivedAddress) error {
	if err := crypto.VerifyDerivation(e.programID, expected, d); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAddressMismatch, label, err)
	}
	return nil
}

func (e *Engine) checkWindows(args DistributorArgs) error {
	if e.policy.RequireOrderedWindows && args.RedeemStartTs < args.DistEndTs {
		return fmt.Errorf("%w: redeem start %d, distribution end %d", ErrInvalidWindows, args.RedeemStartTs, args.DistEndTs)
	}
	return nil
}

func checkDistributionOpen(d *Distributor, now int64) error {
	if now >= d.Args.DistEndTs {
		return fmt.Errorf("%w: now %d, ended %d", ErrDistributionPeriodEnded, now, d.Args.DistEndTs)
	}
	return nil
}

func checkRedeemOpen(d *Distributor, now int64) error {
	if now < d.Args.RedeemStartTs {
		return fmt.Errorf("%w: now %d, opens %d", ErrRedeemPeriodNotStarted, now, d.Args.RedeemStartTs)
	}
	return nil
}

// checkGrant binds a stored grant to the distributor and recipient named by
// the caller.
func (e *Engine) checkGrant(g *Grant, d *Distributor, addr, recipient crypto.Address) error {
	if g.Distributor != d.Address {
		return fmt.Errorf("%w: grant %s belongs to %s", ErrAddressMismatch, addr, g.Distributor)
	}
	if g.Recipient != recipient {
		return fmt.Errorf("%w: grant %s issued to %s", ErrAddressMismatch, addr, g.Recipient)
	}
	return e.verify("grant", addr, grantDerivation(d.Address, recipient, g.Bump))
}
