package core

import (
	"context"

	"assembly/core/types"
	"assembly/crypto"
	nativecommon "assembly/native/common"
	"assembly/native/token"
)

// Host token operations used to prepare mints and fund vaults out of band.
// They act with keyed authorities only.

// CreateMint allocates a mint at the keyed address mint, which must sign.
func (x *Executor) CreateMint(ctx context.Context, signers []crypto.Address, mint crypto.Address, decimals uint8, mintAuthority, freezeAuthority *crypto.Address) (*types.Mint, error) {
	var out *types.Mint
	err := x.run(ctx, "token.create_mint", signers, func(c *call) error {
		if err := nativecommon.Guard(x.pauses, token.ProgramName); err != nil {
			return err
		}
		m, err := c.ledger.CreateMint(token.Key(mint), decimals, mintAuthority, freezeAuthority)
		out = m
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAssociatedAccount creates the associated token account of owner for
// mint if it is missing.
func (x *Executor) CreateAssociatedAccount(ctx context.Context, signers []crypto.Address, owner, mint crypto.Address) (*types.TokenAccount, error) {
	var out *types.TokenAccount
	err := x.run(ctx, "token.create_associated_account", signers, func(c *call) error {
		if err := nativecommon.Guard(x.pauses, token.ProgramName); err != nil {
			return err
		}
		acc, err := c.ledger.CreateAssociatedAccount(owner, mint)
		out = acc
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MintTo mints amount of mint into to, signed by the mint authority.
func (x *Executor) MintTo(ctx context.Context, signers []crypto.Address, mint, to, authority crypto.Address, amount uint64) error {
	err := x.run(ctx, "token.mint_to", signers, func(c *call) error {
		if err := nativecommon.Guard(x.pauses, token.ProgramName); err != nil {
			return err
		}
		return c.ledger.MintTo(mint, to, token.Key(authority), amount)
	})
	if err == nil {
		x.metrics.RecordFlow("minted", amount)
	}
	return err
}

// Transfer moves amount between token accounts, signed by the source owner.
func (x *Executor) Transfer(ctx context.Context, signers []crypto.Address, from, to, authority crypto.Address, amount uint64) error {
	return x.run(ctx, "token.transfer", signers, func(c *call) error {
		if err := nativecommon.Guard(x.pauses, token.ProgramName); err != nil {
			return err
		}
		return c.ledger.Transfer(from, to, token.Key(authority), amount)
	})
}
