package core

import (
	"errors"
	"fmt"

	errs "assembly/core/errors"
	"assembly/core/state"
	"assembly/core/types"
	"assembly/crypto"
	"assembly/native/distribution"
	"assembly/native/token"
)

// ErrNotFound is returned by queries for records that do not exist.
var ErrNotFound = errors.New("query: not found")

// DistributorView is a distributor together with the balances an observer
// usually wants alongside it.
type DistributorView struct {
	Distributor      *distribution.Distributor `json:"distributor"`
	GrantSupply      uint64                    `json:"grantSupply"`
	VaultBalance     uint64                    `json:"vaultBalance"`
	RewardVaultKnown bool                      `json:"rewardVaultKnown"`
	Grants           int                       `json:"grants"`
}

// GrantView is a grant record with its current token balance.
type GrantView struct {
	Grant   *distribution.Grant `json:"grant"`
	Balance uint64              `json:"balance"`
}

// Queries read committed state. They never observe a call in progress.

func (x *Executor) readEngine() (*distribution.Engine, *token.Ledger) {
	st := state.NewManager(x.db)
	engine := distribution.NewEngine(x.programID)
	engine.SetState(st)
	return engine, token.NewLedger(st, x.programs)
}

func notFound(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrAccountNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// Distributor returns the distributor at addr with its balances.
func (x *Executor) Distributor(addr crypto.Address) (*DistributorView, error) {
	engine, ledger := x.readEngine()
	d, err := engine.Distributor(addr)
	if err != nil {
		return nil, notFound(err, "distributor "+addr.String())
	}
	view := &DistributorView{Distributor: d}
	if mint, err := ledger.Mint(d.GrantMint); err == nil {
		view.GrantSupply = mint.Supply
	}
	if d.RewardVault != (crypto.Address{}) {
		if vault, err := ledger.Account(d.RewardVault); err == nil {
			view.VaultBalance = vault.Amount
			view.RewardVaultKnown = true
		}
	}
	grants, err := state.NewManager(x.db).DistributorGrants(addr)
	if err != nil {
		return nil, err
	}
	view.Grants = len(grants)
	return view, nil
}

// Distributors lists every distributor address.
func (x *Executor) Distributors() ([]crypto.Address, error) {
	return state.NewManager(x.db).Distributors()
}

// Grant returns the grant at addr with its balance.
func (x *Executor) Grant(addr crypto.Address) (*GrantView, error) {
	engine, ledger := x.readEngine()
	g, err := engine.Grant(addr)
	if err != nil {
		return nil, notFound(err, "grant "+addr.String())
	}
	acc, err := ledger.Account(addr)
	if err != nil {
		return nil, notFound(err, "grant account "+addr.String())
	}
	return &GrantView{Grant: g, Balance: acc.Amount}, nil
}

// GrantFor returns the grant of recipient under distributor.
func (x *Executor) GrantFor(distributor, recipient crypto.Address) (*GrantView, error) {
	addr, _, err := distribution.DeriveGrant(x.programID, distributor, recipient)
	if err != nil {
		return nil, err
	}
	return x.Grant(addr)
}

// Grants lists the grants of distributor with their balances.
func (x *Executor) Grants(distributor crypto.Address) ([]*GrantView, error) {
	engine, ledger := x.readEngine()
	grants, err := engine.Grants(distributor)
	if err != nil {
		return nil, err
	}
	out := make([]*GrantView, 0, len(grants))
	for _, g := range grants {
		acc, err := ledger.Account(g.Address)
		if err != nil {
			return nil, err
		}
		out = append(out, &GrantView{Grant: g, Balance: acc.Amount})
	}
	return out, nil
}

// TokenAccount returns the token account at addr.
func (x *Executor) TokenAccount(addr crypto.Address) (*types.TokenAccount, error) {
	_, ledger := x.readEngine()
	acc, err := ledger.Account(addr)
	if err != nil {
		return nil, notFound(err, "token account "+addr.String())
	}
	return acc, nil
}

// Mint returns the mint at addr.
func (x *Executor) Mint(addr crypto.Address) (*types.Mint, error) {
	_, ledger := x.readEngine()
	mint, err := ledger.Mint(addr)
	if err != nil {
		return nil, notFound(err, "mint "+addr.String())
	}
	return mint, nil
}

// AssociatedAddress derives the associated token account of owner for mint.
func (x *Executor) AssociatedAddress(owner, mint crypto.Address) (crypto.Address, error) {
	_, ledger := x.readEngine()
	return ledger.AssociatedAddress(owner, mint)
}
