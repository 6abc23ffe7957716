package token

import (
	"strconv"

	"assembly/core/types"
	"assembly/crypto"
)

const (
	EventTypeMintCreated    = "token.mint_created"
	EventTypeAccountCreated = "token.account_created"
	EventTypeMinted         = "token.minted"
	EventTypeBurned         = "token.burned"
	EventTypeTransferred    = "token.transferred"
)

// NewMintCreatedEvent describes a newly allocated mint.
func NewMintCreatedEvent(m *types.Mint) *types.Event {
	evt := types.NewEvent(EventTypeMintCreated).
		With("mint", m.Address.String()).
		With("decimals", strconv.FormatUint(uint64(m.Decimals), 10))
	if m.MintAuthority != nil {
		evt.With("mintAuthority", m.MintAuthority.String())
	}
	if m.FreezeAuthority != nil {
		evt.With("freezeAuthority", m.FreezeAuthority.String())
	}
	return evt
}

// NewAccountCreatedEvent describes a newly allocated token account.
func NewAccountCreatedEvent(a *types.TokenAccount) *types.Event {
	return types.NewEvent(EventTypeAccountCreated).
		With("account", a.Address.String()).
		With("mint", a.Mint.String()).
		With("owner", a.Owner.String())
}

func NewMintedEvent(mint, to crypto.Address, amount uint64) *types.Event {
	return types.NewEvent(EventTypeMinted).
		With("mint", mint.String()).
		With("to", to.String()).
		With("amount", strconv.FormatUint(amount, 10))
}

func NewBurnedEvent(mint, from crypto.Address, amount uint64) *types.Event {
	return types.NewEvent(EventTypeBurned).
		With("mint", mint.String()).
		With("from", from.String()).
		With("amount", strconv.FormatUint(amount, 10))
}

func NewTransferredEvent(mint, from, to crypto.Address, amount uint64) *types.Event {
	return types.NewEvent(EventTypeTransferred).
		With("mint", mint.String()).
		With("from", from.String()).
		With("to", to.String()).
		With("amount", strconv.FormatUint(amount, 10))
}
