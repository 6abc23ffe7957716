package state

import (
	"assembly/core/types"
	"assembly/crypto"
)

type storedMint struct {
	Decimals           uint8
	Supply             uint64
	HasMintAuthority   bool
	MintAuthority      [32]byte
	HasFreezeAuthority bool
	FreezeAuthority    [32]byte
}

type storedTokenAccount struct {
	Mint   [32]byte
	Owner  [32]byte
	Amount uint64
}

func optionalAddress(addr *crypto.Address) (bool, [32]byte) {
	if addr == nil {
		return false, [32]byte{}
	}
	return true, [32]byte(*addr)
}

func fromOptional(ok bool, raw [32]byte) *crypto.Address {
	if !ok {
		return nil
	}
	addr := crypto.Address(raw)
	return &addr
}

// TokenMintGet loads the mint record at addr.
func (m *Manager) TokenMintGet(addr crypto.Address) (*types.Mint, bool, error) {
	var stored storedMint
	ok, err := m.KVGet(TokenMintKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &types.Mint{
		Address:         addr,
		Decimals:        stored.Decimals,
		Supply:          stored.Supply,
		MintAuthority:   fromOptional(stored.HasMintAuthority, stored.MintAuthority),
		FreezeAuthority: fromOptional(stored.HasFreezeAuthority, stored.FreezeAuthority),
	}, true, nil
}

// TokenMintPut stores mint under its address.
func (m *Manager) TokenMintPut(mint *types.Mint) error {
	stored := storedMint{Decimals: mint.Decimals, Supply: mint.Supply}
	stored.HasMintAuthority, stored.MintAuthority = optionalAddress(mint.MintAuthority)
	stored.HasFreezeAuthority, stored.FreezeAuthority = optionalAddress(mint.FreezeAuthority)
	return m.KVPut(TokenMintKey(mint.Address), &stored)
}

// TokenAccountGet loads the token account record at addr.
func (m *Manager) TokenAccountGet(addr crypto.Address) (*types.TokenAccount, bool, error) {
	var stored storedTokenAccount
	ok, err := m.KVGet(TokenAccountKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &types.TokenAccount{
		Address: addr,
		Mint:    crypto.Address(stored.Mint),
		Owner:   crypto.Address(stored.Owner),
		Amount:  stored.Amount,
	}, true, nil
}

// TokenAccountPut stores acc under its address.
func (m *Manager) TokenAccountPut(acc *types.TokenAccount) error {
	return m.KVPut(TokenAccountKey(acc.Address), &storedTokenAccount{
		Mint:   [32]byte(acc.Mint),
		Owner:  [32]byte(acc.Owner),
		Amount: acc.Amount,
	})
}
