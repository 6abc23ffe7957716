package types

import "assembly/crypto"

// Mint describes a fungible token type held by the token ledger.
type Mint struct {
	Address         crypto.Address  `json:"address"`
	Decimals        uint8           `json:"decimals"`
	Supply          uint64          `json:"supply"`
	MintAuthority   *crypto.Address `json:"mintAuthority,omitempty"`
	FreezeAuthority *crypto.Address `json:"freezeAuthority,omitempty"`
}

// Clone returns a deep copy of the mint.
func (m *Mint) Clone() *Mint {
	if m == nil {
		return nil
	}
	out := *m
	if m.MintAuthority != nil {
		auth := *m.MintAuthority
		out.MintAuthority = &auth
	}
	if m.FreezeAuthority != nil {
		auth := *m.FreezeAuthority
		out.FreezeAuthority = &auth
	}
	return &out
}

// TokenAccount is a balance of one mint controlled by Owner.
type TokenAccount struct {
	Address crypto.Address `json:"address"`
	Mint    crypto.Address `json:"mint"`
	Owner   crypto.Address `json:"owner"`
	Amount  uint64         `json:"amount"`
}

// Clone returns a copy of the account.
func (a *TokenAccount) Clone() *TokenAccount {
	if a == nil {
		return nil
	}
	out := *a
	return &out
}
