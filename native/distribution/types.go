package distribution

import "assembly/crypto"

const (
	// SchemaVersion is the canonical distributor layout: nested args plus the
	// addresses fixed at initialization.
	SchemaVersion uint8 = 2
	// LegacySchemaVersion is the flat layout holding only the dist mint, the
	// two timestamps and the bumps. Records in this layout are still readable.
	LegacySchemaVersion uint8 = 1
)

// DerivedBumps holds the canonical bumps of the distributor's derived accounts.
type DerivedBumps struct {
	Distributor uint8 `json:"distributorBump"`
	Grant       uint8 `json:"grantBump"`
	Reward      uint8 `json:"rewardBump"`
}

// DistributorArgs are the immutable parameters supplied at initialization.
type DistributorArgs struct {
	DistEndTs     int64        `json:"distEndTs"`
	RedeemStartTs int64        `json:"redeemStartTs"`
	Bumps         DerivedBumps `json:"bumps"`
}

// Distributor is the root record of one distribution campaign.
type Distributor struct {
	Version         uint8           `json:"version"`
	Address         crypto.Address  `json:"address"`
	DistMint        crypto.Address  `json:"distMint"`
	RewardMint      crypto.Address  `json:"rewardMint"`
	GrantMint       crypto.Address  `json:"grantMint"`
	RewardVault     crypto.Address  `json:"rewardVault"`
	FreezeAuthority crypto.Address  `json:"freezeAuthority"`
	Args            DistributorArgs `json:"args"`
}

// Clone returns a copy of the distributor.
func (d *Distributor) Clone() *Distributor {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}

// Grant binds a recipient to its grant token account under one distributor
// and tracks cumulative flows through it. The balance itself lives in the
// token account.
type Grant struct {
	Address        crypto.Address `json:"address"`
	Distributor    crypto.Address `json:"distributor"`
	Recipient      crypto.Address `json:"recipient"`
	Bump           uint8          `json:"bump"`
	CreatedAt      int64          `json:"createdAt"`
	TotalGranted   uint64         `json:"totalGranted"`
	TotalRedeemed  uint64         `json:"totalRedeemed"`
	Redemptions    uint64         `json:"redemptions"`
	LastRedeemedAt int64          `json:"lastRedeemedAt"`
}

// Clone returns a copy of the grant.
func (g *Grant) Clone() *Grant {
	if g == nil {
		return nil
	}
	out := *g
	return &out
}

// Policy toggles the optional invariants the protocol does not enforce by
// default.
type Policy struct {
	// RequireOrderedWindows rejects distributors whose redemption window opens
	// before the distribution window closes.
	RequireOrderedWindows bool
	// SingleRedemption allows at most one non-empty redemption per grant.
	SingleRedemption bool
}

// InitializeDistributorAccounts lists the accounts touched by InitializeDistributor.
type InitializeDistributorAccounts struct {
	Payer           crypto.Address
	FreezeAuthority crypto.Address
	DistMint        crypto.Address
	RewardMint      crypto.Address
	Distributor     crypto.Address
	GrantMint       crypto.Address
	RewardVault     crypto.Address
}

// InitializeBudgetAccounts lists the accounts touched by InitializeBudget.
// Remaining holds flat (associated account, authority) pairs, one pair per
// allocation.
type InitializeBudgetAccounts struct {
	Payer               crypto.Address
	Session             crypto.Address
	AllocationAuthority crypto.Address
	Mint                crypto.Address
	Remaining           []crypto.Address
}

// InitializeGrantAccounts lists the accounts touched by InitializeGrant.
type InitializeGrantAccounts struct {
	Payer       crypto.Address
	Recipient   crypto.Address
	Distributor crypto.Address
	GrantMint   crypto.Address
	Grant       crypto.Address
}

// TransferGrantAccounts lists the accounts touched by TransferGrant.
type TransferGrantAccounts struct {
	Payer          crypto.Address
	DonorAuthority crypto.Address
	Recipient      crypto.Address
	Distributor    crypto.Address
	DistMint       crypto.Address
	DistToken      crypto.Address
	GrantMint      crypto.Address
	Grant          crypto.Address
}

// RedeemGrantAccounts lists the accounts touched by RedeemGrant.
type RedeemGrantAccounts struct {
	Payer          crypto.Address
	Recipient      crypto.Address
	Distributor    crypto.Address
	GrantMint      crypto.Address
	Grant          crypto.Address
	RewardMint     crypto.Address
	RewardVault    crypto.Address
	RecipientToken crypto.Address
}
