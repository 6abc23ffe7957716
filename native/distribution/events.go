package distribution

import (
	"strconv"

	"assembly/core/types"
	"assembly/crypto"
)

const (
	EventTypeDistributorInitialized = "distribution.initialized"
	EventTypeBudgetAllocated        = "distribution.budget_allocated"
	EventTypeGrantInitialized       = "distribution.grant_initialized"
	EventTypeGrantTransferred       = "distribution.grant_transferred"
	EventTypeGrantRedeemed          = "distribution.grant_redeemed"
)

func formatTs(ts int64) string { return strconv.FormatInt(ts, 10) }

func formatAmount(v uint64) string { return strconv.FormatUint(v, 10) }

// NewDistributorInitializedEvent describes a freshly created distributor.
func NewDistributorInitializedEvent(d *Distributor) *types.Event {
	return types.NewEvent(EventTypeDistributorInitialized).
		With("distributor", d.Address.String()).
		With("distMint", d.DistMint.String()).
		With("rewardMint", d.RewardMint.String()).
		With("grantMint", d.GrantMint.String()).
		With("rewardVault", d.RewardVault.String()).
		With("distEndTs", formatTs(d.Args.DistEndTs)).
		With("redeemStartTs", formatTs(d.Args.RedeemStartTs))
}

// NewBudgetAllocatedEvent summarises one budget call.
func NewBudgetAllocatedEvent(session, mint crypto.Address, count int, total uint64) *types.Event {
	return types.NewEvent(EventTypeBudgetAllocated).
		With("session", session.String()).
		With("mint", mint.String()).
		With("allocations", strconv.Itoa(count)).
		With("total", formatAmount(total))
}

// NewGrantInitializedEvent records a grant opened for a recipient.
func NewGrantInitializedEvent(g *Grant) *types.Event {
	return types.NewEvent(EventTypeGrantInitialized).
		With("grant", g.Address.String()).
		With("distributor", g.Distributor.String()).
		With("recipient", g.Recipient.String())
}

// NewGrantTransferredEvent records grant units minted against a donor deposit.
func NewGrantTransferredEvent(g *Grant, donor crypto.Address, amount uint64) *types.Event {
	return types.NewEvent(EventTypeGrantTransferred).
		With("grant", g.Address.String()).
		With("distributor", g.Distributor.String()).
		With("donor", donor.String()).
		With("amount", formatAmount(amount)).
		With("totalGranted", formatAmount(g.TotalGranted))
}

// NewGrantRedeemedEvent records a grant balance paid out of the reward vault.
func NewGrantRedeemedEvent(g *Grant, destination crypto.Address, amount uint64) *types.Event {
	return types.NewEvent(EventTypeGrantRedeemed).
		With("grant", g.Address.String()).
		With("distributor", g.Distributor.String()).
		With("recipient", g.Recipient.String()).
		With("destination", destination.String()).
		With("amount", formatAmount(amount)).
		With("totalRedeemed", formatAmount(g.TotalRedeemed))
}
