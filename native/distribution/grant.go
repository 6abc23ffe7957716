package distribution

import (
	"fmt"
	"math/bits"

	"assembly/crypto"
	"assembly/native/token"
)

// InitializeGrant opens the grant account of recipient under the distributor.
// A recipient holds at most one grant per distributor.
func (e *Engine) InitializeGrant(accts InitializeGrantAccounts, bump uint8) (*Grant, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.requireSigner(accts.Payer, "payer"); err != nil {
		return nil, err
	}
	now := e.now()
	dist, err := e.loadDistributor(accts.Distributor)
	if err != nil {
		return nil, err
	}
	if err := checkDistributionOpen(dist, now); err != nil {
		return nil, err
	}
	if accts.GrantMint != dist.GrantMint {
		return nil, fmt.Errorf("%w: grant mint %s, want %s", ErrAddressMismatch, accts.GrantMint, dist.GrantMint)
	}
	grantD := grantDerivation(dist.Address, accts.Recipient, bump)
	if err := e.verify("grant", accts.Grant, grantD); err != nil {
		return nil, err
	}

	if _, err := e.ledger.CreateAccount(token.Derived(grantD), dist.GrantMint, dist.Address); err != nil {
		return nil, fmt.Errorf("grant %s: %w", accts.Grant, err)
	}
	record := &Grant{
		Address:     accts.Grant,
		Distributor: dist.Address,
		Recipient:   accts.Recipient,
		Bump:        bump,
		CreatedAt:   now,
	}
	if err := e.state.GrantPut(record); err != nil {
		return nil, err
	}
	e.emit(NewGrantInitializedEvent(record))
	return record.Clone(), nil
}

// TransferGrant burns amount distributable tokens from the donor and mints the
// same amount of grant tokens into the recipient's grant.
func (e *Engine) TransferGrant(accts TransferGrantAccounts, amount uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.requireSigner(accts.Payer, "payer"); err != nil {
		return err
	}
	if err := e.requireSigner(accts.DonorAuthority, "donor authority"); err != nil {
		return err
	}
	now := e.now()
	dist, err := e.loadDistributor(accts.Distributor)
	if err != nil {
		return err
	}
	if err := checkDistributionOpen(dist, now); err != nil {
		return err
	}
	if accts.DistMint != dist.DistMint {
		return fmt.Errorf("%w: dist mint %s, want %s", ErrMintMismatch, accts.DistMint, dist.DistMint)
	}
	if accts.GrantMint != dist.GrantMint {
		return fmt.Errorf("%w: grant mint %s, want %s", ErrAddressMismatch, accts.GrantMint, dist.GrantMint)
	}
	grant, err := e.loadGrant(accts.Grant)
	if err != nil {
		return err
	}
	if err := e.checkGrant(grant, dist, accts.Grant, accts.Recipient); err != nil {
		return err
	}
	total, carry := bits.Add64(grant.TotalGranted, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: grant %s total", ErrOverflow, accts.Grant)
	}

	if err := e.ledger.Burn(dist.DistMint, accts.DistToken, token.Key(accts.DonorAuthority), amount); err != nil {
		return err
	}
	if err := e.ledger.MintTo(dist.GrantMint, accts.Grant, distributorAuthority(dist), amount); err != nil {
		return err
	}
	grant.TotalGranted = total
	if err := e.state.GrantPut(grant); err != nil {
		return err
	}
	e.emit(NewGrantTransferredEvent(grant, accts.DonorAuthority, amount))
	return nil
}

// RedeemGrant burns the whole grant balance and pays the same amount of
// reward tokens from the vault to the recipient's token account. It returns
// the amount redeemed.
func (e *Engine) RedeemGrant(accts RedeemGrantAccounts) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if err := e.requireSigner(accts.Payer, "payer"); err != nil {
		return 0, err
	}
	if err := e.requireSigner(accts.Recipient, "recipient"); err != nil {
		return 0, err
	}
	now := e.now()
	dist, err := e.loadDistributor(accts.Distributor)
	if err != nil {
		return 0, err
	}
	if err := checkRedeemOpen(dist, now); err != nil {
		return 0, err
	}
	if accts.GrantMint != dist.GrantMint {
		return 0, fmt.Errorf("%w: grant mint %s, want %s", ErrAddressMismatch, accts.GrantMint, dist.GrantMint)
	}
	rewardMint := dist.RewardMint
	if rewardMint == (crypto.Address{}) {
		rewardMint = accts.RewardMint
	}
	if accts.RewardMint != rewardMint {
		return 0, fmt.Errorf("%w: reward mint %s, want %s", ErrMintMismatch, accts.RewardMint, rewardMint)
	}
	if err := e.verify("reward vault", accts.RewardVault, rewardVaultDerivation(dist.Address, rewardMint, dist.Args.Bumps.Reward)); err != nil {
		return 0, err
	}
	grant, err := e.loadGrant(accts.Grant)
	if err != nil {
		return 0, err
	}
	if err := e.checkGrant(grant, dist, accts.Grant, accts.Recipient); err != nil {
		return 0, err
	}
	if e.policy.SingleRedemption && grant.Redemptions > 0 {
		return 0, fmt.Errorf("%w: grant %s", ErrAlreadyRedeemed, accts.Grant)
	}

	dest, err := e.ledger.Account(accts.RecipientToken)
	if err != nil {
		return 0, err
	}
	if dest.Owner != accts.Recipient {
		return 0, fmt.Errorf("%w: %s owned by %s", ErrReceiverNotOwner, accts.RecipientToken, dest.Owner)
	}
	if dest.Mint != rewardMint {
		return 0, fmt.Errorf("%w: %s holds %s", ErrMintMismatch, accts.RecipientToken, dest.Mint)
	}
	held, err := e.ledger.Account(accts.Grant)
	if err != nil {
		return 0, err
	}
	amount := held.Amount
	redeemed, carry := bits.Add64(grant.TotalRedeemed, amount, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: grant %s redeemed total", ErrOverflow, accts.Grant)
	}

	authority := distributorAuthority(dist)
	if err := e.ledger.Burn(dist.GrantMint, accts.Grant, authority, amount); err != nil {
		return 0, err
	}
	if err := e.ledger.Transfer(accts.RewardVault, accts.RecipientToken, authority, amount); err != nil {
		return 0, err
	}
	grant.TotalRedeemed = redeemed
	if amount > 0 {
		grant.Redemptions++
		grant.LastRedeemedAt = now
	}
	if err := e.state.GrantPut(grant); err != nil {
		return 0, err
	}
	e.emit(NewGrantRedeemedEvent(grant, accts.RecipientToken, amount))
	return amount, nil
}
