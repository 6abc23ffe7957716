package distribution

import (
	"fmt"

	"assembly/native/token"
)

// InitializeDistributor creates the distributor for a distributable mint
// together with its grant mint and empty reward vault. The caller supplies the
// bumps; every derived account must sit at its canonical address.
func (e *Engine) InitializeDistributor(accts InitializeDistributorAccounts, args DistributorArgs) (*Distributor, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.requireSigner(accts.Payer, "payer"); err != nil {
		return nil, err
	}
	if err := e.requireSigner(accts.FreezeAuthority, "freeze authority"); err != nil {
		return nil, err
	}
	if err := e.checkWindows(args); err != nil {
		return nil, err
	}

	distMint, err := e.ledger.Mint(accts.DistMint)
	if err != nil {
		return nil, err
	}
	rewardMint, err := e.ledger.Mint(accts.RewardMint)
	if err != nil {
		return nil, err
	}
	if distMint.Decimals != rewardMint.Decimals {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDecimalsMismatch, distMint.Decimals, rewardMint.Decimals)
	}
	if distMint.FreezeAuthority == nil || *distMint.FreezeAuthority != accts.FreezeAuthority {
		return nil, fmt.Errorf("%w: mint %s", ErrFreezeAuthorityMismatch, accts.DistMint)
	}

	bumps := args.Bumps
	if err := e.verify("distributor", accts.Distributor, distributorDerivation(accts.DistMint, bumps.Distributor)); err != nil {
		return nil, err
	}
	grantMintD := grantMintDerivation(accts.Distributor, bumps.Grant)
	if err := e.verify("grant mint", accts.GrantMint, grantMintD); err != nil {
		return nil, err
	}
	vaultD := rewardVaultDerivation(accts.Distributor, accts.RewardMint, bumps.Reward)
	if err := e.verify("reward vault", accts.RewardVault, vaultD); err != nil {
		return nil, err
	}

	if err := e.state.AllocateAccount(accts.Distributor, ModuleName); err != nil {
		return nil, fmt.Errorf("distributor %s: %w", accts.Distributor, err)
	}
	record := &Distributor{
		Version:         SchemaVersion,
		Address:         accts.Distributor,
		DistMint:        accts.DistMint,
		RewardMint:      accts.RewardMint,
		GrantMint:       accts.GrantMint,
		RewardVault:     accts.RewardVault,
		FreezeAuthority: accts.FreezeAuthority,
		Args:            args,
	}
	if err := e.state.DistributorPut(record); err != nil {
		return nil, err
	}
	distributor := accts.Distributor
	freeze := accts.FreezeAuthority
	if _, err := e.ledger.CreateMint(token.Derived(grantMintD), distMint.Decimals, &distributor, &freeze); err != nil {
		return nil, err
	}
	if _, err := e.ledger.CreateAccount(token.Derived(vaultD), accts.RewardMint, distributor); err != nil {
		return nil, err
	}
	e.emit(NewDistributorInitializedEvent(record))
	return record.Clone(), nil
}
