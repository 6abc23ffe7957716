package distribution

import (
	"fmt"

	"assembly/crypto"
)

var (
	grantMintTag   = []byte("grant_mint")
	rewardVaultTag = []byte("reward_vault")
	grantTag       = []byte("grant")
	allocationTag  = []byte("allocation")
)

func distributorDerivation(distMint crypto.Address, bump uint8) crypto.DerivedAddress {
	return crypto.NewDerivedAddress(bump, distMint.Bytes())
}

func grantMintDerivation(distributor crypto.Address, bump uint8) crypto.DerivedAddress {
	return crypto.NewDerivedAddress(bump, distributor.Bytes(), grantMintTag)
}

func rewardVaultDerivation(distributor, rewardMint crypto.Address, bump uint8) crypto.DerivedAddress {
	return crypto.NewDerivedAddress(bump, distributor.Bytes(), rewardVaultTag, rewardMint.Bytes())
}

func grantDerivation(distributor, recipient crypto.Address, bump uint8) crypto.DerivedAddress {
	return crypto.NewDerivedAddress(bump, distributor.Bytes(), grantTag, recipient.Bytes())
}

func allocationDerivation(session crypto.Address, bump uint8) crypto.DerivedAddress {
	return crypto.NewDerivedAddress(bump, allocationTag, session.Bytes())
}

// DistributorAddresses are the derived accounts of a distributor for one
// (dist mint, reward mint) pair.
type DistributorAddresses struct {
	Distributor crypto.Address
	GrantMint   crypto.Address
	RewardVault crypto.Address
	Bumps       DerivedBumps
}

// DeriveDistributorAddresses finds the canonical distributor, grant mint and
// reward vault addresses together with their bumps.
func DeriveDistributorAddresses(programID, distMint, rewardMint crypto.Address) (DistributorAddresses, error) {
	distributor, dd, err := crypto.FindDerivedAddress(programID, distMint.Bytes())
	if err != nil {
		return DistributorAddresses{}, fmt.Errorf("derive distributor: %w", err)
	}
	grantMint, gd, err := crypto.FindDerivedAddress(programID, distributor.Bytes(), grantMintTag)
	if err != nil {
		return DistributorAddresses{}, fmt.Errorf("derive grant mint: %w", err)
	}
	vault, vd, err := crypto.FindDerivedAddress(programID, distributor.Bytes(), rewardVaultTag, rewardMint.Bytes())
	if err != nil {
		return DistributorAddresses{}, fmt.Errorf("derive reward vault: %w", err)
	}
	return DistributorAddresses{
		Distributor: distributor,
		GrantMint:   grantMint,
		RewardVault: vault,
		Bumps: DerivedBumps{
			Distributor: dd.Bump,
			Grant:       gd.Bump,
			Reward:      vd.Bump,
		},
	}, nil
}

// DeriveGrant finds the canonical grant account of recipient under distributor.
func DeriveGrant(programID, distributor, recipient crypto.Address) (crypto.Address, uint8, error) {
	addr, d, err := crypto.FindDerivedAddress(programID, distributor.Bytes(), grantTag, recipient.Bytes())
	if err != nil {
		return crypto.Address{}, 0, fmt.Errorf("derive grant: %w", err)
	}
	return addr, d.Bump, nil
}

// DeriveAllocationAuthority finds the transient signer of a budget session. The
// tag keeps it disjoint from the distributor's own authority.
func DeriveAllocationAuthority(programID, session crypto.Address) (crypto.Address, uint8, error) {
	addr, d, err := crypto.FindDerivedAddress(programID, allocationTag, session.Bytes())
	if err != nil {
		return crypto.Address{}, 0, fmt.Errorf("derive allocation authority: %w", err)
	}
	return addr, d.Bump, nil
}
