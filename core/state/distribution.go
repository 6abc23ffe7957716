package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"assembly/crypto"
	"assembly/native/distribution"
)

// ErrUnknownDistributorVersion is returned when a stored distributor carries a
// layout version this binary cannot decode.
var ErrUnknownDistributorVersion = errors.New("state: unknown distributor layout")

type distributorEnvelope struct {
	Version uint8
	Payload []byte
}

type storedBumps struct {
	Distributor uint8
	Grant       uint8
	Reward      uint8
}

type storedDistributorArgs struct {
	DistEndTs     uint64
	RedeemStartTs uint64
	Bumps         storedBumps
}

type storedDistributor struct {
	DistMint        [32]byte
	RewardMint      [32]byte
	GrantMint       [32]byte
	RewardVault     [32]byte
	FreezeAuthority [32]byte
	Args            storedDistributorArgs
}

// storedLegacyDistributor is the flat layout written before the reward mint
// and derived addresses were recorded.
type storedLegacyDistributor struct {
	DistMint        [32]byte
	DistEndTs       uint64
	RedeemStartTs   uint64
	DistributorBump uint8
	GrantBump       uint8
	RewardBump      uint8
}

type storedGrant struct {
	Distributor    [32]byte
	Recipient      [32]byte
	Bump           uint8
	CreatedAt      uint64
	TotalGranted   uint64
	TotalRedeemed  uint64
	Redemptions    uint64
	LastRedeemedAt uint64
}

// Timestamps are stored as their two's complement bit pattern.
func encodeTs(ts int64) uint64 { return uint64(ts) }

func decodeTs(v uint64) int64 { return int64(v) }

// DistributorGet loads the distributor at addr, decoding either layout.
func (m *Manager) DistributorGet(addr crypto.Address) (*distribution.Distributor, bool, error) {
	var env distributorEnvelope
	ok, err := m.KVGet(DistributorKey(addr), &env)
	if err != nil || !ok {
		return nil, false, err
	}
	switch env.Version {
	case distribution.SchemaVersion:
		var stored storedDistributor
		if err := rlp.DecodeBytes(env.Payload, &stored); err != nil {
			return nil, false, fmt.Errorf("state: decode distributor %s: %w", addr, err)
		}
		return &distribution.Distributor{
			Version:         env.Version,
			Address:         addr,
			DistMint:        crypto.Address(stored.DistMint),
			RewardMint:      crypto.Address(stored.RewardMint),
			GrantMint:       crypto.Address(stored.GrantMint),
			RewardVault:     crypto.Address(stored.RewardVault),
			FreezeAuthority: crypto.Address(stored.FreezeAuthority),
			Args: distribution.DistributorArgs{
				DistEndTs:     decodeTs(stored.Args.DistEndTs),
				RedeemStartTs: decodeTs(stored.Args.RedeemStartTs),
				Bumps: distribution.DerivedBumps{
					Distributor: stored.Args.Bumps.Distributor,
					Grant:       stored.Args.Bumps.Grant,
					Reward:      stored.Args.Bumps.Reward,
				},
			},
		}, true, nil
	case distribution.LegacySchemaVersion:
		var stored storedLegacyDistributor
		if err := rlp.DecodeBytes(env.Payload, &stored); err != nil {
			return nil, false, fmt.Errorf("state: decode legacy distributor %s: %w", addr, err)
		}
		return &distribution.Distributor{
			Version:  env.Version,
			Address:  addr,
			DistMint: crypto.Address(stored.DistMint),
			Args: distribution.DistributorArgs{
				DistEndTs:     decodeTs(stored.DistEndTs),
				RedeemStartTs: decodeTs(stored.RedeemStartTs),
				Bumps: distribution.DerivedBumps{
					Distributor: stored.DistributorBump,
					Grant:       stored.GrantBump,
					Reward:      stored.RewardBump,
				},
			},
		}, true, nil
	default:
		return nil, false, fmt.Errorf("%w: version %d at %s", ErrUnknownDistributorVersion, env.Version, addr)
	}
}

// DistributorPut stores d in the layout named by d.Version and indexes it.
func (m *Manager) DistributorPut(d *distribution.Distributor) error {
	if d == nil {
		return fmt.Errorf("state: nil distributor")
	}
	var payload interface{}
	switch d.Version {
	case distribution.SchemaVersion:
		payload = &storedDistributor{
			DistMint:        [32]byte(d.DistMint),
			RewardMint:      [32]byte(d.RewardMint),
			GrantMint:       [32]byte(d.GrantMint),
			RewardVault:     [32]byte(d.RewardVault),
			FreezeAuthority: [32]byte(d.FreezeAuthority),
			Args: storedDistributorArgs{
				DistEndTs:     encodeTs(d.Args.DistEndTs),
				RedeemStartTs: encodeTs(d.Args.RedeemStartTs),
				Bumps: storedBumps{
					Distributor: d.Args.Bumps.Distributor,
					Grant:       d.Args.Bumps.Grant,
					Reward:      d.Args.Bumps.Reward,
				},
			},
		}
	case distribution.LegacySchemaVersion:
		payload = &storedLegacyDistributor{
			DistMint:        [32]byte(d.DistMint),
			DistEndTs:       encodeTs(d.Args.DistEndTs),
			RedeemStartTs:   encodeTs(d.Args.RedeemStartTs),
			DistributorBump: d.Args.Bumps.Distributor,
			GrantBump:       d.Args.Bumps.Grant,
			RewardBump:      d.Args.Bumps.Reward,
		}
	default:
		return fmt.Errorf("%w: version %d", ErrUnknownDistributorVersion, d.Version)
	}
	encoded, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return err
	}
	if err := m.KVPut(DistributorKey(d.Address), &distributorEnvelope{Version: d.Version, Payload: encoded}); err != nil {
		return err
	}
	return m.KVAppend(distributorListKey, d.Address.Bytes())
}

// Distributors lists every stored distributor address in creation order.
func (m *Manager) Distributors() ([]crypto.Address, error) {
	return m.addressList(distributorListKey)
}

// GrantGet loads the grant record at addr.
func (m *Manager) GrantGet(addr crypto.Address) (*distribution.Grant, bool, error) {
	var stored storedGrant
	ok, err := m.KVGet(GrantKey(addr), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &distribution.Grant{
		Address:        addr,
		Distributor:    crypto.Address(stored.Distributor),
		Recipient:      crypto.Address(stored.Recipient),
		Bump:           stored.Bump,
		CreatedAt:      decodeTs(stored.CreatedAt),
		TotalGranted:   stored.TotalGranted,
		TotalRedeemed:  stored.TotalRedeemed,
		Redemptions:    stored.Redemptions,
		LastRedeemedAt: decodeTs(stored.LastRedeemedAt),
	}, true, nil
}

// GrantPut stores g and adds it to its distributor's grant index.
func (m *Manager) GrantPut(g *distribution.Grant) error {
	if g == nil {
		return fmt.Errorf("state: nil grant")
	}
	err := m.KVPut(GrantKey(g.Address), &storedGrant{
		Distributor:    [32]byte(g.Distributor),
		Recipient:      [32]byte(g.Recipient),
		Bump:           g.Bump,
		CreatedAt:      encodeTs(g.CreatedAt),
		TotalGranted:   g.TotalGranted,
		TotalRedeemed:  g.TotalRedeemed,
		Redemptions:    g.Redemptions,
		LastRedeemedAt: encodeTs(g.LastRedeemedAt),
	})
	if err != nil {
		return err
	}
	return m.KVAppend(DistributorGrantsKey(g.Distributor), g.Address.Bytes())
}

// DistributorGrants lists the grants of distributor in creation order.
func (m *Manager) DistributorGrants(distributor crypto.Address) ([]crypto.Address, error) {
	return m.addressList(DistributorGrantsKey(distributor))
}

func (m *Manager) addressList(key []byte) ([]crypto.Address, error) {
	var raw [][]byte
	if err := m.KVGetList(key, &raw); err != nil {
		return nil, err
	}
	out := make([]crypto.Address, 0, len(raw))
	for _, b := range raw {
		if len(b) != len(crypto.Address{}) {
			return nil, fmt.Errorf("state: malformed address in index: %x", b)
		}
		out = append(out, crypto.Address(b))
	}
	return out, nil
}
