package distribution

import (
	"fmt"
	"time"

	errs "assembly/core/errors"
	"assembly/core/events"
	"assembly/core/types"
	"assembly/crypto"
	nativecommon "assembly/native/common"
	"assembly/native/token"
)

// ModuleName identifies the distribution program in pause sets, metrics and
// the account owner registry.
const ModuleName = "distribution"

type engineState interface {
	AllocateAccount(addr crypto.Address, program string) error
	DistributorGet(addr crypto.Address) (*Distributor, bool, error)
	DistributorPut(d *Distributor) error
	GrantGet(addr crypto.Address) (*Grant, bool, error)
	GrantPut(g *Grant) error
	DistributorGrants(distributor crypto.Address) ([]crypto.Address, error)
}

type tokenLedger interface {
	IsSigner(addr crypto.Address) bool
	Mint(addr crypto.Address) (*types.Mint, error)
	Account(addr crypto.Address) (*types.TokenAccount, error)
	CreateMint(address token.Authority, decimals uint8, mintAuthority, freezeAuthority *crypto.Address) (*types.Mint, error)
	CreateAccount(address token.Authority, mint, owner crypto.Address) (*types.TokenAccount, error)
	AssociatedAddress(owner, mint crypto.Address) (crypto.Address, error)
	CreateAssociatedAccount(owner, mint crypto.Address) (*types.TokenAccount, error)
	MintTo(mint, to crypto.Address, authority token.Authority, amount uint64) error
	Burn(mint, from crypto.Address, authority token.Authority, amount uint64) error
	Transfer(from, to crypto.Address, authority token.Authority, amount uint64) error
}

// Engine runs the distribution program against a state backend and a token
// ledger. An Engine is cheap to build and is normally scoped to one call.
type Engine struct {
	programID crypto.Address
	state     engineState
	ledger    tokenLedger
	emitter   events.Emitter
	pauses    nativecommon.PauseView
	policy    Policy
	nowFn     func() int64
}

// NewEngine constructs an engine for the program deployed at programID.
func NewEngine(programID crypto.Address) *Engine {
	return &Engine{
		programID: programID,
		emitter:   events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// ProgramID returns the program ID all derivations are computed under.
func (e *Engine) ProgramID() crypto.Address { return e.programID }

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the token ledger. The engine always calls the ledger
// as the distribution program so its derived authorities resolve.
func (e *Engine) SetLedger(ledger *token.Ledger) {
	if ledger == nil {
		e.ledger = nil
		return
	}
	e.ledger = ledger.Invoke(e.programID)
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses wires the pause view consulted before every mutating call.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetPolicy configures the optional protocol invariants.
func (e *Engine) SetPolicy(p Policy) { e.policy = p }

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(events.Wrap(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.ledger == nil {
		return errNilLedger
	}
	return nativecommon.Guard(e.pauses, ModuleName)
}

// Distributor loads the distributor record at addr.
func (e *Engine) Distributor(addr crypto.Address) (*Distributor, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.loadDistributor(addr)
}

// Grant loads the grant record at addr.
func (e *Engine) Grant(addr crypto.Address) (*Grant, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.loadGrant(addr)
}

// Grants lists the grants issued under distributor in creation order.
func (e *Engine) Grants(distributor crypto.Address) ([]*Grant, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	addrs, err := e.state.DistributorGrants(distributor)
	if err != nil {
		return nil, err
	}
	out := make([]*Grant, 0, len(addrs))
	for _, addr := range addrs {
		g, err := e.loadGrant(addr)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// loadDistributor reads the record at addr and checks that it sits at its own
// canonical derivation. Legacy records gain the grant mint address, which is
// fully determined by the stored bump.
func (e *Engine) loadDistributor(addr crypto.Address) (*Distributor, error) {
	d, ok, err := e.state.DistributorGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: distributor %s", errs.ErrAccountNotFound, addr)
	}
	if err := e.verify("distributor", addr, distributorDerivation(d.DistMint, d.Args.Bumps.Distributor)); err != nil {
		return nil, err
	}
	d.Address = addr
	if d.Version < SchemaVersion {
		grantMint, err := grantMintDerivation(addr, d.Args.Bumps.Grant).Derive(e.programID)
		if err != nil {
			return nil, fmt.Errorf("%w: legacy grant mint: %w", ErrAddressMismatch, err)
		}
		d.GrantMint = grantMint
		if d.RewardMint != (crypto.Address{}) {
			vault, err := rewardVaultDerivation(addr, d.RewardMint, d.Args.Bumps.Reward).Derive(e.programID)
			if err != nil {
				return nil, fmt.Errorf("%w: legacy reward vault: %w", ErrAddressMismatch, err)
			}
			d.RewardVault = vault
		}
	}
	return d, nil
}

func (e *Engine) loadGrant(addr crypto.Address) (*Grant, error) {
	g, ok, err := e.state.GrantGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: grant %s", errs.ErrAccountNotFound, addr)
	}
	return g, nil
}

// distributorAuthority is the derived signer that owns the grant mint, every
// grant account and the reward vault of d.
func distributorAuthority(d *Distributor) token.Authority {
	return token.Derived(distributorDerivation(d.DistMint, d.Args.Bumps.Distributor))
}
