package token

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/gagliardetto/solana-go"

	errs "assembly/core/errors"
	"assembly/core/events"
	"assembly/core/types"
	"assembly/crypto"
)

// ProgramName tags accounts allocated by the token ledger.
const ProgramName = "token"

var (
	errNilState = errors.New("token ledger: state not configured")

	ErrInsufficientFunds = errors.New("token: insufficient funds")
	ErrOwnerMismatch     = errors.New("token: owner does not match")
	ErrMintMismatch      = errors.New("token: mint does not match")
	ErrAuthorityMismatch = errors.New("token: authority does not match")
	ErrMissingSignature  = errors.New("token: missing required signature")
	ErrInvalidSigner     = errors.New("token: derived authority outside program invocation")
	ErrOverflow          = errors.New("token: amount overflow")
)

type ledgerState interface {
	AllocateAccount(addr crypto.Address, program string) error
	TokenMintGet(addr crypto.Address) (*types.Mint, bool, error)
	TokenMintPut(mint *types.Mint) error
	TokenAccountGet(addr crypto.Address) (*types.TokenAccount, bool, error)
	TokenAccountPut(account *types.TokenAccount) error
}

// Programs names the token and associated-account program IDs used when
// deriving associated account addresses.
type Programs struct {
	Token           crypto.Address
	AssociatedToken crypto.Address
}

// DefaultPrograms returns the well-known SPL program IDs.
func DefaultPrograms() Programs {
	return Programs{
		Token:           solana.TokenProgramID,
		AssociatedToken: solana.SPLAssociatedTokenAccountProgramID,
	}
}

// Ledger implements the fungible token primitives the distribution program
// calls into. A Ledger is scoped to one transaction: it knows which keys
// signed, and, when obtained through Invoke, which program is calling.
type Ledger struct {
	state    ledgerState
	programs Programs
	signers  map[crypto.Address]struct{}
	invoker  *crypto.Address
	emitter  events.Emitter
}

// NewLedger constructs a ledger over the provided state.
func NewLedger(state ledgerState, programs Programs) *Ledger {
	return &Ledger{
		state:    state,
		programs: programs,
		signers:  make(map[crypto.Address]struct{}),
		emitter:  events.NoopEmitter{},
	}
}

// SetSigners records the keys that signed the enclosing transaction.
// Off-curve addresses have no private key and are never recorded, so a
// derived address can only act through Derived under Invoke.
func (l *Ledger) SetSigners(signers ...crypto.Address) {
	l.signers = make(map[crypto.Address]struct{}, len(signers))
	for _, s := range signers {
		if !solana.IsOnCurve(s[:]) {
			continue
		}
		l.signers[s] = struct{}{}
	}
}

// SetEmitter configures the event emitter used by the ledger. Passing nil
// resets the emitter to a no-op implementation.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

// IsSigner reports whether addr signed the enclosing transaction.
func (l *Ledger) IsSigner(addr crypto.Address) bool {
	if l == nil {
		return false
	}
	_, ok := l.signers[addr]
	return ok
}

// Invoke returns a view of the ledger on behalf of programID. Derived
// authorities presented through the view are re-derived under programID.
func (l *Ledger) Invoke(programID crypto.Address) *Ledger {
	view := *l
	id := programID
	view.invoker = &id
	return &view
}

// Programs returns the program IDs the ledger derives associated accounts with.
func (l *Ledger) Programs() Programs { return l.programs }

func (l *Ledger) emit(evt *types.Event) {
	if l == nil || l.emitter == nil || evt == nil {
		return
	}
	l.emitter.Emit(events.Wrap(evt))
}

// Mint loads a mint record.
func (l *Ledger) Mint(addr crypto.Address) (*types.Mint, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	mint, ok, err := l.state.TokenMintGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: mint %s", errs.ErrAccountNotFound, addr)
	}
	return mint, nil
}

// Account loads a token account record.
func (l *Ledger) Account(addr crypto.Address) (*types.TokenAccount, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	acc, ok, err := l.state.TokenAccountGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: token account %s", errs.ErrAccountNotFound, addr)
	}
	return acc, nil
}

// CreateMint allocates a new mint at the address controlled by address. The
// address must either have signed the transaction or be derived by the
// invoking program.
func (l *Ledger) CreateMint(address Authority, decimals uint8, mintAuthority, freezeAuthority *crypto.Address) (*types.Mint, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	addr, err := address.resolve(l)
	if err != nil {
		return nil, err
	}
	if err := l.state.AllocateAccount(addr, ProgramName); err != nil {
		return nil, err
	}
	mint := &types.Mint{Address: addr, Decimals: decimals}
	if mintAuthority != nil {
		auth := *mintAuthority
		mint.MintAuthority = &auth
	}
	if freezeAuthority != nil {
		auth := *freezeAuthority
		mint.FreezeAuthority = &auth
	}
	if err := l.state.TokenMintPut(mint); err != nil {
		return nil, err
	}
	l.emit(NewMintCreatedEvent(mint))
	return mint.Clone(), nil
}

// CreateAccount allocates a token account for mint owned by owner at the
// address controlled by address.
func (l *Ledger) CreateAccount(address Authority, mint, owner crypto.Address) (*types.TokenAccount, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	addr, err := address.resolve(l)
	if err != nil {
		return nil, err
	}
	return l.createAccount(addr, mint, owner)
}

func (l *Ledger) createAccount(addr, mint, owner crypto.Address) (*types.TokenAccount, error) {
	if _, err := l.Mint(mint); err != nil {
		return nil, err
	}
	if err := l.state.AllocateAccount(addr, ProgramName); err != nil {
		return nil, err
	}
	acc := &types.TokenAccount{Address: addr, Mint: mint, Owner: owner}
	if err := l.state.TokenAccountPut(acc); err != nil {
		return nil, err
	}
	l.emit(NewAccountCreatedEvent(acc))
	return acc.Clone(), nil
}

// AssociatedAddress derives the canonical token account address of owner for mint.
func (l *Ledger) AssociatedAddress(owner, mint crypto.Address) (crypto.Address, error) {
	addr, _, err := crypto.FindDerivedAddress(l.programs.AssociatedToken, owner.Bytes(), l.programs.Token.Bytes(), mint.Bytes())
	if err != nil {
		return crypto.Address{}, err
	}
	return addr, nil
}

// CreateAssociatedAccount creates the associated token account of owner for
// mint unless it already exists. An existing account at the address must match
// the requested mint and owner.
func (l *Ledger) CreateAssociatedAccount(owner, mint crypto.Address) (*types.TokenAccount, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	addr, err := l.AssociatedAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	existing, ok, err := l.state.TokenAccountGet(addr)
	if err != nil {
		return nil, err
	}
	if ok {
		if existing.Mint != mint {
			return nil, fmt.Errorf("%w: associated account %s", ErrMintMismatch, addr)
		}
		if existing.Owner != owner {
			return nil, fmt.Errorf("%w: associated account %s", ErrOwnerMismatch, addr)
		}
		return existing, nil
	}
	return l.createAccount(addr, mint, owner)
}

// MintTo creates amount new units of mint in the to account. authority must
// resolve to the mint's mint authority.
func (l *Ledger) MintTo(mintAddr, to crypto.Address, authority Authority, amount uint64) error {
	mint, err := l.Mint(mintAddr)
	if err != nil {
		return err
	}
	signer, err := authority.resolve(l)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil || *mint.MintAuthority != signer {
		return fmt.Errorf("%w: mint %s", ErrAuthorityMismatch, mintAddr)
	}
	acc, err := l.Account(to)
	if err != nil {
		return err
	}
	if acc.Mint != mintAddr {
		return fmt.Errorf("%w: account %s holds %s", ErrMintMismatch, to, acc.Mint)
	}
	supply, carry := bits.Add64(mint.Supply, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: supply of %s", ErrOverflow, mintAddr)
	}
	balance, carry := bits.Add64(acc.Amount, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: balance of %s", ErrOverflow, to)
	}
	mint.Supply = supply
	acc.Amount = balance
	if err := l.state.TokenMintPut(mint); err != nil {
		return err
	}
	if err := l.state.TokenAccountPut(acc); err != nil {
		return err
	}
	l.emit(NewMintedEvent(mintAddr, to, amount))
	return nil
}

// Burn destroys amount units held by from. authority must resolve to the
// account owner.
func (l *Ledger) Burn(mintAddr, from crypto.Address, authority Authority, amount uint64) error {
	mint, err := l.Mint(mintAddr)
	if err != nil {
		return err
	}
	acc, err := l.Account(from)
	if err != nil {
		return err
	}
	if acc.Mint != mintAddr {
		return fmt.Errorf("%w: account %s holds %s", ErrMintMismatch, from, acc.Mint)
	}
	signer, err := authority.resolve(l)
	if err != nil {
		return err
	}
	if acc.Owner != signer {
		return fmt.Errorf("%w: account %s", ErrOwnerMismatch, from)
	}
	if acc.Amount < amount {
		return fmt.Errorf("%w: account %s has %d, need %d", ErrInsufficientFunds, from, acc.Amount, amount)
	}
	if mint.Supply < amount {
		return fmt.Errorf("%w: supply of %s below burn", ErrInsufficientFunds, mintAddr)
	}
	acc.Amount -= amount
	mint.Supply -= amount
	if err := l.state.TokenAccountPut(acc); err != nil {
		return err
	}
	if err := l.state.TokenMintPut(mint); err != nil {
		return err
	}
	l.emit(NewBurnedEvent(mintAddr, from, amount))
	return nil
}

// Transfer moves amount units between two accounts of the same mint.
// authority must resolve to the owner of from.
func (l *Ledger) Transfer(from, to crypto.Address, authority Authority, amount uint64) error {
	src, err := l.Account(from)
	if err != nil {
		return err
	}
	dst, err := l.Account(to)
	if err != nil {
		return err
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("%w: %s holds %s, %s holds %s", ErrMintMismatch, from, src.Mint, to, dst.Mint)
	}
	signer, err := authority.resolve(l)
	if err != nil {
		return err
	}
	if src.Owner != signer {
		return fmt.Errorf("%w: account %s", ErrOwnerMismatch, from)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: account %s has %d, need %d", ErrInsufficientFunds, from, src.Amount, amount)
	}
	if from == to {
		return nil
	}
	balance, carry := bits.Add64(dst.Amount, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: balance of %s", ErrOverflow, to)
	}
	src.Amount -= amount
	dst.Amount = balance
	if err := l.state.TokenAccountPut(src); err != nil {
		return err
	}
	if err := l.state.TokenAccountPut(dst); err != nil {
		return err
	}
	l.emit(NewTransferredEvent(src.Mint, from, to, amount))
	return nil
}
