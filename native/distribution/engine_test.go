package distribution

import (
	"testing"

	"github.com/stretchr/testify/require"

	errs "assembly/core/errors"
	"assembly/core/events"
	"assembly/core/types"
	"assembly/crypto"
	nativecommon "assembly/native/common"
	"assembly/native/token"
)

type mockState struct {
	owners       map[crypto.Address]string
	mints        map[crypto.Address]*types.Mint
	accounts     map[crypto.Address]*types.TokenAccount
	distributors map[crypto.Address]*Distributor
	grants       map[crypto.Address]*Grant
	index        map[crypto.Address][]crypto.Address
}

func newMockState() *mockState {
	return &mockState{
		owners:       make(map[crypto.Address]string),
		mints:        make(map[crypto.Address]*types.Mint),
		accounts:     make(map[crypto.Address]*types.TokenAccount),
		distributors: make(map[crypto.Address]*Distributor),
		grants:       make(map[crypto.Address]*Grant),
		index:        make(map[crypto.Address][]crypto.Address),
	}
}

func (m *mockState) AllocateAccount(addr crypto.Address, program string) error {
	if _, ok := m.owners[addr]; ok {
		return errs.ErrAccountInUse
	}
	m.owners[addr] = program
	return nil
}

func (m *mockState) TokenMintGet(addr crypto.Address) (*types.Mint, bool, error) {
	mint, ok := m.mints[addr]
	if !ok {
		return nil, false, nil
	}
	return mint.Clone(), true, nil
}

func (m *mockState) TokenMintPut(mint *types.Mint) error {
	m.mints[mint.Address] = mint.Clone()
	return nil
}

func (m *mockState) TokenAccountGet(addr crypto.Address) (*types.TokenAccount, bool, error) {
	acc, ok := m.accounts[addr]
	if !ok {
		return nil, false, nil
	}
	return acc.Clone(), true, nil
}

func (m *mockState) TokenAccountPut(acc *types.TokenAccount) error {
	m.accounts[acc.Address] = acc.Clone()
	return nil
}

func (m *mockState) DistributorGet(addr crypto.Address) (*Distributor, bool, error) {
	d, ok := m.distributors[addr]
	if !ok {
		return nil, false, nil
	}
	return d.Clone(), true, nil
}

func (m *mockState) DistributorPut(d *Distributor) error {
	m.distributors[d.Address] = d.Clone()
	return nil
}

func (m *mockState) GrantGet(addr crypto.Address) (*Grant, bool, error) {
	g, ok := m.grants[addr]
	if !ok {
		return nil, false, nil
	}
	return g.Clone(), true, nil
}

func (m *mockState) GrantPut(g *Grant) error {
	if _, ok := m.grants[g.Address]; !ok {
		m.index[g.Distributor] = append(m.index[g.Distributor], g.Address)
	}
	m.grants[g.Address] = g.Clone()
	return nil
}

func (m *mockState) DistributorGrants(distributor crypto.Address) ([]crypto.Address, error) {
	return append([]crypto.Address(nil), m.index[distributor]...), nil
}

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(evt events.Event) { r.events = append(r.events, evt) }

func newAddr(t *testing.T) crypto.Address {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	return key.Address()
}

const (
	distEnd     int64 = 1_000
	redeemStart int64 = 2_000
)

type fixture struct {
	t         *testing.T
	state     *mockState
	ledger    *token.Ledger
	engine    *Engine
	emitter   *recordingEmitter
	now       int64
	programID crypto.Address

	payer      crypto.Address
	freeze     crypto.Address
	mintAuth   crypto.Address
	distMint   crypto.Address
	rewardMint crypto.Address
	donor      crypto.Address
	donorToken crypto.Address
	recipient  crypto.Address
	addrs      DistributorAddresses
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:          t,
		state:      newMockState(),
		emitter:    &recordingEmitter{},
		now:        100,
		programID:  newAddr(t),
		payer:      newAddr(t),
		freeze:     newAddr(t),
		mintAuth:   newAddr(t),
		distMint:   newAddr(t),
		rewardMint: newAddr(t),
		donor:      newAddr(t),
		recipient:  newAddr(t),
	}
	f.ledger = token.NewLedger(f.state, token.DefaultPrograms())
	f.signAll()

	_, err := f.ledger.CreateMint(token.Key(f.distMint), 6, &f.mintAuth, &f.freeze)
	require.NoError(t, err)
	_, err = f.ledger.CreateMint(token.Key(f.rewardMint), 6, &f.mintAuth, nil)
	require.NoError(t, err)
	donorAcc, err := f.ledger.CreateAssociatedAccount(f.donor, f.distMint)
	require.NoError(t, err)
	f.donorToken = donorAcc.Address
	require.NoError(t, f.ledger.MintTo(f.distMint, f.donorToken, token.Key(f.mintAuth), 1_000))

	f.addrs, err = DeriveDistributorAddresses(f.programID, f.distMint, f.rewardMint)
	require.NoError(t, err)

	f.engine = NewEngine(f.programID)
	f.engine.SetState(f.state)
	f.engine.SetEmitter(f.emitter)
	f.engine.SetNowFunc(func() int64 { return f.now })
	f.engine.SetLedger(f.ledger)
	return f
}

// sign replaces the transaction signer set and rebinds the engine's view.
func (f *fixture) sign(signers ...crypto.Address) {
	f.ledger.SetSigners(signers...)
	if f.engine != nil {
		f.engine.SetLedger(f.ledger)
	}
}

func (f *fixture) signAll() {
	f.sign(f.payer, f.freeze, f.mintAuth, f.distMint, f.rewardMint, f.donor, f.recipient)
}

func (f *fixture) distributorAccounts() InitializeDistributorAccounts {
	return InitializeDistributorAccounts{
		Payer:           f.payer,
		FreezeAuthority: f.freeze,
		DistMint:        f.distMint,
		RewardMint:      f.rewardMint,
		Distributor:     f.addrs.Distributor,
		GrantMint:       f.addrs.GrantMint,
		RewardVault:     f.addrs.RewardVault,
	}
}

func (f *fixture) args() DistributorArgs {
	return DistributorArgs{DistEndTs: distEnd, RedeemStartTs: redeemStart, Bumps: f.addrs.Bumps}
}

func (f *fixture) initDistributor() *Distributor {
	f.t.Helper()
	d, err := f.engine.InitializeDistributor(f.distributorAccounts(), f.args())
	require.NoError(f.t, err)
	return d
}

func (f *fixture) fundVault(amount uint64) {
	f.t.Helper()
	require.NoError(f.t, f.ledger.MintTo(f.rewardMint, f.addrs.RewardVault, token.Key(f.mintAuth), amount))
}

func (f *fixture) grantAccounts(recipient crypto.Address) (InitializeGrantAccounts, uint8) {
	f.t.Helper()
	grant, bump, err := DeriveGrant(f.programID, f.addrs.Distributor, recipient)
	require.NoError(f.t, err)
	return InitializeGrantAccounts{
		Payer:       f.payer,
		Recipient:   recipient,
		Distributor: f.addrs.Distributor,
		GrantMint:   f.addrs.GrantMint,
		Grant:       grant,
	}, bump
}

func (f *fixture) initGrant(recipient crypto.Address) crypto.Address {
	f.t.Helper()
	accts, bump := f.grantAccounts(recipient)
	g, err := f.engine.InitializeGrant(accts, bump)
	require.NoError(f.t, err)
	return g.Address
}

func (f *fixture) transferAccounts(grant crypto.Address) TransferGrantAccounts {
	return TransferGrantAccounts{
		Payer:          f.payer,
		DonorAuthority: f.donor,
		Recipient:      f.recipient,
		Distributor:    f.addrs.Distributor,
		DistMint:       f.distMint,
		DistToken:      f.donorToken,
		GrantMint:      f.addrs.GrantMint,
		Grant:          grant,
	}
}

func (f *fixture) rewardAccount(owner crypto.Address) crypto.Address {
	f.t.Helper()
	acc, err := f.ledger.CreateAssociatedAccount(owner, f.rewardMint)
	require.NoError(f.t, err)
	return acc.Address
}

func (f *fixture) redeemAccounts(grant, dest crypto.Address) RedeemGrantAccounts {
	return RedeemGrantAccounts{
		Payer:          f.payer,
		Recipient:      f.recipient,
		Distributor:    f.addrs.Distributor,
		GrantMint:      f.addrs.GrantMint,
		Grant:          grant,
		RewardMint:     f.rewardMint,
		RewardVault:    f.addrs.RewardVault,
		RecipientToken: dest,
	}
}

func (f *fixture) balance(addr crypto.Address) uint64 {
	f.t.Helper()
	acc, err := f.ledger.Account(addr)
	require.NoError(f.t, err)
	return acc.Amount
}

func (f *fixture) supply(addr crypto.Address) uint64 {
	f.t.Helper()
	mint, err := f.ledger.Mint(addr)
	require.NoError(f.t, err)
	return mint.Supply
}

func TestInitializeDistributorCreatesDerivedAccounts(t *testing.T) {
	f := newFixture(t)
	d := f.initDistributor()

	require.Equal(t, SchemaVersion, d.Version)
	require.Equal(t, f.addrs.GrantMint, d.GrantMint)
	require.Equal(t, f.addrs.RewardVault, d.RewardVault)

	grantMint, err := f.ledger.Mint(f.addrs.GrantMint)
	require.NoError(t, err)
	require.Equal(t, uint8(6), grantMint.Decimals)
	require.NotNil(t, grantMint.MintAuthority)
	require.Equal(t, f.addrs.Distributor, *grantMint.MintAuthority)
	require.NotNil(t, grantMint.FreezeAuthority)
	require.Equal(t, f.freeze, *grantMint.FreezeAuthority)

	vault, err := f.ledger.Account(f.addrs.RewardVault)
	require.NoError(t, err)
	require.Equal(t, f.addrs.Distributor, vault.Owner)
	require.Equal(t, f.rewardMint, vault.Mint)
	require.Zero(t, vault.Amount)

	require.NotEmpty(t, f.emitter.events)
	require.Equal(t, EventTypeDistributorInitialized, f.emitter.events[0].EventType())

	_, err = f.engine.InitializeDistributor(f.distributorAccounts(), f.args())
	require.ErrorIs(t, err, errs.ErrAccountInUse)
}

func TestInitializeDistributorValidation(t *testing.T) {
	t.Run("decimals", func(t *testing.T) {
		f := newFixture(t)
		other := newAddr(t)
		f.sign(f.payer, f.freeze, other)
		_, err := f.ledger.CreateMint(token.Key(other), 9, &f.mintAuth, nil)
		require.NoError(t, err)
		f.rewardMint = other
		f.addrs, err = DeriveDistributorAddresses(f.programID, f.distMint, other)
		require.NoError(t, err)
		_, err = f.engine.InitializeDistributor(f.distributorAccounts(), f.args())
		require.ErrorIs(t, err, ErrDecimalsMismatch)
		require.Equal(t, ReasonDecimalsMismatch, ReasonOf(err))
	})

	t.Run("freeze authority", func(t *testing.T) {
		f := newFixture(t)
		impostor := newAddr(t)
		f.sign(f.payer, impostor)
		accts := f.distributorAccounts()
		accts.FreezeAuthority = impostor
		_, err := f.engine.InitializeDistributor(accts, f.args())
		require.ErrorIs(t, err, ErrFreezeAuthorityMismatch)
	})

	t.Run("freeze authority must sign", func(t *testing.T) {
		f := newFixture(t)
		f.sign(f.payer)
		_, err := f.engine.InitializeDistributor(f.distributorAccounts(), f.args())
		require.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("non canonical bump", func(t *testing.T) {
		f := newFixture(t)
		args := f.args()
		args.Bumps.Reward--
		_, err := f.engine.InitializeDistributor(f.distributorAccounts(), args)
		require.ErrorIs(t, err, ErrAddressMismatch)
		require.ErrorIs(t, err, crypto.ErrNonCanonicalBump)
		_, ok := f.state.distributors[f.addrs.Distributor]
		require.False(t, ok)
	})

	t.Run("wrong vault", func(t *testing.T) {
		f := newFixture(t)
		accts := f.distributorAccounts()
		accts.RewardVault = newAddr(t)
		_, err := f.engine.InitializeDistributor(accts, f.args())
		require.ErrorIs(t, err, ErrAddressMismatch)
	})

	t.Run("window policy", func(t *testing.T) {
		f := newFixture(t)
		args := f.args()
		args.RedeemStartTs = distEnd - 1
		_, err := f.engine.InitializeDistributor(f.distributorAccounts(), args)
		require.NoError(t, err, "overlapping windows are permitted by default")

		g := newFixture(t)
		g.engine.SetPolicy(Policy{RequireOrderedWindows: true})
		args = g.args()
		args.RedeemStartTs = distEnd - 1
		_, err = g.engine.InitializeDistributor(g.distributorAccounts(), args)
		require.ErrorIs(t, err, ErrInvalidWindows)
	})
}

func TestGrantLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	f.fundVault(500)
	grant := f.initGrant(f.recipient)
	dest := f.rewardAccount(f.recipient)

	require.NoError(t, f.engine.TransferGrant(f.transferAccounts(grant), 100))
	require.Equal(t, uint64(100), f.balance(grant))
	require.Equal(t, uint64(900), f.supply(f.distMint))
	require.Equal(t, uint64(100), f.supply(f.addrs.GrantMint))

	f.now = distEnd
	err := f.engine.TransferGrant(f.transferAccounts(grant), 100)
	require.ErrorIs(t, err, ErrDistributionPeriodEnded)
	require.Equal(t, ReasonDistributionPeriodEnded, ReasonOf(err))
	require.Equal(t, uint64(100), f.balance(grant))
	require.Equal(t, uint64(900), f.balance(f.donorToken))

	f.now = redeemStart
	amount, err := f.engine.RedeemGrant(f.redeemAccounts(grant, dest))
	require.NoError(t, err)
	require.Equal(t, uint64(100), amount)
	require.Zero(t, f.balance(grant))
	require.Equal(t, uint64(100), f.balance(dest))
	require.Equal(t, uint64(400), f.balance(f.addrs.RewardVault))
	require.Zero(t, f.supply(f.addrs.GrantMint))

	record, err := f.engine.Grant(grant)
	require.NoError(t, err)
	require.Equal(t, uint64(100), record.TotalGranted)
	require.Equal(t, uint64(100), record.TotalRedeemed)
	require.Equal(t, uint64(1), record.Redemptions)
	require.Equal(t, redeemStart, record.LastRedeemedAt)
}

func TestRedeemBeforeStartLeavesBalances(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	f.fundVault(500)
	grant := f.initGrant(f.recipient)
	dest := f.rewardAccount(f.recipient)
	require.NoError(t, f.engine.TransferGrant(f.transferAccounts(grant), 40))

	f.now = redeemStart - 1
	_, err := f.engine.RedeemGrant(f.redeemAccounts(grant, dest))
	require.ErrorIs(t, err, ErrRedeemPeriodNotStarted)
	require.Equal(t, ReasonRedeemPeriodNotStarted, ReasonOf(err))
	require.Equal(t, uint64(40), f.balance(grant))
	require.Equal(t, uint64(500), f.balance(f.addrs.RewardVault))
	require.Zero(t, f.balance(dest))
}

func TestInitializeGrantRejectsDuplicateAndLateCalls(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	grant := f.initGrant(f.recipient)
	require.NoError(t, f.engine.TransferGrant(f.transferAccounts(grant), 10))

	accts, bump := f.grantAccounts(f.recipient)
	_, err := f.engine.InitializeGrant(accts, bump)
	require.ErrorIs(t, err, errs.ErrAccountInUse)
	require.Equal(t, uint64(10), f.balance(grant))

	late := newAddr(t)
	f.now = distEnd
	accts, bump = f.grantAccounts(late)
	_, err = f.engine.InitializeGrant(accts, bump)
	require.ErrorIs(t, err, ErrDistributionPeriodEnded)

	grants, err := f.engine.Grants(f.addrs.Distributor)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.Equal(t, f.recipient, grants[0].Recipient)
}

func TestInitializeGrantRejectsForeignAddress(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	accts, bump := f.grantAccounts(f.recipient)
	other, _ := f.grantAccounts(newAddr(t))
	accts.Grant = other.Grant
	_, err := f.engine.InitializeGrant(accts, bump)
	require.ErrorIs(t, err, ErrAddressMismatch)
}

func TestTransferGrantRejectsForeignRecipient(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	grant := f.initGrant(f.recipient)
	accts := f.transferAccounts(grant)
	accts.Recipient = newAddr(t)
	err := f.engine.TransferGrant(accts, 10)
	require.ErrorIs(t, err, ErrAddressMismatch)
	require.Equal(t, uint64(1_000), f.balance(f.donorToken))
}

func TestTransferGrantInsufficientDonorBalance(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	grant := f.initGrant(f.recipient)
	err := f.engine.TransferGrant(f.transferAccounts(grant), 1_001)
	require.ErrorIs(t, err, token.ErrInsufficientFunds)
	require.Equal(t, ReasonInsufficientFunds, ReasonOf(err))
	require.Zero(t, f.balance(grant))
}

func TestRedeemRejectsThirdPartyDestination(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	f.fundVault(500)
	grant := f.initGrant(f.recipient)
	require.NoError(t, f.engine.TransferGrant(f.transferAccounts(grant), 50))
	thief := f.rewardAccount(newAddr(t))

	f.now = redeemStart
	_, err := f.engine.RedeemGrant(f.redeemAccounts(grant, thief))
	require.ErrorIs(t, err, ErrReceiverNotOwner)
	require.Zero(t, f.balance(thief))
	require.Equal(t, uint64(500), f.balance(f.addrs.RewardVault))
}

func TestRedeemRequiresRecipientSignature(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	grant := f.initGrant(f.recipient)
	dest := f.rewardAccount(f.recipient)
	f.sign(f.payer)
	f.now = redeemStart
	_, err := f.engine.RedeemGrant(f.redeemAccounts(grant, dest))
	require.ErrorIs(t, err, ErrMissingSignature)
}

func TestVaultOnlyMovesThroughRedeem(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	f.fundVault(500)
	sink := f.rewardAccount(f.payer)
	d := distributorDerivation(f.distMint, f.addrs.Bumps.Distributor)

	err := f.ledger.Transfer(f.addrs.RewardVault, sink, token.Key(f.addrs.Distributor), 1)
	require.ErrorIs(t, err, token.ErrMissingSignature)
	err = f.ledger.Transfer(f.addrs.RewardVault, sink, token.Derived(d), 1)
	require.ErrorIs(t, err, token.ErrInvalidSigner)
	err = f.ledger.Invoke(newAddr(t)).Transfer(f.addrs.RewardVault, sink, token.Derived(d), 1)
	require.Error(t, err)
	require.Equal(t, uint64(500), f.balance(f.addrs.RewardVault))
}

func TestDistributorAddressCannotSign(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	f.fundVault(500)
	grant := f.initGrant(f.recipient)
	sink := f.rewardAccount(f.payer)

	f.sign(f.payer, f.addrs.Distributor, f.addrs.GrantMint, f.addrs.RewardVault)
	err := f.ledger.Transfer(f.addrs.RewardVault, sink, token.Key(f.addrs.Distributor), 1)
	require.ErrorIs(t, err, token.ErrMissingSignature)
	err = f.ledger.MintTo(f.addrs.GrantMint, grant, token.Key(f.addrs.Distributor), 1)
	require.ErrorIs(t, err, token.ErrMissingSignature)

	require.Equal(t, uint64(500), f.balance(f.addrs.RewardVault))
	require.Zero(t, f.balance(sink))
	require.Zero(t, f.supply(f.addrs.GrantMint))
}

func TestRedeemUnderfundedVault(t *testing.T) {
	f := newFixture(t)
	f.initDistributor()
	f.fundVault(10)
	grant := f.initGrant(f.recipient)
	dest := f.rewardAccount(f.recipient)
	require.NoError(t, f.engine.TransferGrant(f.transferAccounts(grant), 50))

	f.now = redeemStart
	_, err := f.engine.RedeemGrant(f.redeemAccounts(grant, dest))
	require.ErrorIs(t, err, token.ErrInsufficientFunds)
	require.Equal(t, ReasonInsufficientFunds, ReasonOf(err))
}

func TestRepeatedRedemptionPolicy(t *testing.T) {
	for _, single := range []bool{false, true} {
		f := newFixture(t)
		f.engine.SetPolicy(Policy{SingleRedemption: single})
		f.initDistributor()
		f.fundVault(500)
		grant := f.initGrant(f.recipient)
		dest := f.rewardAccount(f.recipient)
		require.NoError(t, f.engine.TransferGrant(f.transferAccounts(grant), 30))

		f.now = redeemStart
		amount, err := f.engine.RedeemGrant(f.redeemAccounts(grant, dest))
		require.NoError(t, err)
		require.Equal(t, uint64(30), amount)

		amount, err = f.engine.RedeemGrant(f.redeemAccounts(grant, dest))
		if single {
			require.ErrorIs(t, err, ErrAlreadyRedeemed)
			continue
		}
		require.NoError(t, err)
		require.Zero(t, amount)
	}
}

func TestEmptyRedemptionDoesNotCount(t *testing.T) {
	f := newFixture(t)
	f.engine.SetPolicy(Policy{SingleRedemption: true})
	f.initDistributor()
	f.fundVault(500)
	grant := f.initGrant(f.recipient)
	dest := f.rewardAccount(f.recipient)

	f.now = redeemStart
	amount, err := f.engine.RedeemGrant(f.redeemAccounts(grant, dest))
	require.NoError(t, err)
	require.Zero(t, amount)

	record, err := f.engine.Grant(grant)
	require.NoError(t, err)
	require.Zero(t, record.Redemptions)
}

func TestInitializeBudget(t *testing.T) {
	f := newFixture(t)
	session := newAddr(t)
	authority, bump, err := DeriveAllocationAuthority(f.programID, session)
	require.NoError(t, err)
	budgetMint := newAddr(t)
	f.sign(f.payer, session, budgetMint)
	_, err = f.ledger.CreateMint(token.Key(budgetMint), 6, &authority, nil)
	require.NoError(t, err)

	alice, bob := newAddr(t), newAddr(t)
	aliceAcc, err := f.ledger.AssociatedAddress(alice, budgetMint)
	require.NoError(t, err)
	bobAcc, err := f.ledger.AssociatedAddress(bob, budgetMint)
	require.NoError(t, err)
	accts := InitializeBudgetAccounts{
		Payer:               f.payer,
		Session:             session,
		AllocationAuthority: authority,
		Mint:                budgetMint,
		Remaining:           []crypto.Address{aliceAcc, alice, bobAcc},
	}

	err = f.engine.InitializeBudget(accts, []uint64{10, 20}, bump)
	require.ErrorIs(t, err, ErrInvalidNumberOfAccounts)
	require.Equal(t, ReasonInvalidNumberOfAccounts, ReasonOf(err))
	require.Zero(t, f.supply(budgetMint))

	accts.Remaining = append(accts.Remaining, bob)
	require.NoError(t, f.engine.InitializeBudget(accts, []uint64{10, 20}, bump))
	require.Equal(t, uint64(10), f.balance(aliceAcc))
	require.Equal(t, uint64(20), f.balance(bobAcc))

	require.NoError(t, f.engine.InitializeBudget(accts, []uint64{1, 2}, bump))
	require.Equal(t, uint64(11), f.balance(aliceAcc))
	require.Equal(t, uint64(33), f.supply(budgetMint))

	accts.Remaining = []crypto.Address{bobAcc, alice}
	err = f.engine.InitializeBudget(accts, []uint64{5}, bump)
	require.ErrorIs(t, err, ErrAddressMismatch)

	other := newAddr(t)
	f.sign(f.payer, other)
	accts.Session = other
	accts.Remaining = []crypto.Address{aliceAcc, alice}
	err = f.engine.InitializeBudget(accts, []uint64{5}, bump)
	require.ErrorIs(t, err, ErrAddressMismatch)
	require.Equal(t, uint64(33), f.supply(budgetMint))
}

func TestPausedModuleRejectsCalls(t *testing.T) {
	f := newFixture(t)
	f.engine.SetPauses(nativecommon.NewPauseSet(ModuleName))
	_, err := f.engine.InitializeDistributor(f.distributorAccounts(), f.args())
	require.ErrorIs(t, err, nativecommon.ErrModulePaused)
	require.Equal(t, ReasonModulePaused, ReasonOf(err))
}

func TestLegacyDistributorGainsGrantMint(t *testing.T) {
	f := newFixture(t)
	legacy := &Distributor{
		Version:  LegacySchemaVersion,
		Address:  f.addrs.Distributor,
		DistMint: f.distMint,
		Args:     f.args(),
	}
	require.NoError(t, f.state.DistributorPut(legacy))
	d, err := f.engine.Distributor(f.addrs.Distributor)
	require.NoError(t, err)
	require.Equal(t, f.addrs.GrantMint, d.GrantMint)
	require.Equal(t, crypto.Address{}, d.RewardVault)

	_, err = f.engine.Distributor(newAddr(t))
	require.ErrorIs(t, err, errs.ErrAccountNotFound)
}

func TestReasonOfUnknown(t *testing.T) {
	require.Equal(t, ReasonNone, ReasonOf(nil))
	require.Equal(t, ReasonUnknown, ReasonOf(errNilState))
	require.Equal(t, "distribution_period_ended", ReasonDistributionPeriodEnded.String())
	require.Equal(t, Reason(6002), ReasonInvalidNumberOfAccounts)
}
