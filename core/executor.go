package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"assembly/core/events"
	"assembly/core/state"
	"assembly/crypto"
	nativecommon "assembly/native/common"
	"assembly/native/distribution"
	"assembly/native/token"
	"assembly/observability"
	"assembly/observability/otel"
	"assembly/storage"
)

var errNilDatabase = errors.New("executor: database not configured")

// Executor applies program calls to the ledger one at a time. Every call runs
// in its own storage transaction: it commits when the call succeeds and is
// discarded otherwise, and its events are published only after commit.
type Executor struct {
	mu sync.Mutex

	db        storage.Database
	programID crypto.Address
	programs  token.Programs
	clock     clockwork.Clock
	policy    distribution.Policy
	pauses    nativecommon.PauseView
	emitter   events.Emitter
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *observability.ProgramMetrics

	allowMigrate bool
}

// Option customises an Executor.
type Option func(*Executor)

// WithClock overrides the clock read once at the start of every call.
func WithClock(clock clockwork.Clock) Option {
	return func(x *Executor) { x.clock = clock }
}

// WithPrograms overrides the token program IDs.
func WithPrograms(p token.Programs) Option {
	return func(x *Executor) { x.programs = p }
}

// WithPolicy enables optional distribution invariants.
func WithPolicy(p distribution.Policy) Option {
	return func(x *Executor) { x.policy = p }
}

// WithPauses wires the pause view consulted by every call.
func WithPauses(p nativecommon.PauseView) Option {
	return func(x *Executor) { x.pauses = p }
}

// WithEmitter sets the sink for committed events.
func WithEmitter(e events.Emitter) Option {
	return func(x *Executor) { x.emitter = e }
}

// WithLogger sets the logger used for call outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(x *Executor) { x.logger = l }
}

// WithAllowMigrate lets the executor open a store stamped with a different
// schema version.
func WithAllowMigrate(allow bool) Option {
	return func(x *Executor) { x.allowMigrate = allow }
}

// NewExecutor builds an executor over db for the program deployed at
// programID. The store's schema version is checked, and stamped when empty.
func NewExecutor(db storage.Database, programID crypto.Address, opts ...Option) (*Executor, error) {
	if db == nil {
		return nil, errNilDatabase
	}
	x := &Executor{
		db:        db,
		programID: programID,
		programs:  token.DefaultPrograms(),
		clock:     clockwork.NewRealClock(),
		emitter:   events.NoopEmitter{},
		logger:    slog.Default(),
		tracer:    otel.Tracer("core"),
		metrics:   observability.Programs(),
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.emitter == nil {
		x.emitter = events.NoopEmitter{}
	}
	if x.logger == nil {
		x.logger = slog.Default()
	}
	if err := state.EnsureStateVersion(db, x.allowMigrate); err != nil {
		return nil, err
	}
	return x, nil
}

// ProgramID returns the distribution program ID.
func (x *Executor) ProgramID() crypto.Address { return x.programID }

// Programs returns the token program IDs.
func (x *Executor) Programs() token.Programs { return x.programs }

// Clock returns the executor's time source.
func (x *Executor) Clock() clockwork.Clock { return x.clock }

// call is the per-transaction context handed to an instruction.
type call struct {
	ledger *token.Ledger
	engine *distribution.Engine
}

func (x *Executor) run(ctx context.Context, instruction string, signers []crypto.Address, fn func(c *call) error) (err error) {
	done := x.metrics.Begin()
	defer done()

	ctx, span := x.tracer.Start(ctx, instruction, trace.WithAttributes(
		attribute.String("program", x.programID.String()),
		attribute.Int("signers", len(signers)),
	))
	defer span.End()

	x.mu.Lock()
	defer x.mu.Unlock()

	start := x.clock.Now()
	defer func() {
		reason := ""
		if err != nil {
			reason = distribution.ReasonOf(err).String()
			span.RecordError(err)
			span.SetStatus(codes.Error, reason)
			x.logger.InfoContext(ctx, "call rejected",
				slog.String("instruction", instruction),
				slog.String("reason", reason),
				slog.Any("error", err))
		} else {
			x.logger.DebugContext(ctx, "call accepted", slog.String("instruction", instruction))
		}
		x.metrics.Observe(instruction, reason, x.clock.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	txn, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("executor: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			txn.Discard()
		}
	}()

	buf := &events.Buffer{}
	st := state.NewManager(txn)
	ledger := token.NewLedger(st, x.programs)
	ledger.SetSigners(signers...)
	ledger.SetEmitter(buf)

	now := start.Unix()
	engine := distribution.NewEngine(x.programID)
	engine.SetState(st)
	engine.SetLedger(ledger)
	engine.SetEmitter(buf)
	engine.SetPauses(x.pauses)
	engine.SetPolicy(x.policy)
	engine.SetNowFunc(func() int64 { return now })

	if err := fn(&call{ledger: ledger, engine: engine}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("executor: commit: %w", err)
	}
	committed = true
	span.SetAttributes(attribute.Int("events", len(buf.Events())))
	buf.Flush(x.emitter)
	return nil
}

// InitializeDistributor creates a distributor. See distribution.Engine.
func (x *Executor) InitializeDistributor(ctx context.Context, signers []crypto.Address, accts distribution.InitializeDistributorAccounts, args distribution.DistributorArgs) (*distribution.Distributor, error) {
	var out *distribution.Distributor
	err := x.run(ctx, "distribution.initialize_distributor", signers, func(c *call) error {
		d, err := c.engine.InitializeDistributor(accts, args)
		out = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InitializeBudget runs one budget allocation call.
func (x *Executor) InitializeBudget(ctx context.Context, signers []crypto.Address, accts distribution.InitializeBudgetAccounts, allocations []uint64, bump uint8) error {
	err := x.run(ctx, "distribution.initialize_budget", signers, func(c *call) error {
		return c.engine.InitializeBudget(accts, allocations, bump)
	})
	if err == nil {
		for _, amount := range allocations {
			x.metrics.RecordFlow("allocated", amount)
		}
	}
	return err
}

// InitializeGrant opens a grant for a recipient.
func (x *Executor) InitializeGrant(ctx context.Context, signers []crypto.Address, accts distribution.InitializeGrantAccounts, bump uint8) (*distribution.Grant, error) {
	var out *distribution.Grant
	err := x.run(ctx, "distribution.initialize_grant", signers, func(c *call) error {
		g, err := c.engine.InitializeGrant(accts, bump)
		out = g
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TransferGrant converts distributable tokens into grant tokens.
func (x *Executor) TransferGrant(ctx context.Context, signers []crypto.Address, accts distribution.TransferGrantAccounts, amount uint64) error {
	err := x.run(ctx, "distribution.transfer_grant", signers, func(c *call) error {
		return c.engine.TransferGrant(accts, amount)
	})
	if err == nil {
		x.metrics.RecordFlow("granted", amount)
	}
	return err
}

// RedeemGrant converts a grant balance into reward tokens.
func (x *Executor) RedeemGrant(ctx context.Context, signers []crypto.Address, accts distribution.RedeemGrantAccounts) (uint64, error) {
	var amount uint64
	err := x.run(ctx, "distribution.redeem_grant", signers, func(c *call) error {
		var err error
		amount, err = c.engine.RedeemGrant(accts)
		return err
	})
	if err != nil {
		return 0, err
	}
	x.metrics.RecordFlow("redeemed", amount)
	return amount, nil
}
