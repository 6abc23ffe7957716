package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"assembly/config"
	"assembly/core"
	"assembly/core/events"
	"assembly/crypto"
	nativecommon "assembly/native/common"
	"assembly/native/distribution"
	"assembly/native/token"
	"assembly/observability/logging"
	"assembly/observability/otel"
	"assembly/storage"
)

const serviceName = "assembly"

// app holds everything a command needs to act on the local ledger.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *storage.LevelDB
	exec     *core.Executor
	events   *events.Log
	pauses   *nativecommon.PauseSet
	payer    *crypto.PrivateKey
	shutdown func(context.Context) error
}

func openApp(ctx context.Context, opts globalOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logger, err := logging.Setup(logging.Config{
		Service:     serviceName,
		Environment: cfg.Environment,
		Format:      cfg.Log.Format,
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, err
	}

	shutdown, err := otel.Init(ctx, otel.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     otel.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	programID, err := cfg.Program()
	if err != nil {
		return nil, fmt.Errorf("ProgramID: %w", err)
	}
	programs := token.DefaultPrograms()
	tokenProgram, associated, err := cfg.TokenPrograms()
	if err != nil {
		return nil, err
	}
	if tokenProgram != (crypto.Address{}) {
		programs.Token = tokenProgram
	}
	if associated != (crypto.Address{}) {
		programs.AssociatedToken = associated
	}

	payer, err := crypto.LoadFromKeystore(cfg.PayerKeystorePath)
	if err != nil {
		return nil, fmt.Errorf("load payer keypair: %w", err)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log := events.NewLog(1024)
	pauses := nativecommon.NewPauseSet(cfg.PausedModules...)
	exec, err := core.NewExecutor(db, programID,
		core.WithPrograms(programs),
		core.WithPolicy(distribution.Policy{
			RequireOrderedWindows: cfg.Policy.RequireOrderedWindows,
			SingleRedemption:      cfg.Policy.SingleRedemption,
		}),
		core.WithPauses(pauses),
		core.WithEmitter(events.Fanout{log, eventLogger{logger}}),
		core.WithLogger(logger),
		core.WithAllowMigrate(cfg.AllowMigrate),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("ledger opened",
		slog.String("program", programID.String()),
		slog.String("address", payer.Address().String()),
		logging.MaskField("payer_keystore", cfg.PayerKeystorePath))

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		exec:     exec,
		events:   log,
		pauses:   pauses,
		payer:    payer,
		shutdown: shutdown,
	}, nil
}

func (a *app) Close() {
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdown(ctx); err != nil {
			a.logger.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", slog.Any("error", err))
	}
}

// signers returns the payer followed by the given keys.
func (a *app) signers(keys ...*crypto.PrivateKey) []crypto.Address {
	out := []crypto.Address{a.payer.Address()}
	for _, k := range keys {
		out = append(out, k.Address())
	}
	return out
}

// eventLogger writes committed events to the structured log.
type eventLogger struct {
	logger *slog.Logger
}

func (l eventLogger) Emit(evt events.Event) {
	if evt == nil || evt.Event() == nil {
		return
	}
	e := evt.Event()
	attrs := make([]any, 0, len(e.Attributes)+1)
	attrs = append(attrs, slog.String("event", e.Type))
	for k, v := range e.Attributes {
		attrs = append(attrs, slog.String(k, v))
	}
	l.logger.Info("event", attrs...)
}

// withApp opens the ledger, runs fn and reports its error.
func withApp(opts globalOptions, stderr io.Writer, fn func(ctx context.Context, a *app) error) int {
	ctx := context.Background()
	a, err := openApp(ctx, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.Close()
	if err := fn(ctx, a); err != nil {
		reason := distribution.ReasonOf(err)
		fmt.Fprintf(stderr, "Error (%s): %v\n", reason, err)
		return 1
	}
	return 0
}

func loadKeypair(flagName, path string) (*crypto.PrivateKey, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("--%s is required", flagName)
	}
	key, err := crypto.LoadFromKeystore(path)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flagName, err)
	}
	return key, nil
}

func parseAddress(flagName, value string) (crypto.Address, error) {
	if strings.TrimSpace(value) == "" {
		return crypto.Address{}, fmt.Errorf("--%s is required", flagName)
	}
	addr, err := crypto.DecodeAddress(value)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("--%s: %w", flagName, err)
	}
	return addr, nil
}

func parseOptionalAddress(flagName, value string) (*crypto.Address, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	addr, err := parseAddress(flagName, value)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

var errEmptyTimestamp = errors.New("timestamp must not be empty")

// parseTimestamp accepts unix seconds, RFC 3339, or a duration relative to
// now such as "+72h" or "-1h".
func parseTimestamp(value string, now time.Time) (int64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, errEmptyTimestamp
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		if d, err := time.ParseDuration(s); err == nil {
			return now.Add(d).Unix(), nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return secs, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: want unix seconds, RFC 3339 or a relative duration", s)
	}
	return t.Unix(), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
