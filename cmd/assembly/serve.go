package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"assembly/rpc"
)

func runServe(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("serve", stderr)
	var addr string
	var perMinute float64
	var burst int
	fs.StringVar(&addr, "addr", "", "listen address (defaults to the configured RPCAddress)")
	fs.Float64Var(&perMinute, "rate-limit", 0, "queries per minute allowed per client, 0 disables limiting")
	fs.IntVar(&burst, "burst", 20, "burst size for --rate-limit")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		if addr == "" {
			addr = a.cfg.RPCAddress
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		var opts []rpc.Option
		if perMinute > 0 {
			opts = append(opts, rpc.WithRateLimit(rpc.RateLimit{RequestsPerMinute: perMinute, Burst: burst}))
		}
		server := rpc.NewServer(a.exec, a.events, a.logger, opts...)
		if err := server.ListenAndServe(ctx, addr); err != nil {
			return err
		}
		a.logger.Info("query API stopped", slog.String("address", addr))
		return nil
	})
}
