package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"assembly/crypto"
	"assembly/native/distribution"
	"assembly/observability/logging"
)

// BudgetFile is the allocation file read by "budget allocate".
//
//	mint: <base58 mint>
//	allocations:
//	  - owner: <base58 owner>
//	    amount: 1000
type BudgetFile struct {
	Mint        string       `yaml:"mint"`
	Allocations []Allocation `yaml:"allocations"`
}

// Allocation credits Amount to the associated account of Owner.
type Allocation struct {
	Owner  string `yaml:"owner"`
	Amount uint64 `yaml:"amount"`
}

func loadBudgetFile(path string) (*BudgetFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file BudgetFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if strings.TrimSpace(file.Mint) == "" {
		return nil, fmt.Errorf("%s: mint is required", filepath.Base(path))
	}
	return &file, nil
}

func runBudgetCommand(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, budgetUsage())
		return 1
	}
	switch args[0] {
	case "session":
		return runBudgetSession(opts, args[1:], stdout, stderr)
	case "allocate":
		return runBudgetAllocate(opts, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown budget subcommand: %s\n", args[0])
		fmt.Fprintln(stderr, budgetUsage())
		return 1
	}
}

func budgetUsage() string {
	return `Usage:
  assembly budget session [--out path]
  assembly budget allocate --file allocations.yaml --session-keypair path`
}

// sessionInfo describes an allocation session and the mint authority derived
// from it.
type sessionInfo struct {
	ID                  string         `json:"id,omitempty"`
	Session             crypto.Address `json:"session"`
	Keypair             string         `json:"keypair,omitempty"`
	AllocationAuthority crypto.Address `json:"allocationAuthority"`
	Bump                uint8          `json:"bump"`
}

func runBudgetSession(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("budget session", stderr)
	var out string
	fs.StringVar(&out, "out", "", "keypair path (defaults to <DataDir>/sessions/<id>.json)")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		id := uuid.New()
		path := out
		if path == "" {
			path = filepath.Join(a.cfg.DataDir, "sessions", id.String()+".json")
		}
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return err
		}
		if err := crypto.SaveToKeystore(path, key); err != nil {
			return err
		}
		authority, bump, err := distribution.DeriveAllocationAuthority(a.exec.ProgramID(), key.Address())
		if err != nil {
			return err
		}
		a.logger.Info("allocation session created",
			logging.MaskField("session_keypair", path),
			logging.MaskField("session_id", id.String()))
		return writeJSON(stdout, sessionInfo{
			ID:                  id.String(),
			Session:             key.Address(),
			Keypair:             path,
			AllocationAuthority: authority,
			Bump:                bump,
		})
	})
}

func runBudgetAllocate(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("budget allocate", stderr)
	var file, sessionKeypair string
	fs.StringVar(&file, "file", "", "YAML allocation file")
	fs.StringVar(&sessionKeypair, "session-keypair", "", "keypair of the allocation session")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	if strings.TrimSpace(file) == "" {
		fmt.Fprintln(stderr, "Error: --file is required")
		return 1
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		budget, err := loadBudgetFile(file)
		if err != nil {
			return err
		}
		session, err := loadKeypair("session-keypair", sessionKeypair)
		if err != nil {
			return err
		}
		mint, err := crypto.DecodeAddress(budget.Mint)
		if err != nil {
			return fmt.Errorf("mint: %w", err)
		}
		authority, bump, err := distribution.DeriveAllocationAuthority(a.exec.ProgramID(), session.Address())
		if err != nil {
			return err
		}

		amounts := make([]uint64, 0, len(budget.Allocations))
		remaining := make([]crypto.Address, 0, 2*len(budget.Allocations))
		for i, alloc := range budget.Allocations {
			owner, err := crypto.DecodeAddress(alloc.Owner)
			if err != nil {
				return fmt.Errorf("allocation %d owner: %w", i, err)
			}
			account, err := a.exec.AssociatedAddress(owner, mint)
			if err != nil {
				return err
			}
			amounts = append(amounts, alloc.Amount)
			remaining = append(remaining, account, owner)
		}

		err = a.exec.InitializeBudget(ctx, a.signers(session), distribution.InitializeBudgetAccounts{
			Payer:               a.payer.Address(),
			Session:             session.Address(),
			AllocationAuthority: authority,
			Mint:                mint,
			Remaining:           remaining,
		}, amounts, bump)
		if err != nil {
			return err
		}
		return writeJSON(stdout, sessionInfo{
			Session:             session.Address(),
			AllocationAuthority: authority,
			Bump:                bump,
		})
	})
}
