package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"assembly/crypto"
)

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string, stderr io.Writer) bool {
	if err := fs.Parse(args); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(stderr, "Error: unexpected positional arguments")
		return false
	}
	return true
}

func runKeygen(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("keygen", stderr)
	var out string
	var force bool
	fs.StringVar(&out, "out", "", "path of the keypair file to write")
	fs.BoolVar(&force, "force", false, "overwrite an existing file")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	if strings.TrimSpace(out) == "" {
		fmt.Fprintln(stderr, "Error: --out is required")
		return 1
	}
	if _, err := os.Stat(out); err == nil && !force {
		fmt.Fprintf(stderr, "Error: %s exists; pass --force to overwrite\n", out)
		return 1
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := crypto.SaveToKeystore(out, key); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, key.Address().String())
	return 0
}

func runCreateMint(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("create-mint", stderr)
	var mintKeypair, mintAuthority, freezeAuthority string
	var decimals uint8
	fs.StringVar(&mintKeypair, "mint-keypair", "", "keypair whose address becomes the mint")
	fs.Uint8Var(&decimals, "decimals", 6, "decimal places of the mint")
	fs.StringVar(&mintAuthority, "mint-authority", "", "address allowed to mint (empty for a fixed supply)")
	fs.StringVar(&freezeAuthority, "freeze-authority", "", "freeze authority address")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		key, err := loadKeypair("mint-keypair", mintKeypair)
		if err != nil {
			return err
		}
		authority, err := parseOptionalAddress("mint-authority", mintAuthority)
		if err != nil {
			return err
		}
		freeze, err := parseOptionalAddress("freeze-authority", freezeAuthority)
		if err != nil {
			return err
		}
		mint, err := a.exec.CreateMint(ctx, a.signers(key), key.Address(), decimals, authority, freeze)
		if err != nil {
			return err
		}
		return writeJSON(stdout, mint)
	})
}

func runCreateATA(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("create-ata", stderr)
	var owner, mint string
	fs.StringVar(&owner, "owner", "", "owner of the account")
	fs.StringVar(&mint, "mint", "", "mint of the account")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		ownerAddr, err := parseAddress("owner", owner)
		if err != nil {
			return err
		}
		mintAddr, err := parseAddress("mint", mint)
		if err != nil {
			return err
		}
		acc, err := a.exec.CreateAssociatedAccount(ctx, a.signers(), ownerAddr, mintAddr)
		if err != nil {
			return err
		}
		return writeJSON(stdout, acc)
	})
}

func runMintTo(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("mint-to", stderr)
	var mint, to, owner, authorityKeypair string
	var amount uint64
	fs.StringVar(&mint, "mint", "", "mint to issue")
	fs.StringVar(&to, "to", "", "destination token account")
	fs.StringVar(&owner, "owner", "", "credit the associated account of this owner, created when missing")
	fs.StringVar(&authorityKeypair, "authority-keypair", "", "mint authority keypair")
	fs.Uint64Var(&amount, "amount", 0, "amount in base units")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		mintAddr, err := parseAddress("mint", mint)
		if err != nil {
			return err
		}
		authority, err := loadKeypair("authority-keypair", authorityKeypair)
		if err != nil {
			return err
		}
		var dest crypto.Address
		switch {
		case to != "" && owner != "":
			return fmt.Errorf("--to and --owner are mutually exclusive")
		case owner != "":
			ownerAddr, err := parseAddress("owner", owner)
			if err != nil {
				return err
			}
			acc, err := a.exec.CreateAssociatedAccount(ctx, a.signers(), ownerAddr, mintAddr)
			if err != nil {
				return err
			}
			dest = acc.Address
		default:
			if dest, err = parseAddress("to", to); err != nil {
				return err
			}
		}
		if err := a.exec.MintTo(ctx, a.signers(authority), mintAddr, dest, authority.Address(), amount); err != nil {
			return err
		}
		acc, err := a.exec.TokenAccount(dest)
		if err != nil {
			return err
		}
		return writeJSON(stdout, acc)
	})
}
