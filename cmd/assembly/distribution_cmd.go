package main

import (
	"context"
	"fmt"
	"io"

	"assembly/crypto"
	"assembly/native/distribution"
)

func runInitDistributor(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("init-distributor", stderr)
	var distMint, rewardMint, freezeKeypair, distEnd, redeemStart string
	fs.StringVar(&distMint, "dist-mint", "", "mint of the distributable token")
	fs.StringVar(&rewardMint, "reward-mint", "", "mint of the reward token")
	fs.StringVar(&freezeKeypair, "freeze-keypair", "", "freeze authority keypair for the grant mint")
	fs.StringVar(&distEnd, "dist-end", "", "end of the distribution period (unix, RFC 3339 or +duration)")
	fs.StringVar(&redeemStart, "redeem-start", "", "start of the redemption period (unix, RFC 3339 or +duration)")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		distMintAddr, err := parseAddress("dist-mint", distMint)
		if err != nil {
			return err
		}
		rewardMintAddr, err := parseAddress("reward-mint", rewardMint)
		if err != nil {
			return err
		}
		freeze, err := loadKeypair("freeze-keypair", freezeKeypair)
		if err != nil {
			return err
		}
		now := a.exec.Clock().Now()
		distEndTs, err := parseTimestamp(distEnd, now)
		if err != nil {
			return fmt.Errorf("--dist-end: %w", err)
		}
		redeemStartTs, err := parseTimestamp(redeemStart, now)
		if err != nil {
			return fmt.Errorf("--redeem-start: %w", err)
		}

		addrs, err := distribution.DeriveDistributorAddresses(a.exec.ProgramID(), distMintAddr, rewardMintAddr)
		if err != nil {
			return err
		}
		d, err := a.exec.InitializeDistributor(ctx, a.signers(freeze), distribution.InitializeDistributorAccounts{
			Payer:           a.payer.Address(),
			FreezeAuthority: freeze.Address(),
			DistMint:        distMintAddr,
			RewardMint:      rewardMintAddr,
			Distributor:     addrs.Distributor,
			GrantMint:       addrs.GrantMint,
			RewardVault:     addrs.RewardVault,
		}, distribution.DistributorArgs{
			DistEndTs:     distEndTs,
			RedeemStartTs: redeemStartTs,
			Bumps:         addrs.Bumps,
		})
		if err != nil {
			return err
		}
		return writeJSON(stdout, d)
	})
}

func runInitGrant(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("init-grant", stderr)
	var distributor, recipient string
	fs.StringVar(&distributor, "distributor", "", "distributor address")
	fs.StringVar(&recipient, "recipient", "", "recipient address")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		distAddr, err := parseAddress("distributor", distributor)
		if err != nil {
			return err
		}
		recipientAddr, err := parseAddress("recipient", recipient)
		if err != nil {
			return err
		}
		view, err := a.exec.Distributor(distAddr)
		if err != nil {
			return err
		}
		grant, bump, err := distribution.DeriveGrant(a.exec.ProgramID(), distAddr, recipientAddr)
		if err != nil {
			return err
		}
		g, err := a.exec.InitializeGrant(ctx, a.signers(), distribution.InitializeGrantAccounts{
			Payer:       a.payer.Address(),
			Recipient:   recipientAddr,
			Distributor: distAddr,
			GrantMint:   view.Distributor.GrantMint,
			Grant:       grant,
		}, bump)
		if err != nil {
			return err
		}
		return writeJSON(stdout, g)
	})
}

func runTransferGrant(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("transfer", stderr)
	var distributor, recipient, donorKeypair, donorToken string
	var amount uint64
	fs.StringVar(&distributor, "distributor", "", "distributor address")
	fs.StringVar(&recipient, "recipient", "", "recipient of the grant")
	fs.StringVar(&donorKeypair, "donor-keypair", "", "keypair owning the distributable tokens")
	fs.StringVar(&donorToken, "donor-token", "", "donor token account (defaults to the donor's associated account)")
	fs.Uint64Var(&amount, "amount", 0, "amount in base units")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		distAddr, err := parseAddress("distributor", distributor)
		if err != nil {
			return err
		}
		recipientAddr, err := parseAddress("recipient", recipient)
		if err != nil {
			return err
		}
		donor, err := loadKeypair("donor-keypair", donorKeypair)
		if err != nil {
			return err
		}
		view, err := a.exec.Distributor(distAddr)
		if err != nil {
			return err
		}
		d := view.Distributor
		var source crypto.Address
		if donorToken != "" {
			if source, err = parseAddress("donor-token", donorToken); err != nil {
				return err
			}
		} else if source, err = a.exec.AssociatedAddress(donor.Address(), d.DistMint); err != nil {
			return err
		}
		grant, _, err := distribution.DeriveGrant(a.exec.ProgramID(), distAddr, recipientAddr)
		if err != nil {
			return err
		}
		err = a.exec.TransferGrant(ctx, a.signers(donor), distribution.TransferGrantAccounts{
			Payer:          a.payer.Address(),
			DonorAuthority: donor.Address(),
			Recipient:      recipientAddr,
			Distributor:    distAddr,
			DistMint:       d.DistMint,
			DistToken:      source,
			GrantMint:      d.GrantMint,
			Grant:          grant,
		}, amount)
		if err != nil {
			return err
		}
		out, err := a.exec.Grant(grant)
		if err != nil {
			return err
		}
		return writeJSON(stdout, out)
	})
}

func runRedeemGrant(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("redeem", stderr)
	var distributor, recipientKeypair, dest string
	fs.StringVar(&distributor, "distributor", "", "distributor address")
	fs.StringVar(&recipientKeypair, "recipient-keypair", "", "keypair of the grant recipient")
	fs.StringVar(&dest, "dest", "", "reward token account (defaults to the recipient's associated account, created when missing)")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		distAddr, err := parseAddress("distributor", distributor)
		if err != nil {
			return err
		}
		recipient, err := loadKeypair("recipient-keypair", recipientKeypair)
		if err != nil {
			return err
		}
		view, err := a.exec.Distributor(distAddr)
		if err != nil {
			return err
		}
		d := view.Distributor
		var destination crypto.Address
		if dest != "" {
			if destination, err = parseAddress("dest", dest); err != nil {
				return err
			}
		} else {
			acc, err := a.exec.CreateAssociatedAccount(ctx, a.signers(), recipient.Address(), d.RewardMint)
			if err != nil {
				return err
			}
			destination = acc.Address
		}
		grant, _, err := distribution.DeriveGrant(a.exec.ProgramID(), distAddr, recipient.Address())
		if err != nil {
			return err
		}
		amount, err := a.exec.RedeemGrant(ctx, a.signers(recipient), distribution.RedeemGrantAccounts{
			Payer:          a.payer.Address(),
			Recipient:      recipient.Address(),
			Distributor:    distAddr,
			GrantMint:      d.GrantMint,
			Grant:          grant,
			RewardMint:     d.RewardMint,
			RewardVault:    d.RewardVault,
			RecipientToken: destination,
		})
		if err != nil {
			return err
		}
		return writeJSON(stdout, struct {
			Grant       crypto.Address `json:"grant"`
			Destination crypto.Address `json:"destination"`
			Redeemed    uint64         `json:"redeemed"`
		}{grant, destination, amount})
	})
}

func runShowCommand(opts globalOptions, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: assembly show <distributor|grants|grant|account|mint|program> [address]")
		return 1
	}
	kind := args[0]
	var addrArg string
	if kind != "program" && kind != "distributors" {
		if len(args) != 2 {
			fmt.Fprintf(stderr, "Error: show %s takes one address\n", kind)
			return 1
		}
		addrArg = args[1]
	}
	return withApp(opts, stderr, func(ctx context.Context, a *app) error {
		var addr crypto.Address
		if addrArg != "" {
			var err error
			if addr, err = crypto.DecodeAddress(addrArg); err != nil {
				return err
			}
		}
		var (
			out interface{}
			err error
		)
		switch kind {
		case "program":
			out = struct {
				ProgramID crypto.Address `json:"programId"`
				Payer     crypto.Address `json:"payer"`
				Paused    []string       `json:"paused"`
			}{a.exec.ProgramID(), a.payer.Address(), a.pauses.Modules()}
		case "distributors":
			out, err = a.exec.Distributors()
		case "distributor":
			out, err = a.exec.Distributor(addr)
		case "grants":
			out, err = a.exec.Grants(addr)
		case "grant":
			out, err = a.exec.Grant(addr)
		case "account":
			out, err = a.exec.TokenAccount(addr)
		case "mint":
			out, err = a.exec.Mint(addr)
		default:
			return fmt.Errorf("unknown show target %q", kind)
		}
		if err != nil {
			return err
		}
		return writeJSON(stdout, out)
	})
}
