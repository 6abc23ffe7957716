package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// globalOptions are accepted before the subcommand name.
type globalOptions struct {
	configPath string
	dataDir    string
	logLevel   string
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("assembly", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	var opts globalOptions
	fs.StringVar(&opts.configPath, "config", "./config.toml", "path to the configuration file")
	fs.StringVar(&opts.dataDir, "data-dir", "", "override the configured data directory")
	fs.StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	fs.Usage = func() { fmt.Fprintln(stderr, usage()) }
	if err := fs.Parse(args); err != nil {
		return 1
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(stderr, usage())
		return 1
	}

	command, rest := rest[0], rest[1:]
	switch command {
	case "keygen":
		return runKeygen(rest, stdout, stderr)
	case "serve":
		return runServe(opts, rest, stdout, stderr)
	case "create-mint":
		return runCreateMint(opts, rest, stdout, stderr)
	case "create-ata":
		return runCreateATA(opts, rest, stdout, stderr)
	case "mint-to":
		return runMintTo(opts, rest, stdout, stderr)
	case "init-distributor":
		return runInitDistributor(opts, rest, stdout, stderr)
	case "init-grant":
		return runInitGrant(opts, rest, stdout, stderr)
	case "transfer":
		return runTransferGrant(opts, rest, stdout, stderr)
	case "redeem":
		return runRedeemGrant(opts, rest, stdout, stderr)
	case "budget":
		return runBudgetCommand(opts, rest, stdout, stderr)
	case "show":
		return runShowCommand(opts, rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage())
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		fmt.Fprintln(stderr, usage())
		return 1
	}
}

func usage() string {
	return `Usage: assembly [--config path] [--data-dir dir] [--log-level level] <command> [flags]

Commands:
  keygen            write a new keypair file
  serve             serve the read-only query API
  create-mint       create a mint at a keypair address
  create-ata        create an associated token account
  mint-to           mint tokens as the mint authority
  init-distributor  create a distributor for a dist/reward mint pair
  init-grant        open a grant for a recipient
  transfer          convert distributable tokens into a recipient's grant
  redeem            redeem a grant for reward tokens
  budget            session | allocate: mint budget allocations
  show              distributor | grants | grant | account | mint | program`
}
