// Package cli implements the revdist-cli command tree: a thin wrapper over the revdist
// client, instruction builders, and executor that lets an operator drive the revenue
// distribution program from a terminal.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
)

type ExitCode int

const (
	exitCodeSuccess ExitCode = 0
	exitCodeError   ExitCode = 1
)

// Run builds and executes the root command, returning the process exit code.
func Run() ExitCode {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "revdist-cli",
		Short: "Operator CLI for the DoubleZero SOL/2Z revenue distribution program.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set debug logging level")

	var env string
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "mainnet-beta", "network environment (mainnet-beta, testnet, devnet, localnet)")

	var programID string
	rootCmd.PersistentFlags().StringVar(&programID, "program-id", revdist.ProgramID.String(), "revenue distribution program ID")

	var keypairPath string
	rootCmd.PersistentFlags().StringVarP(&keypairPath, "keypair", "k", "", "path to a solana-keygen JSON keypair file, required for any subcommand that submits a transaction")

	rootCmd.AddCommand(
		newAdminCmd(),
		newATACmd(),
		newContributorCmd(),
		newValidatorCmd(),
		newPrepaidCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// envFlags reads the persistent flags shared by every subcommand.
func envFlags(cmd *cobra.Command) (env, programID, keypairPath string, verbose bool, err error) {
	root := cmd.Root().PersistentFlags()
	if env, err = root.GetString("env"); err != nil {
		return
	}
	if programID, err = root.GetString("program-id"); err != nil {
		return
	}
	if keypairPath, err = root.GetString("keypair"); err != nil {
		return
	}
	verbose, err = root.GetBool("verbose")
	return
}

// normalizeEnv maps the "mainnet" alias accepted elsewhere in the repo's config package onto
// revdist's own "mainnet-beta" key, so --env mainnet behaves the same here as everywhere else.
func normalizeEnv(env string) string {
	if env == "mainnet" {
		return "mainnet-beta"
	}
	return env
}

// rpcURLForEnv resolves an environment moniker to its Solana RPC URL, following revdist's
// own environment table rather than the repo-wide config package's (whose NetworkConfig
// carries no revenue-distribution program ID to match against).
func rpcURLForEnv(env string) (string, error) {
	url, ok := revdist.SolanaRPCURLs[normalizeEnv(env)]
	if !ok {
		return "", fmt.Errorf("unknown environment %q", env)
	}
	return url, nil
}

// ledgerRPCURLForEnv resolves an environment moniker to its DZ Ledger RPC URL.
func ledgerRPCURLForEnv(env string) (string, error) {
	url, ok := revdist.LedgerRPCURLs[normalizeEnv(env)]
	if !ok {
		return "", fmt.Errorf("unknown environment %q", env)
	}
	return url, nil
}

// newClient builds a read-only revdist client for the given environment and program ID, wired
// to a ledger record client so commands that read off-chain reward/debt ledger records work.
func newClient(cmd *cobra.Command) (*revdist.Client, solana.PublicKey, error) {
	env, programIDStr, _, _, err := envFlags(cmd)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	rpcURL, err := rpcURLForEnv(env)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	ledgerURL, err := ledgerRPCURLForEnv(env)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	programID, err := solana.PublicKeyFromBase58(programIDStr)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("invalid program ID: %w", err)
	}
	rpcClient := solanarpc.New(rpcURL)
	ledgerClient := revdist.NewRPCLedgerClient(solanarpc.New(ledgerURL))
	return revdist.NewWithLedger(rpcClient, programID, ledgerClient), programID, nil
}

// newExecutor builds a transaction executor from the --keypair flag, failing fast if it is
// unset since every write subcommand needs a signer.
func newExecutor(cmd *cobra.Command) (*revdist.Executor, *revdist.Client, solana.PublicKey, error) {
	env, programIDStr, keypairPath, verbose, err := envFlags(cmd)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	if keypairPath == "" {
		return nil, nil, solana.PublicKey{}, fmt.Errorf("--keypair is required for this command")
	}
	signer, err := solana.PrivateKeyFromSolanaKeygenFile(keypairPath)
	if err != nil {
		return nil, nil, solana.PublicKey{}, fmt.Errorf("loading keypair: %w", err)
	}
	rpcURL, err := rpcURLForEnv(env)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	ledgerURL, err := ledgerRPCURLForEnv(env)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	programID, err := solana.PublicKeyFromBase58(programIDStr)
	if err != nil {
		return nil, nil, solana.PublicKey{}, fmt.Errorf("invalid program ID: %w", err)
	}
	rpcClient := solanarpc.New(rpcURL)
	ledgerClient := revdist.NewRPCLedgerClient(solanarpc.New(ledgerURL))
	log := newLogger(verbose)
	executor := revdist.NewExecutor(log, rpcClient, &signer, programID)
	client := revdist.NewWithLedger(rpcClient, programID, ledgerClient)
	return executor, client, programID, nil
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}
