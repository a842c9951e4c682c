package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
)

func newPrepaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepaid",
		Short: "Manage prepaid connection accounts",
	}
	cmd.AddCommand(newPrepaidInitializeCmd(), newPrepaidLoadCmd())
	return cmd
}

func newPrepaidInitializeCmd() *cobra.Command {
	var userStr string
	cmd := &cobra.Command{
		Use:   "initialize",
		Short: "Create a prepaid connection account for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, _, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			user := executor.Signer()
			if userStr != "" {
				user, err = solana.PublicKeyFromBase58(userStr)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			connectionPDA, _, err := revdist.DerivePrepaidConnectionPDA(programID, user)
			if err != nil {
				return fmt.Errorf("deriving prepaid connection PDA: %w", err)
			}
			ix, err := revdist.NewInitializePrepaidConnection(programID, executor.Signer(), connectionPDA, user, solana.SystemProgramID)
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()
			sig, _, err := executor.ExecuteTransaction(ctx, []solana.Instruction{ix})
			if err != nil {
				return err
			}
			fmt.Println("prepaid connection account:", connectionPDA)
			fmt.Println("signature:", sig)
			return nil
		},
	}
	cmd.Flags().StringVar(&userStr, "user", "", "base58 public key of the connection's user (defaults to the signer)")
	return cmd
}

func newPrepaidLoadCmd() *cobra.Command {
	var userStr string
	var validThroughDZEpoch uint64
	var decimals uint8
	var costPerEpoch uint64

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Fund a prepaid connection for a number of DZ epochs at a fixed cost per epoch",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, _, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			user := executor.Signer()
			if userStr != "" {
				user, err = solana.PublicKeyFromBase58(userStr)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			journalPDA, _, err := revdist.DeriveJournalPDA(programID)
			if err != nil {
				return fmt.Errorf("deriving journal PDA: %w", err)
			}
			ix, err := revdist.NewLoadPrepaidConnection(programID, executor.Signer(), journalPDA, user, validThroughDZEpoch, decimals, costPerEpoch)
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()
			sig, _, err := executor.ExecuteTransaction(ctx, []solana.Instruction{ix})
			if err != nil {
				return err
			}
			fmt.Println("signature:", sig)
			return nil
		},
	}
	cmd.Flags().StringVar(&userStr, "user", "", "base58 public key of the connection's user (defaults to the signer)")
	cmd.Flags().Uint64Var(&validThroughDZEpoch, "valid-through-epoch", 0, "last DZ epoch this load keeps the connection funded through (required)")
	cmd.Flags().Uint8Var(&decimals, "decimals", 9, "decimal precision of --cost-per-epoch")
	cmd.Flags().Uint64Var(&costPerEpoch, "cost-per-epoch", 0, "2Z cost charged per epoch (required)")
	_ = cmd.MarkFlagRequired("valid-through-epoch")
	_ = cmd.MarkFlagRequired("cost-per-epoch")
	return cmd
}
