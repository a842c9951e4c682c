package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// splAssociatedTokenAccountProgramID is the well-known SPL Associated Token Account program,
// not re-exported by gagliardetto/solana-go under a named constant the way SystemProgramID
// and TokenProgramID are.
var splAssociatedTokenAccountProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

func newATACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ata",
		Short: "Manage associated token accounts for the 2Z mint",
	}
	cmd.AddCommand(newATACreateCmd(), newATAFetchCmd())
	return cmd
}

func newATACreateCmd() *cobra.Command {
	var mintStr string
	var ownerStr string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the associated token account for an owner and mint, idempotently",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, _, _, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			mint, err := solana.PublicKeyFromBase58(mintStr)
			if err != nil {
				return fmt.Errorf("invalid --mint: %w", err)
			}
			owner := executor.Signer()
			if ownerStr != "" {
				owner, err = solana.PublicKeyFromBase58(ownerStr)
				if err != nil {
					return fmt.Errorf("invalid --owner: %w", err)
				}
			}
			ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
			if err != nil {
				return fmt.Errorf("deriving associated token address: %w", err)
			}
			ix := newCreateAssociatedTokenAccountIdempotentInstruction(executor.Signer(), owner, mint, ata)
			ctx, cancel := cmdContext()
			defer cancel()
			sig, _, err := executor.ExecuteTransaction(ctx, []solana.Instruction{ix})
			if err != nil {
				return err
			}
			fmt.Println("associated token account:", ata)
			fmt.Println("signature:", sig)
			return nil
		},
	}
	cmd.Flags().StringVar(&mintStr, "mint", "", "base58 public key of the token mint (required)")
	cmd.Flags().StringVar(&ownerStr, "owner", "", "base58 public key of the account owner (defaults to the signer)")
	_ = cmd.MarkFlagRequired("mint")
	return cmd
}

func newATAFetchCmd() *cobra.Command {
	var mintStr, ownerStr string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the derived associated token account address for an owner and mint",
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := solana.PublicKeyFromBase58(mintStr)
			if err != nil {
				return fmt.Errorf("invalid --mint: %w", err)
			}
			owner, err := solana.PublicKeyFromBase58(ownerStr)
			if err != nil {
				return fmt.Errorf("invalid --owner: %w", err)
			}
			ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
			if err != nil {
				return fmt.Errorf("deriving associated token address: %w", err)
			}
			fmt.Println(ata)
			return nil
		},
	}
	cmd.Flags().StringVar(&mintStr, "mint", "", "base58 public key of the token mint (required)")
	cmd.Flags().StringVar(&ownerStr, "owner", "", "base58 public key of the account owner (required)")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

// newCreateAssociatedTokenAccountIdempotentInstruction builds the SPL "CreateIdempotent"
// associated-token-account instruction: a single 0x01 data byte, accounts
// [payer(signer,writable), ata(writable), owner, mint, systemProgram, tokenProgram].
func newCreateAssociatedTokenAccountIdempotentInstruction(payer, owner, mint, ata solana.PublicKey) solana.Instruction {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(ata, true, false),
		solana.NewAccountMeta(owner, false, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}
	return solana.NewInstruction(splAssociatedTokenAccountProgramID, accounts, []byte{0x01})
}
