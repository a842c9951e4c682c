package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/doublezerofoundation/doublezero-solana-sub000/merkle"
	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
)

func newValidatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validator",
		Short: "Look up a Solana validator's network fee debt and pay it down",
	}
	cmd.AddCommand(
		newValidatorComputeRevenueCmd(),
		newValidatorRequestAccessCmd(),
		newValidatorPayFeeCmd(),
	)
	return cmd
}

func newValidatorComputeRevenueCmd() *cobra.Command {
	var epoch uint64
	var nodeIDStr string
	cmd := &cobra.Command{
		Use:   "compute-revenue",
		Short: "Look up a validator's off-chain-computed debt for an epoch",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			nodeID, err := solana.PublicKeyFromBase58(nodeIDStr)
			if err != nil {
				return fmt.Errorf("invalid --node-id: %w", err)
			}
			ctx, cancel := cmdContext()
			defer cancel()
			debts, err := client.FetchValidatorDebts(ctx, epoch)
			if err != nil {
				return fmt.Errorf("fetching validator debts for epoch %d: %w", epoch, err)
			}
			for _, d := range debts.Debts {
				if d.NodeID.Equals(nodeID) {
					fmt.Printf("epoch:   %d\n", epoch)
					fmt.Printf("node id: %s\n", d.NodeID)
					fmt.Printf("debt:    %d lamports\n", d.Amount)
					return nil
				}
			}
			return fmt.Errorf("no debt entry found for %s in epoch %d", nodeID, epoch)
		},
	}
	cmd.Flags().Uint64Var(&epoch, "epoch", 0, "DZ epoch (required)")
	cmd.Flags().StringVar(&nodeIDStr, "node-id", "", "validator identity public key (required)")
	_ = cmd.MarkFlagRequired("epoch")
	_ = cmd.MarkFlagRequired("node-id")
	return cmd
}

func newValidatorRequestAccessCmd() *cobra.Command {
	var nodeIDStr string
	cmd := &cobra.Command{
		Use:   "request-access",
		Short: "Initialize the escrow deposit account a validator pays its debt from",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, _, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			nodeID := executor.Signer()
			if nodeIDStr != "" {
				nodeID, err = solana.PublicKeyFromBase58(nodeIDStr)
				if err != nil {
					return fmt.Errorf("invalid --node-id: %w", err)
				}
			}
			depositPDA, _, err := revdist.DeriveValidatorDepositPDA(programID, nodeID)
			if err != nil {
				return fmt.Errorf("deriving validator deposit PDA: %w", err)
			}
			ix, err := revdist.NewInitializeSolanaValidatorDeposit(programID, executor.Signer(), depositPDA, nodeID, solana.SystemProgramID)
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()
			sig, _, err := executor.ExecuteTransaction(ctx, []solana.Instruction{ix})
			if err != nil {
				return err
			}
			fmt.Println("validator deposit account:", depositPDA)
			fmt.Println("signature:", sig)
			return nil
		},
	}
	cmd.Flags().StringVar(&nodeIDStr, "node-id", "", "validator identity public key (defaults to the signer)")
	return cmd
}

func newValidatorPayFeeCmd() *cobra.Command {
	var epoch uint64
	var nodeIDStr string
	var amount uint64
	var leafIndex uint32
	var proofHex []string

	cmd := &cobra.Command{
		Use:   "pay-fee",
		Short: "Pay down a validator's committed debt against a Merkle proof",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, client, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			nodeID, err := solana.PublicKeyFromBase58(nodeIDStr)
			if err != nil {
				return fmt.Errorf("invalid --node-id: %w", err)
			}

			ctx, cancel := cmdContext()
			defer cancel()
			dist, err := client.FetchDistribution(ctx, epoch)
			if err != nil {
				return fmt.Errorf("fetching distribution for epoch %d: %w", epoch, err)
			}

			siblings, err := parseProofSiblings(proofHex)
			if err != nil {
				return err
			}
			leafBytes := append(append([]byte{}, nodeID.Bytes()...), u64LE(amount)...)
			hashes := make([]merkle.Hash, len(siblings))
			for i, s := range siblings {
				hashes[i] = merkle.Hash(s)
			}
			if err := merkle.Verify(merkle.PrefixSolanaValidatorDebt, leafBytes, merkle.Proof{Siblings: hashes, LeafIndex: leafIndex}, merkle.Hash(dist.SolanaValidatorDebtMerkleRoot)); err != nil {
				return fmt.Errorf("proof does not resolve to the committed debt root, refusing to submit: %w", err)
			}

			distributionPDA, _, err := revdist.DeriveDistributionPDA(programID, epoch)
			if err != nil {
				return fmt.Errorf("deriving distribution PDA: %w", err)
			}
			depositPDA, _, err := revdist.DeriveValidatorDepositPDA(programID, nodeID)
			if err != nil {
				return fmt.Errorf("deriving validator deposit PDA: %w", err)
			}
			journalPDA, _, err := revdist.DeriveJournalPDA(programID)
			if err != nil {
				return fmt.Errorf("deriving journal PDA: %w", err)
			}

			proof := revdist.MerkleProofData{Siblings: siblings, LeafIndex: leafIndex}
			ix, err := revdist.NewPaySolanaValidatorDebt(programID, executor.Signer(), distributionPDA, depositPDA, journalPDA, nodeID, amount, proof)
			if err != nil {
				return err
			}
			sig, _, err := executor.ExecuteTransaction(ctx, []solana.Instruction{ix})
			if err != nil {
				return err
			}
			fmt.Println("signature:", sig)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&epoch, "epoch", 0, "DZ epoch (required)")
	cmd.Flags().StringVar(&nodeIDStr, "node-id", "", "validator identity public key (required)")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "committed debt amount in lamports (required)")
	cmd.Flags().Uint32Var(&leafIndex, "leaf-index", 0, "leaf index of this validator's committed debt")
	cmd.Flags().StringSliceVar(&proofHex, "proof", nil, "hex-encoded Merkle proof sibling hash, repeatable, leaf-to-root order")
	_ = cmd.MarkFlagRequired("epoch")
	_ = cmd.MarkFlagRequired("node-id")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func u64LE(v uint64) []byte {
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return b
}
