package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/doublezerofoundation/doublezero-solana-sub000/merkle"
	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
)

func newContributorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contributor",
		Short: "Manage a contributor's reward split table and claim distributed rewards",
	}
	cmd.AddCommand(
		newContributorInitializeCmd(),
		newContributorConfigureCmd(),
		newContributorComputeRewardsCmd(),
		newContributorFetchCmd(),
		newContributorClaimCmd(),
	)
	return cmd
}

func newContributorInitializeCmd() *cobra.Command {
	var serviceKeyStr string
	cmd := &cobra.Command{
		Use:   "initialize",
		Short: "Initialize a contributor's rewards account (signed by the contributor manager)",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, _, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			serviceKey, err := solana.PublicKeyFromBase58(serviceKeyStr)
			if err != nil {
				return fmt.Errorf("invalid --service-key: %w", err)
			}
			contributorRewardsPDA, _, err := revdist.DeriveContributorRewardsPDA(programID, serviceKey)
			if err != nil {
				return fmt.Errorf("deriving contributor rewards PDA: %w", err)
			}
			ix, err := revdist.NewInitializeContributorRewards(programID, executor.Signer(), executor.Signer(), contributorRewardsPDA, serviceKey, solana.SystemProgramID)
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()
			sig, _, err := executor.ExecuteTransaction(ctx, []solana.Instruction{ix})
			if err != nil {
				return err
			}
			fmt.Println("contributor rewards account:", contributorRewardsPDA)
			fmt.Println("signature:", sig)
			return nil
		},
	}
	cmd.Flags().StringVar(&serviceKeyStr, "service-key", "", "contributor's service key (required)")
	_ = cmd.MarkFlagRequired("service-key")
	return cmd
}

func newContributorConfigureCmd() *cobra.Command {
	var serviceKeyStr string
	var recipientSpecs []string
	var blockSetManager bool
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Set a contributor's recipient split table, or permanently lock its rewards manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, _, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			serviceKey, err := solana.PublicKeyFromBase58(serviceKeyStr)
			if err != nil {
				return fmt.Errorf("invalid --service-key: %w", err)
			}
			contributorRewardsPDA, _, err := revdist.DeriveContributorRewardsPDA(programID, serviceKey)
			if err != nil {
				return fmt.Errorf("deriving contributor rewards PDA: %w", err)
			}

			var setting revdist.ConfigureContributorRewardsSetting
			switch {
			case blockSetManager:
				setting = revdist.ConfigureContributorRewardsSetting{
					Tag:                        revdist.ConfigureContributorRewardsTagIsSetRewardsManagerBlocked,
					IsSetRewardsManagerBlocked: true,
				}
			case len(recipientSpecs) > 0:
				recipients, err := parseRecipientSpecs(recipientSpecs)
				if err != nil {
					return err
				}
				setting = revdist.ConfigureContributorRewardsSetting{
					Tag:        revdist.ConfigureContributorRewardsTagRecipients,
					Recipients: recipients,
				}
			default:
				return fmt.Errorf("specify --recipient at least once, or --block-set-manager")
			}

			ix, err := revdist.NewConfigureContributorRewards(programID, executor.Signer(), contributorRewardsPDA, setting)
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
	cmd.Flags().StringVar(&serviceKeyStr, "service-key", "", "contributor's service key (required)")
	cmd.Flags().StringSliceVar(&recipientSpecs, "recipient", nil, "recipient:basis_points pair, repeatable; basis points across all recipients must sum to 10000")
	cmd.Flags().BoolVar(&blockSetManager, "block-set-manager", false, "permanently disable further set-rewards-manager calls for this contributor")
	_ = cmd.MarkFlagRequired("service-key")
	return cmd
}

func parseRecipientSpecs(specs []string) ([]revdist.RewardRecipientData, error) {
	recipients := make([]revdist.RewardRecipientData, 0, len(specs))
	for _, spec := range specs {
		parts := strings.SplitN(spec, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("recipient %q must be key:basis_points", spec)
		}
		key, err := solana.PublicKeyFromBase58(parts[0])
		if err != nil {
			return nil, fmt.Errorf("recipient %q: invalid key: %w", spec, err)
		}
		bps, err := strconv.ParseUint(parts[1], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("recipient %q: invalid basis points: %w", spec, err)
		}
		recipients = append(recipients, revdist.RewardRecipientData{RecipientKey: key, BasisPoints: uint16(bps)})
	}
	return recipients, nil
}

func newContributorComputeRewardsCmd() *cobra.Command {
	var epoch uint64
	var serviceKeyStr string
	cmd := &cobra.Command{
		Use:   "compute-rewards",
		Short: "Look up a contributor's off-chain-computed reward attribution for an epoch",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			serviceKey, err := solana.PublicKeyFromBase58(serviceKeyStr)
			if err != nil {
				return fmt.Errorf("invalid --service-key: %w", err)
			}
			ctx, cancel := cmdContext()
			defer cancel()
			output, err := client.FetchRewardShares(ctx, epoch)
			if err != nil {
				return fmt.Errorf("fetching reward shares for epoch %d: %w", epoch, err)
			}
			for _, detail := range output.Rewards {
				if detail.ContributorKey.Equals(serviceKey) {
					fmt.Printf("epoch:            %d\n", epoch)
					fmt.Printf("contributor:      %s\n", detail.ContributorKey)
					fmt.Printf("proportion:       %d (of 1_000_000_000)\n", detail.Proportion)
					fmt.Printf("total unit shares: %d\n", output.TotalUnitShares)
					return nil
				}
			}
			return fmt.Errorf("no reward attribution found for %s in epoch %d", serviceKey, epoch)
		},
	}
	cmd.Flags().Uint64Var(&epoch, "epoch", 0, "DZ epoch (required)")
	cmd.Flags().StringVar(&serviceKeyStr, "service-key", "", "contributor's service key (required)")
	_ = cmd.MarkFlagRequired("epoch")
	_ = cmd.MarkFlagRequired("service-key")
	return cmd
}

func newContributorFetchCmd() *cobra.Command {
	var serviceKeyStr string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print a contributor's rewards account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			serviceKey, err := solana.PublicKeyFromBase58(serviceKeyStr)
			if err != nil {
				return fmt.Errorf("invalid --service-key: %w", err)
			}
			ctx, cancel := cmdContext()
			defer cancel()
			rewards, err := client.FetchContributorRewards(ctx, serviceKey)
			if err != nil {
				return err
			}
			fmt.Println("service key:         ", rewards.ServiceKey)
			fmt.Println("rewards manager:     ", rewards.RewardsManagerKey)
			fmt.Println("set-manager blocked: ", rewards.IsSetRewardsManagerBlocked())

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Recipient", "Basis Points"})
			for _, r := range rewards.ActiveRecipients() {
				table.Append([]string{r.RecipientKey.String(), strconv.Itoa(int(r.BasisPoints))})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&serviceKeyStr, "service-key", "", "contributor's service key (required)")
	_ = cmd.MarkFlagRequired("service-key")
	return cmd
}

func newContributorClaimCmd() *cobra.Command {
	var epoch uint64
	var unitShare uint32
	var economicBurnRate uint32
	var leafIndex uint32
	var proofHex []string
	var relayAccountStr string

	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Submit DistributeRewards for a contributor whose reward share has been committed",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, client, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := cmdContext()
			defer cancel()
			config, err := client.FetchConfig(ctx)
			if err != nil {
				return fmt.Errorf("fetching config: %w", err)
			}
			serviceKey := executor.Signer()
			rewards, err := client.FetchContributorRewards(ctx, serviceKey)
			if err != nil {
				return fmt.Errorf("fetching contributor rewards: %w", err)
			}

			distributionPDA, _, err := revdist.DeriveDistributionPDA(programID, epoch)
			if err != nil {
				return fmt.Errorf("deriving distribution PDA: %w", err)
			}
			contributorRewardsPDA, _, err := revdist.DeriveContributorRewardsPDA(programID, serviceKey)
			if err != nil {
				return fmt.Errorf("deriving contributor rewards PDA: %w", err)
			}
			relayAccount := config.AdminKey
			if relayAccountStr != "" {
				relayAccount, err = solana.PublicKeyFromBase58(relayAccountStr)
				if err != nil {
					return fmt.Errorf("invalid --relay-account: %w", err)
				}
			}

			siblings, err := parseProofSiblings(proofHex)
			if err != nil {
				return err
			}
			proof := revdist.MerkleProofData{Siblings: siblings, LeafIndex: leafIndex}

			dist, err := client.FetchDistribution(ctx, epoch)
			if err != nil {
				return fmt.Errorf("fetching distribution for epoch %d: %w", epoch, err)
			}
			remainingBytes := revdist.PackRewardShareRemainingBytes(economicBurnRate, false)
			leaf := revdist.RewardShareLeaf{ContributorKey: serviceKey, UnitShare: unitShare, RemainingBytes: remainingBytes}
			if err := verifyRewardShareProof(leaf, siblings, leafIndex, dist.RewardsMerkleRoot); err != nil {
				return fmt.Errorf("proof does not resolve to the committed rewards root, refusing to submit: %w", err)
			}

			recipients := make([]revdist.DistributeRewardsRecipient, 0, len(rewards.ActiveRecipients()))
			for _, r := range rewards.ActiveRecipients() {
				recipients = append(recipients, revdist.DistributeRewardsRecipient{RecipientKey: r.RecipientKey, BasisPoints: r.BasisPoints})
			}

			ix, err := revdist.NewDistributeRewards(programID, executor.Signer(), distributionPDA, contributorRewardsPDA, relayAccount, unitShare, economicBurnRate, proof, recipients)
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
	cmd.Flags().Uint32Var(&unitShare, "unit-share", 0, "this contributor's committed unit share (required)")
	cmd.Flags().Uint32Var(&economicBurnRate, "economic-burn-rate", 0, "this contributor's committed economic burn rate floor")
	cmd.Flags().Uint32Var(&leafIndex, "leaf-index", 0, "leaf index of this contributor's committed reward share")
	cmd.Flags().StringSliceVar(&proofHex, "proof", nil, "hex-encoded Merkle proof sibling hash, repeatable, root-to-leaf order reversed (leaf-to-root)")
	cmd.Flags().StringVar(&relayAccountStr, "relay-account", "", "relay account to receive the payout lamports (defaults to the program admin)")
	_ = cmd.MarkFlagRequired("epoch")
	_ = cmd.MarkFlagRequired("unit-share")
	return cmd
}

func parseProofSiblings(hexes []string) ([][32]byte, error) {
	siblings := make([][32]byte, len(hexes))
	for i, h := range hexes {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("proof sibling %d: %w", i, err)
		}
		if len(b) != 32 {
			return nil, fmt.Errorf("proof sibling %d: expected 32 bytes, got %d", i, len(b))
		}
		copy(siblings[i][:], b)
	}
	return siblings, nil
}

// verifyRewardShareProof confirms a claim's proof resolves to the distribution's committed
// rewards root before it is ever submitted on-chain, so a bad --proof fails fast locally
// instead of burning a transaction.
func verifyRewardShareProof(leaf revdist.RewardShareLeaf, siblings [][32]byte, leafIndex uint32, root [32]byte) error {
	leafBytes := append(append([]byte{}, leaf.ContributorKey.Bytes()...), u32LE(leaf.UnitShare)...)
	leafBytes = append(leafBytes, leaf.RemainingBytes[:]...)
	hashes := make([]merkle.Hash, len(siblings))
	for i, s := range siblings {
		hashes[i] = merkle.Hash(s)
	}
	return merkle.Verify(merkle.PrefixRewardShare, leafBytes, merkle.Proof{Siblings: hashes, LeafIndex: leafIndex}, merkle.Hash(root))
}

func u32LE(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
