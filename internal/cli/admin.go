package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer the revenue distribution program's singleton configuration",
	}
	cmd.AddCommand(
		newAdminInitializeCmd(),
		newAdminSetAdminCmd(),
		newAdminConfigureCmd(),
		newAdminSetRewardsManagerCmd(),
		newAdminMigrateProgramAccountsCmd(),
	)
	return cmd
}

func newAdminInitializeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initialize",
		Short: "Initialize the program's singleton config account",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, _, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			admin := executor.Signer()
			configPDA, _, err := revdist.DeriveConfigPDA(programID)
			if err != nil {
				return fmt.Errorf("deriving config PDA: %w", err)
			}
			ix, err := revdist.NewInitializeProgram(programID, admin, configPDA, solana.SystemProgramID)
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
}

func newAdminSetAdminCmd() *cobra.Command {
	var newAdmin string
	cmd := &cobra.Command{
		Use:   "set-admin",
		Short: "Rotate the program admin (signed by the program's upgrade authority)",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, _, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			newAdminKey, err := solana.PublicKeyFromBase58(newAdmin)
			if err != nil {
				return fmt.Errorf("invalid --new-admin: %w", err)
			}
			configPDA, _, err := revdist.DeriveConfigPDA(programID)
			if err != nil {
				return fmt.Errorf("deriving config PDA: %w", err)
			}
			ix, err := revdist.NewSetAdmin(programID, executor.Signer(), configPDA, newAdminKey)
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
	cmd.Flags().StringVar(&newAdmin, "new-admin", "", "base58 public key of the new admin (required)")
	_ = cmd.MarkFlagRequired("new-admin")
	return cmd
}

func newAdminConfigureCmd() *cobra.Command {
	var pause, unpause bool
	var baseBlockPct, priorityBlockPct, inflationPct, jitoTipsPct string
	var fixedSOLAmount uint32

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Update one field of the program's live configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pause && unpause {
				return fmt.Errorf("--pause and --unpause are mutually exclusive")
			}
			executor, _, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			configPDA, _, err := revdist.DeriveConfigPDA(programID)
			if err != nil {
				return fmt.Errorf("deriving config PDA: %w", err)
			}

			var setting revdist.ConfigureProgramSetting
			switch {
			case pause || unpause:
				setting = revdist.ConfigureProgramSetting{
					Tag:     revdist.ConfigureProgramTagPauseUnpause,
					Pause:   pause,
					Unpause: unpause,
				}
			case baseBlockPct != "" || priorityBlockPct != "" || inflationPct != "" || jitoTipsPct != "":
				fee, err := parseFeeParameters(baseBlockPct, priorityBlockPct, inflationPct, jitoTipsPct, fixedSOLAmount)
				if err != nil {
					return err
				}
				setting = revdist.ConfigureProgramSetting{
					Tag:           revdist.ConfigureProgramTagFeeParameters,
					FeeParameters: fee,
				}
			default:
				return fmt.Errorf("no setting specified; see --help for available flags")
			}

			ix, err := revdist.NewConfigureProgram(programID, executor.Signer(), configPDA, setting)
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

	cmd.Flags().BoolVar(&pause, "pause", false, "pause the program")
	cmd.Flags().BoolVar(&unpause, "unpause", false, "unpause the program")
	cmd.Flags().StringVar(&baseBlockPct, "base-block-rewards-pct", "", "validator fee: base block rewards percentage (up to 2 decimals)")
	cmd.Flags().StringVar(&priorityBlockPct, "priority-block-rewards-pct", "", "validator fee: priority block rewards percentage (up to 2 decimals)")
	cmd.Flags().StringVar(&inflationPct, "inflation-rewards-pct", "", "validator fee: inflation rewards percentage (up to 2 decimals)")
	cmd.Flags().StringVar(&jitoTipsPct, "jito-tips-pct", "", "validator fee: Jito tips percentage (up to 2 decimals)")
	cmd.Flags().Uint32Var(&fixedSOLAmount, "fixed-sol-amount", 0, "validator fee: fixed lamport amount")
	return cmd
}

func parseFeeParameters(base, priority, inflation, jito string, fixedSOLAmount uint32) (revdist.SolanaValidatorFeeParameters, error) {
	var fee revdist.SolanaValidatorFeeParameters
	var err error
	if fee.BaseBlockRewardsPct, err = parseFeePercentage(orZero(base)); err != nil {
		return fee, fmt.Errorf("--base-block-rewards-pct: %w", err)
	}
	if fee.PriorityBlockRewardsPct, err = parseFeePercentage(orZero(priority)); err != nil {
		return fee, fmt.Errorf("--priority-block-rewards-pct: %w", err)
	}
	if fee.InflationRewardsPct, err = parseFeePercentage(orZero(inflation)); err != nil {
		return fee, fmt.Errorf("--inflation-rewards-pct: %w", err)
	}
	if fee.JitoTipsPct, err = parseFeePercentage(orZero(jito)); err != nil {
		return fee, fmt.Errorf("--jito-tips-pct: %w", err)
	}
	fee.FixedSOLAmount = fixedSOLAmount
	return fee, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func newAdminSetRewardsManagerCmd() *cobra.Command {
	var serviceKeyStr, newManagerStr string
	cmd := &cobra.Command{
		Use:   "set-rewards-manager",
		Short: "Rotate a contributor's rewards manager (signed by the contributor manager)",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, _, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			serviceKey, err := solana.PublicKeyFromBase58(serviceKeyStr)
			if err != nil {
				return fmt.Errorf("invalid --service-key: %w", err)
			}
			newManager, err := solana.PublicKeyFromBase58(newManagerStr)
			if err != nil {
				return fmt.Errorf("invalid --new-manager: %w", err)
			}
			contributorRewardsPDA, _, err := revdist.DeriveContributorRewardsPDA(programID, serviceKey)
			if err != nil {
				return fmt.Errorf("deriving contributor rewards PDA: %w", err)
			}
			ix, err := revdist.NewSetRewardsManager(programID, executor.Signer(), contributorRewardsPDA, newManager)
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
	cmd.Flags().StringVar(&newManagerStr, "new-manager", "", "base58 public key of the new rewards manager (required)")
	_ = cmd.MarkFlagRequired("service-key")
	_ = cmd.MarkFlagRequired("new-manager")
	return cmd
}

func newAdminMigrateProgramAccountsCmd() *cobra.Command {
	var targetStrs []string
	cmd := &cobra.Command{
		Use:   "migrate-program-accounts",
		Short: "Re-lay out accounts after a program upgrade adds fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, _, programID, err := newExecutor(cmd)
			if err != nil {
				return err
			}
			configPDA, _, err := revdist.DeriveConfigPDA(programID)
			if err != nil {
				return fmt.Errorf("deriving config PDA: %w", err)
			}
			targets := make([]solana.PublicKey, len(targetStrs))
			for i, s := range targetStrs {
				key, err := solana.PublicKeyFromBase58(s)
				if err != nil {
					return fmt.Errorf("invalid --target %q: %w", s, err)
				}
				targets[i] = key
			}
			ix, err := revdist.NewMigrateProgramAccounts(programID, executor.Signer(), configPDA, targets)
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
	cmd.Flags().StringSliceVar(&targetStrs, "target", nil, "account to migrate (repeatable)")
	return cmd
}
