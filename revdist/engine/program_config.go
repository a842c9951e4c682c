package engine

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezerofoundation/doublezero-solana-sub000/bitmap"
	"github.com/doublezerofoundation/doublezero-solana-sub000/fixedpoint"
	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
)

// InitializeProgram stamps a freshly-allocated ProgramConfig account. Freshness (the account
// not already existing) is the host runtime's job — a zeroed ProgramConfig reaching this
// method is what "fresh" means here.
func (p *Processor) InitializeProgram(cfg *revdist.ProgramConfig, bumpSeed uint8) error {
	*cfg = revdist.ProgramConfig{
		BumpSeed: bumpSeed,
		Flags:    bitmap.Flags(0).Set(revdist.ProgramConfigFlagIsPaused, true),
	}
	p.log.Info("program initialized", "bump_seed", bumpSeed)
	return nil
}

// SetAdmin sets ProgramConfig.AdminKey. Authorization (that the caller is the program's
// upgrade authority) is enforced by the host transaction's signer requirements outside this
// package's scope — the engine only records the new key.
func (p *Processor) SetAdmin(cfg *revdist.ProgramConfig, newAdmin solana.PublicKey) error {
	p.log.Info("admin set", "new_admin", newAdmin)
	cfg.AdminKey = newAdmin
	return nil
}

// ConfigureProgram applies one tagged setting from ConfigureProgramSetting, requiring signer
// to match cfg.AdminKey.
func (p *Processor) ConfigureProgram(cfg *revdist.ProgramConfig, signer solana.PublicKey, setting revdist.ConfigureProgramSetting) error {
	if err := p.authorize(signer, cfg.AdminKey, "admin_key"); err != nil {
		return err
	}
	switch setting.Tag {
	case revdist.ConfigureProgramTagPauseUnpause:
		if setting.Pause && setting.Unpause {
			return fmt.Errorf("%w: pause and unpause both set", ErrFlagConflict)
		}
		if setting.Pause {
			cfg.Flags = cfg.Flags.Set(revdist.ProgramConfigFlagIsPaused, true)
		}
		if setting.Unpause {
			cfg.Flags = cfg.Flags.Set(revdist.ProgramConfigFlagIsPaused, false)
		}
	case revdist.ConfigureProgramTagAdminKey:
		cfg.AdminKey = setting.AdminKey
	case revdist.ConfigureProgramTagDebtAccountantKey:
		cfg.DebtAccountantKey = setting.DebtAccountantKey
	case revdist.ConfigureProgramTagRewardsAccountantKey:
		cfg.RewardsAccountantKey = setting.RewardsAccountantKey
	case revdist.ConfigureProgramTagContributorManagerKey:
		cfg.ContributorManagerKey = setting.ContributorManagerKey
	case revdist.ConfigureProgramTagDZLedgerSentinelKey:
		cfg.DZLedgerSentinelKey = setting.DZLedgerSentinelKey
	case revdist.ConfigureProgramTagSOL2ZSwapProgramID:
		cfg.SOL2ZSwapProgramID = setting.SOL2ZSwapProgramID
	case revdist.ConfigureProgramTagFeeParameters:
		cfg.DistributionParameters.SolanaValidatorFeeParameters = setting.FeeParameters
	case revdist.ConfigureProgramTagRelayParameters:
		cfg.RelayParameters = setting.RelayParameters
	case revdist.ConfigureProgramTagGracePeriods:
		cfg.DistributionParameters.CalculationGracePeriodMinutes = setting.CalculationGraceMin
		cfg.DistributionParameters.InitializationGracePeriodMinutes = setting.InitGraceMin
	case revdist.ConfigureProgramTagMinimumEpochDurations:
		cfg.DistributionParameters.MinimumEpochDurationToFinalizeRewards = setting.MinEpochFinalize
		cfg.DistributionParameters.MinimumEpochDurationToRecoverDebt = setting.MinEpochRecover
	case revdist.ConfigureProgramTagCommunityBurnRate:
		return p.configureCommunityBurnRate(cfg, setting)
	case revdist.ConfigureProgramTagDebtWriteOffActivationEpoch:
		cfg.DebtWriteOffFeatureActivationEpoch = fixedpoint.DoubleZeroEpoch(setting.DebtWriteOffActivationEpoch)
	default:
		return fmt.Errorf("%w: unknown configure-program tag %d", ErrOutOfRange, setting.Tag)
	}
	return nil
}

func (p *Processor) configureCommunityBurnRate(cfg *revdist.ProgramConfig, setting revdist.ConfigureProgramSetting) error {
	cbr := &cfg.DistributionParameters.CommunityBurnRateParameters
	if setting.BurnRateInitial != nil {
		if cfg.NextCompletedDZEpoch != 0 {
			return fmt.Errorf("%w: initial burn rate may only be set before the first distribution", ErrOutOfRange)
		}
		cbr.CachedNextBurnRate = fixedpoint.UnitShare32(*setting.BurnRateInitial)
	}
	return cbr.CheckedUpdate(
		fixedpoint.UnitShare32(setting.BurnRateLimit),
		fixedpoint.EpochDuration(setting.BurnRateToIncreasing),
		fixedpoint.EpochDuration(setting.BurnRateToLimit),
	)
}
