package engine

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
)

// totalBasisPoints is the sum every ContributorRewards split table must add up to exactly.
const totalBasisPoints = 10_000

// InitializeContributorRewards creates a contributor's split table, owned by the contributor
// manager until a rewards manager takes it over.
func (p *Processor) InitializeContributorRewards(cfg *revdist.ProgramConfig, cr *revdist.ContributorRewards, signer, serviceKey solana.PublicKey) error {
	if err := p.authorize(signer, cfg.ContributorManagerKey, "contributor_manager_key"); err != nil {
		return err
	}
	*cr = revdist.ContributorRewards{ServiceKey: serviceKey}
	return nil
}

// SetRewardsManager assigns the key allowed to call ConfigureContributorRewards going
// forward. It is signed by the contributor manager and permanently refused once
// IsSetRewardsManagerBlocked is set.
func (p *Processor) SetRewardsManager(cfg *revdist.ProgramConfig, cr *revdist.ContributorRewards, signer, newManager solana.PublicKey) error {
	if err := p.authorize(signer, cfg.ContributorManagerKey, "contributor_manager_key"); err != nil {
		return err
	}
	if cr.IsSetRewardsManagerBlocked() {
		return fmt.Errorf("%w: rewards manager is locked for this contributor", ErrFlagConflict)
	}
	cr.RewardsManagerKey = newManager
	return nil
}

// ConfigureContributorRewards applies one tagged setting, signed by the contributor's
// rewards manager.
func (p *Processor) ConfigureContributorRewards(cr *revdist.ContributorRewards, signer solana.PublicKey, setting revdist.ConfigureContributorRewardsSetting) error {
	if err := p.authorize(signer, cr.RewardsManagerKey, "rewards_manager_key"); err != nil {
		return err
	}
	switch setting.Tag {
	case revdist.ConfigureContributorRewardsTagRecipients:
		return setRecipients(cr, setting.Recipients)
	case revdist.ConfigureContributorRewardsTagIsSetRewardsManagerBlocked:
		if !setting.IsSetRewardsManagerBlocked {
			return fmt.Errorf("%w: set-rewards-manager lock cannot be cleared once set", ErrFlagConflict)
		}
		cr.Flags = cr.Flags.Set(revdist.ContributorRewardsFlagSetManagerBlocked, true)
		return nil
	default:
		return fmt.Errorf("%w: unknown configure-contributor-rewards tag %d", ErrOutOfRange, setting.Tag)
	}
}

func setRecipients(cr *revdist.ContributorRewards, recipients []revdist.RewardRecipientData) error {
	if len(recipients) == 0 {
		return fmt.Errorf("%w: recipients must not be empty", ErrOutOfRange)
	}
	if len(recipients) > len(cr.Recipients) {
		return fmt.Errorf("%w: %d recipients exceeds capacity %d", ErrOutOfRange, len(recipients), len(cr.Recipients))
	}
	seen := make(map[solana.PublicKey]struct{}, len(recipients))
	var sum uint32
	for _, r := range recipients {
		if _, dup := seen[r.RecipientKey]; dup {
			return fmt.Errorf("%w: duplicate recipient %s", ErrMismatchedRecipients, r.RecipientKey)
		}
		seen[r.RecipientKey] = struct{}{}
		sum += uint32(r.BasisPoints)
	}
	if sum != totalBasisPoints {
		return fmt.Errorf("%w: basis points sum to %d, want %d", ErrOutOfRange, sum, totalBasisPoints)
	}

	var table [32]revdist.RewardRecipient
	for i, r := range recipients {
		table[i] = revdist.RewardRecipient{RecipientKey: r.RecipientKey, BasisPoints: r.BasisPoints}
	}
	cr.Recipients = table
	cr.RecipientCount = uint16(len(recipients))
	return nil
}
