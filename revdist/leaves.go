package revdist

import "github.com/gagliardetto/solana-go"

// SolanaValidatorDebtLeaf is one Merkle leaf of a Distribution's debt tree, committing a
// validator's owed amount for that epoch. Prefix "solana_validator_debt".
type SolanaValidatorDebtLeaf struct {
	NodeID solana.PublicKey
	Amount uint64
}

// ComputedSolanaValidatorDebts is the off-chain ledger record the debt accountant publishes
// before calling ConfigureDistributionDebt; it is the preimage of the committed Merkle root.
type ComputedSolanaValidatorDebts struct {
	FirstSolanaEpoch uint64
	LastSolanaEpoch  uint64
	Debts            []SolanaValidatorDebtLeaf
}

// rewardShareIsBlockedBit is the high bit of RewardShareLeaf's packed remaining-bytes word.
const rewardShareIsBlockedBit = 1 << 31

// rewardShareEconomicBurnRateMask covers the low 30 bits of the packed word.
const rewardShareEconomicBurnRateMask = (1 << 30) - 1

// RewardShareLeaf is one Merkle leaf of a Distribution's rewards tree. RemainingBytes packs,
// little-endian, the contributor's economic burn rate in the low 30 bits and an is-blocked
// flag in bit 31. Prefix "reward_share".
type RewardShareLeaf struct {
	ContributorKey solana.PublicKey
	UnitShare      uint32
	RemainingBytes [4]byte
}

// PackRewardShareRemainingBytes builds the little-endian packed word a RewardShareLeaf's
// RemainingBytes field carries: economicBurnRate in the low 30 bits, isBlocked in bit 31.
func PackRewardShareRemainingBytes(economicBurnRate uint32, isBlocked bool) [4]byte {
	packed := economicBurnRate & rewardShareEconomicBurnRateMask
	if isBlocked {
		packed |= rewardShareIsBlockedBit
	}
	return [4]byte{byte(packed), byte(packed >> 8), byte(packed >> 16), byte(packed >> 24)}
}

func (l RewardShareLeaf) packed() uint32 {
	return uint32(l.RemainingBytes[0]) | uint32(l.RemainingBytes[1])<<8 |
		uint32(l.RemainingBytes[2])<<16 | uint32(l.RemainingBytes[3])<<24
}

// EconomicBurnRate unpacks the per-contributor burn rate floor supplied by the rewards
// accountant, as a raw UnitShare32 value.
func (l RewardShareLeaf) EconomicBurnRate() uint32 {
	return l.packed() & rewardShareEconomicBurnRateMask
}

// IsBlocked reports whether this contributor's distribution is blocked this epoch.
func (l RewardShareLeaf) IsBlocked() bool {
	return l.packed()&rewardShareIsBlockedBit != 0
}

// ContributorRewardDetail is a leaf of the off-chain Shapley attribution tree, a 9-decimal
// proportion of total network rewards attributed to one contributor. Prefix
// "dz_contributor_rewards".
type ContributorRewardDetail struct {
	ContributorKey solana.PublicKey
	Proportion     uint32
}

// ShapleyOutputStorage is the off-chain ledger record the rewards accountant publishes
// before calling ConfigureDistributionRewards.
type ShapleyOutputStorage struct {
	Epoch           uint64
	TotalUnitShares uint64
	Rewards         []ContributorRewardDetail
}
