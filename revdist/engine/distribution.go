package engine

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezerofoundation/doublezero-solana-sub000/bitmap"
	"github.com/doublezerofoundation/doublezero-solana-sub000/fixedpoint"
	"github.com/doublezerofoundation/doublezero-solana-sub000/merkle"
	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
)

// zeroFeeParameters is the sentinel "not yet configured" value InitializeDistribution rejects.
var zeroFeeParameters revdist.SolanaValidatorFeeParameters

// InitializeDistribution materializes Distribution[cfg.NextCompletedDZEpoch], snapshots the
// live fee parameters and community burn rate, advances the CBR ramp, sweeps the Journal's
// front prepaid entry if eligible, and increments the epoch counter. dist must point at a
// freshly-allocated, zeroed Distribution account.
func (p *Processor) InitializeDistribution(cfg *revdist.ProgramConfig, j *revdist.Journal, dist *revdist.Distribution, signer solana.PublicKey, bumpSeed uint8, now int64) error {
	if err := p.authorize(signer, cfg.DebtAccountantKey, "debt_accountant_key"); err != nil {
		return err
	}
	if cfg.Flags.Has(revdist.ProgramConfigFlagIsPaused) {
		return ErrPaused
	}
	if cfg.DistributionParameters.SolanaValidatorFeeParameters == zeroFeeParameters {
		return fmt.Errorf("%w: solana validator fee parameters not configured", ErrMissingDependency)
	}
	graceSeconds := int64(cfg.DistributionParameters.InitializationGracePeriodMinutes) * 60
	if now < int64(cfg.LastInitializedDistributionTimestamp)+graceSeconds {
		return fmt.Errorf("%w: initialization grace period not elapsed", ErrTooEarly)
	}

	epoch := cfg.NextCompletedDZEpoch
	*dist = revdist.Distribution{
		DZEpoch:  epoch,
		BumpSeed: bumpSeed,
	}
	src := cfg.DistributionParameters.SolanaValidatorFeeParameters
	dist.SolanaValidatorFeeParameters.BaseBlockRewardsPct = src.BaseBlockRewardsPct
	dist.SolanaValidatorFeeParameters.PriorityBlockRewardsPct = src.PriorityBlockRewardsPct
	dist.SolanaValidatorFeeParameters.InflationRewardsPct = src.InflationRewardsPct
	dist.SolanaValidatorFeeParameters.JitoTipsPct = src.JitoTipsPct
	dist.SolanaValidatorFeeParameters.FixedSOLAmount = src.FixedSOLAmount
	dist.CommunityBurnRate = cfg.DistributionParameters.CommunityBurnRateParameters.CheckedCompute()
	dist.DistributeRewardsRelayLamports = cfg.RelayParameters.DistributeRewardsLamports
	dist.CalculationAllowedTimestamp = uint32(now + int64(cfg.DistributionParameters.CalculationGracePeriodMinutes)*60)

	p.SweepFrontToDistribution(j, dist, epoch)

	cfg.LastInitializedDistributionTimestamp = uint32(now)
	cfg.NextCompletedDZEpoch++

	if p.metrics != nil {
		p.metrics.DistributionsInitialized.Inc()
		p.metrics.CommunityBurnRate.Set(float64(dist.CommunityBurnRate))
	}
	p.log.Info("distribution initialized", "epoch", epoch, "community_burn_rate", dist.CommunityBurnRate)
	return nil
}

// ConfigureDistributionDebt writes the debt accountant's commitment, overwritable until
// finalized.
func (p *Processor) ConfigureDistributionDebt(cfg *revdist.ProgramConfig, dist *revdist.Distribution, signer solana.PublicKey, totalValidators uint32, totalDebt uint64, root [32]byte) error {
	if err := p.authorize(signer, cfg.DebtAccountantKey, "debt_accountant_key"); err != nil {
		return err
	}
	if dist.Flags.Has(revdist.DistributionFlagDebtCalculationFinalized) {
		return ErrAlreadyFinalized
	}
	dist.TotalSolanaValidators = totalValidators
	dist.TotalSolanaValidatorDebt = totalDebt
	dist.SolanaValidatorDebtMerkleRoot = root
	return nil
}

// FinalizeDistributionDebt locks the debt commitment and allocates the processed-debt bitmap.
func (p *Processor) FinalizeDistributionDebt(cfg *revdist.ProgramConfig, dist *revdist.Distribution, tail []byte, signer solana.PublicKey) ([]byte, error) {
	if err := p.authorize(signer, cfg.DebtAccountantKey, "debt_accountant_key"); err != nil {
		return tail, err
	}
	if dist.Flags.Has(revdist.DistributionFlagDebtCalculationFinalized) {
		return tail, ErrAlreadyFinalized
	}
	tail = dist.AllocateRange(tail, revdist.BitmapProcessedDebt, dist.TotalSolanaValidators)
	dist.Flags = dist.Flags.Set(revdist.DistributionFlagDebtCalculationFinalized, true)
	return tail, nil
}

// EnableSolanaValidatorDebtWriteOff allocates the written-off bitmap once debt is finalized,
// the calculation grace period has elapsed, and the write-off feature is activated.
func (p *Processor) EnableSolanaValidatorDebtWriteOff(cfg *revdist.ProgramConfig, dist *revdist.Distribution, tail []byte, signer solana.PublicKey, now int64) ([]byte, error) {
	if err := p.authorize(signer, cfg.DebtAccountantKey, "debt_accountant_key"); err != nil {
		return tail, err
	}
	if !dist.Flags.Has(revdist.DistributionFlagDebtCalculationFinalized) {
		return tail, ErrNotFinalized
	}
	if now < int64(dist.CalculationAllowedTimestamp) {
		return tail, ErrTooEarly
	}
	if !cfg.WriteOffFeatureActivated() {
		return tail, ErrFeatureNotActivated
	}
	if dist.Flags.Has(revdist.DistributionFlagSolanaValidatorDebtWriteOffOn) {
		return tail, ErrAlreadyFinalized
	}
	tail = dist.AllocateRange(tail, revdist.BitmapWrittenOff, dist.TotalSolanaValidators)
	dist.Flags = dist.Flags.Set(revdist.DistributionFlagSolanaValidatorDebtWriteOffOn, true)
	return tail, nil
}

// EnableErroneousSolanaValidatorDebt allocates the erroneous bitmap under the same
// authority/preconditions as write-off.
func (p *Processor) EnableErroneousSolanaValidatorDebt(cfg *revdist.ProgramConfig, dist *revdist.Distribution, tail []byte, signer solana.PublicKey, now int64) ([]byte, error) {
	if err := p.authorize(signer, cfg.DebtAccountantKey, "debt_accountant_key"); err != nil {
		return tail, err
	}
	if !dist.Flags.Has(revdist.DistributionFlagDebtCalculationFinalized) {
		return tail, ErrNotFinalized
	}
	if now < int64(dist.CalculationAllowedTimestamp) {
		return tail, ErrTooEarly
	}
	if !cfg.WriteOffFeatureActivated() {
		return tail, ErrFeatureNotActivated
	}
	if dist.Flags.Has(revdist.DistributionFlagErroneousSolanaValidatorDebtOn) {
		return tail, ErrAlreadyFinalized
	}
	tail = dist.AllocateRange(tail, revdist.BitmapErroneous, dist.TotalSolanaValidators)
	dist.Flags = dist.Flags.Set(revdist.DistributionFlagErroneousSolanaValidatorDebtOn, true)
	return tail, nil
}

// ConfigureDistributionRewards writes the rewards accountant's commitment, overwritable until
// finalized.
func (p *Processor) ConfigureDistributionRewards(cfg *revdist.ProgramConfig, dist *revdist.Distribution, signer solana.PublicKey, totalContributors uint32, root [32]byte) error {
	if err := p.authorize(signer, cfg.RewardsAccountantKey, "rewards_accountant_key"); err != nil {
		return err
	}
	if dist.Flags.Has(revdist.DistributionFlagRewardsCalculationFinalized) {
		return ErrAlreadyFinalized
	}
	dist.TotalContributors = totalContributors
	dist.RewardsMerkleRoot = root
	return nil
}

// FinalizeDistributionRewards locks the rewards commitment and allocates the processed-rewards
// bitmap, requiring the minimum epoch duration to have elapsed since this distribution's epoch.
func (p *Processor) FinalizeDistributionRewards(cfg *revdist.ProgramConfig, dist *revdist.Distribution, tail []byte, signer solana.PublicKey) ([]byte, error) {
	if err := p.authorize(signer, cfg.RewardsAccountantKey, "rewards_accountant_key"); err != nil {
		return tail, err
	}
	if !dist.Flags.Has(revdist.DistributionFlagDebtCalculationFinalized) {
		return tail, ErrNotFinalized
	}
	if dist.Flags.Has(revdist.DistributionFlagRewardsCalculationFinalized) {
		return tail, ErrAlreadyFinalized
	}
	minDuration := fixedpoint.EpochDuration(cfg.DistributionParameters.MinimumEpochDurationToFinalizeRewards)
	if cfg.NextCompletedDZEpoch < dist.DZEpoch.SaturatingAddDuration(minDuration) {
		return tail, ErrTooEarly
	}
	tail = dist.AllocateRange(tail, revdist.BitmapProcessedRewards, dist.TotalContributors)
	dist.Flags = dist.Flags.Set(revdist.DistributionFlagRewardsCalculationFinalized, true)
	return tail, nil
}

// PaySolanaValidatorDebt verifies the leaf against the committed debt root, checks the
// processed bitmap, and moves exactly amount from the validator's deposit escrow into the
// journal. depositLamportsAboveRent is the deposit account's spendable balance (lamports minus
// rent exemption), supplied by the caller since rent-exemption math is a host-chain property
// this package doesn't model directly.
func (p *Processor) PaySolanaValidatorDebt(dist *revdist.Distribution, tail []byte, deposit *revdist.SolanaValidatorDeposit, j *revdist.Journal, depositLamportsAboveRent uint64, nodeID solana.PublicKey, amount uint64, proof merkle.Proof) error {
	leaf := revdist.SolanaValidatorDebtLeaf{NodeID: nodeID, Amount: amount}
	if err := verifyDebtLeaf(dist.SolanaValidatorDebtMerkleRoot, leaf, proof); err != nil {
		return err
	}
	bm := dist.Bitmap(tail, revdist.BitmapProcessedDebt)
	if bm.Get(proof.LeafIndex) {
		return fmt.Errorf("%w: leaf %d", ErrAlreadyProcessed, proof.LeafIndex)
	}
	if depositLamportsAboveRent < amount {
		return ErrInsufficientFunds
	}
	bm.Set(proof.LeafIndex)
	dist.SolanaValidatorPaymentsCount++
	dist.CollectedSolanaValidatorPayments += amount
	j.TotalSOLBalance += amount
	if p.metrics != nil {
		p.metrics.DebtPaymentsProcessed.Inc()
	}
	return nil
}

func verifyDebtLeaf(root [32]byte, leaf revdist.SolanaValidatorDebtLeaf, proof merkle.Proof) error {
	leafBytes := append(append([]byte{}, leaf.NodeID.Bytes()...), u64LE(leaf.Amount)...)
	if err := merkle.Verify(merkle.PrefixSolanaValidatorDebt, leafBytes, proof, merkle.Hash(root)); err != nil {
		return fmt.Errorf("%w: %v", kindErr(InvalidMerkleRoot, "solana validator debt"), err)
	}
	return nil
}

func u64LE(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// WriteOffSolanaValidatorDebt moves a leaf from pending to written-off on currentDist, marking
// it processed so it can never be paid, and records the loss on writeOffDist (which may be the
// same distribution or a later one, per spec's "windfall epoch" pattern).
func (p *Processor) WriteOffSolanaValidatorDebt(cfg *revdist.ProgramConfig, currentDist *revdist.Distribution, currentTail []byte, writeOffDist *revdist.Distribution, deposit *revdist.SolanaValidatorDeposit, signer solana.PublicKey, leafIndex uint32, amount uint64) error {
	if err := p.authorize(signer, cfg.DebtAccountantKey, "debt_accountant_key"); err != nil {
		return err
	}
	if !currentDist.Flags.Has(revdist.DistributionFlagDebtCalculationFinalized) {
		return ErrNotFinalized
	}
	if !currentDist.Flags.Has(revdist.DistributionFlagSolanaValidatorDebtWriteOffOn) {
		return ErrFeatureNotActivated
	}
	processed := currentDist.Bitmap(currentTail, revdist.BitmapProcessedDebt)
	writtenOff := currentDist.Bitmap(currentTail, revdist.BitmapWrittenOff)
	if processed.Get(leafIndex) {
		return fmt.Errorf("%w: leaf %d", ErrAlreadyProcessed, leafIndex)
	}
	if writtenOff.Get(leafIndex) {
		return fmt.Errorf("%w: leaf %d", ErrAlreadyProcessed, leafIndex)
	}
	writtenOff.Set(leafIndex)
	processed.Set(leafIndex)
	currentDist.SolanaValidatorDebtWriteOffCount++
	writeOffDist.UncollectibleSOLDebt += amount
	deposit.WrittenOffSOLDebt += amount
	if p.metrics != nil {
		p.metrics.DebtWriteOffsProcessed.Inc()
	}
	return nil
}

// ReclassifyBadSolanaValidatorDebt toggles the erroneous bit for a written-off leaf and mirrors
// the amount onto both the distribution and the deposit's running erroneous totals. toggled-on
// and toggled-off are both legal: the second call undoes the first (see scenario S4).
func (p *Processor) ReclassifyBadSolanaValidatorDebt(cfg *revdist.ProgramConfig, dist *revdist.Distribution, tail []byte, deposit *revdist.SolanaValidatorDeposit, signer solana.PublicKey, leafIndex uint32, amount uint64) error {
	if err := p.authorize(signer, cfg.DebtAccountantKey, "debt_accountant_key"); err != nil {
		return err
	}
	if !dist.Flags.Has(revdist.DistributionFlagErroneousSolanaValidatorDebtOn) {
		return ErrFeatureNotActivated
	}
	writtenOff := dist.Bitmap(tail, revdist.BitmapWrittenOff)
	if !writtenOff.Get(leafIndex) {
		return ErrNotWrittenOff
	}
	erroneous := dist.Bitmap(tail, revdist.BitmapErroneous)
	if erroneous.Get(leafIndex) {
		erroneous.Clear(leafIndex)
		dist.ErroneousSOLDebt -= amount
		deposit.ErroneousSOLDebt -= amount
		return nil
	}
	erroneous.Set(leafIndex)
	dist.ErroneousSOLDebt += amount
	deposit.ErroneousSOLDebt += amount
	return nil
}

// RecoverBadSolanaValidatorDebt transfers amount from the validator's deposit into the journal,
// clears the written-off bit on currentDist, and records the windfall on windfallDist.
func (p *Processor) RecoverBadSolanaValidatorDebt(cfg *revdist.ProgramConfig, currentDist *revdist.Distribution, currentTail []byte, windfallDist *revdist.Distribution, deposit *revdist.SolanaValidatorDeposit, j *revdist.Journal, signer solana.PublicKey, leafIndex uint32, amount uint64) error {
	if err := p.authorize(signer, cfg.DebtAccountantKey, "debt_accountant_key"); err != nil {
		return err
	}
	writtenOff := currentDist.Bitmap(currentTail, revdist.BitmapWrittenOff)
	if !writtenOff.Get(leafIndex) {
		return ErrNotWrittenOff
	}
	erroneous := currentDist.Bitmap(currentTail, revdist.BitmapErroneous)
	if erroneous.Get(leafIndex) {
		return ErrAlreadyRecovered
	}
	if !windfallDist.Flags.Has(revdist.DistributionFlagDebtCalculationFinalized) {
		return ErrNotFinalized
	}
	minDuration := fixedpoint.EpochDuration(cfg.DistributionParameters.MinimumEpochDurationToRecoverDebt)
	if cfg.NextCompletedDZEpoch < windfallDist.DZEpoch.SaturatingAddDuration(minDuration) {
		return ErrTooEarly
	}
	writtenOff.Clear(leafIndex)
	currentDist.UncollectibleSOLDebt -= amount
	windfallDist.RecoveredSOLDebt += amount
	currentDist.SolanaValidatorDebtRecoveryCount++
	deposit.RecoveredSOLDebt += amount
	j.TotalSOLBalance += amount
	if p.metrics != nil {
		p.metrics.DebtRecoveriesProcessed.Inc()
	}
	return nil
}

// ForgiveSolanaValidatorDebt marks a leaf processed on currentDist without payment (the
// pre-write-off-feature path), charging the loss to nextDist.
func (p *Processor) ForgiveSolanaValidatorDebt(cfg *revdist.ProgramConfig, currentDist *revdist.Distribution, currentTail []byte, nextDist *revdist.Distribution, signer solana.PublicKey, leafIndex uint32, amount uint64) error {
	if err := p.authorize(signer, cfg.DebtAccountantKey, "debt_accountant_key"); err != nil {
		return err
	}
	if !currentDist.Flags.Has(revdist.DistributionFlagDebtCalculationFinalized) || !nextDist.Flags.Has(revdist.DistributionFlagDebtCalculationFinalized) {
		return ErrNotFinalized
	}
	if nextDist.DZEpoch <= currentDist.DZEpoch {
		return ErrWrongEpoch
	}
	processed := currentDist.Bitmap(currentTail, revdist.BitmapProcessedDebt)
	if processed.Get(leafIndex) {
		return fmt.Errorf("%w: leaf %d", ErrAlreadyProcessed, leafIndex)
	}
	processed.Set(leafIndex)
	nextDist.UncollectibleSOLDebt += amount
	return nil
}

// checkedTotalSOLDebt is the amount of SOL SweepDistributionTokens requires be swapped before
// sweeping: the validator debt committed for this epoch, plus whatever was recovered against
// it, minus whatever proved uncollectible.
func checkedTotalSOLDebt(dist *revdist.Distribution) uint64 {
	return dist.TotalSolanaValidatorDebt + dist.RecoveredSOLDebt - dist.UncollectibleSOLDebt
}

// SweepDistributionTokens requires rewards finalized and strict sequential sweeping via
// journal.NextDZEpochToSweepTokens; it moves the distribution's owed 2Z (already delivered by
// the external swap venue into the journal's swap-destination balance, represented here by
// convertedAmount) into the distribution's own accounting.
func (p *Processor) SweepDistributionTokens(j *revdist.Journal, dist *revdist.Distribution, convertedAmount uint64) error {
	if !dist.Flags.Has(revdist.DistributionFlagRewardsCalculationFinalized) {
		return ErrNotFinalized
	}
	if dist.DZEpoch != j.NextDZEpochToSweepTokens {
		return fmt.Errorf("%w: can only sweep tokens for DZ epoch %d", ErrWrongEpoch, j.NextDZEpochToSweepTokens)
	}
	owed := checkedTotalSOLDebt(dist)
	if j.SwappedSOLAmount < owed {
		return ErrInsufficientSwapped
	}
	j.SwappedSOLAmount -= owed
	j.Swap2ZDestinationBalance -= convertedAmount
	dist.Collected2ZConvertedFromSOL += convertedAmount
	dist.Flags = dist.Flags.Set(revdist.DistributionFlagHasSweptTokens, true)
	j.NextDZEpochToSweepTokens++
	return nil
}

// DistributeRewardsInput bundles DistributeRewards' instruction payload.
type DistributeRewardsInput struct {
	UnitShare        fixedpoint.UnitShare32
	EconomicBurnRate fixedpoint.UnitShare32
	Proof            merkle.Proof
	Recipients       []revdist.RewardRecipient
}

// RecipientPayout is one recipient's exact 2Z payout from a DistributeRewards call.
type RecipientPayout struct {
	RecipientKey solana.PublicKey
	Amount       uint64
}

// DistributeRewards verifies the contributor's reward-share leaf, computes the burn/distribute
// split, and returns each recipient's exact payout with no rounding leakage: amounts are
// computed with MulScalarRounded and the running remainder is folded into the last recipient.
func (p *Processor) DistributeRewards(dist *revdist.Distribution, tail []byte, contributor *revdist.ContributorRewards, contributorKey solana.PublicKey, in DistributeRewardsInput) ([]RecipientPayout, uint64, error) {
	leaf := revdist.RewardShareLeaf{
		ContributorKey: contributorKey,
		UnitShare:      uint32(in.UnitShare),
		RemainingBytes: revdist.PackRewardShareRemainingBytes(uint32(in.EconomicBurnRate), false),
	}

	leafBytes := append(append([]byte{}, leaf.ContributorKey.Bytes()...), u32LE(leaf.UnitShare)...)
	leafBytes = append(leafBytes, leaf.RemainingBytes[:]...)
	if err := merkle.Verify(merkle.PrefixRewardShare, leafBytes, in.Proof, merkle.Hash(dist.RewardsMerkleRoot)); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", kindErr(InvalidMerkleRoot, "reward share"), err)
	}

	bm := dist.Bitmap(tail, revdist.BitmapProcessedRewards)
	if bm.Get(in.Proof.LeafIndex) {
		return nil, 0, fmt.Errorf("%w: leaf %d", ErrAlreadyProcessed, in.Proof.LeafIndex)
	}

	if contributor.ServiceKey != contributorKey {
		return nil, 0, ErrMismatchedRecipients
	}
	active := contributor.ActiveRecipients()
	if len(in.Recipients) != len(active) {
		return nil, 0, ErrMismatchedRecipients
	}
	for i, r := range in.Recipients {
		if r.RecipientKey != active[i].RecipientKey || r.BasisPoints != active[i].BasisPoints {
			return nil, 0, ErrMismatchedRecipients
		}
	}

	total2Z := dist.CollectedPrepaid2ZPayments + dist.Collected2ZConvertedFromSOL
	shareAmount := in.UnitShare.MulScalar(total2Z)
	burnRate := in.EconomicBurnRate.Max(dist.CommunityBurnRate)
	burnAmount := burnRate.MulScalar(shareAmount)
	distributeAmount := shareAmount - burnAmount

	payouts := make([]RecipientPayout, len(active))
	var distributed uint64
	for i, r := range active {
		amt := fixedpoint.UnitShare16(r.BasisPoints).MulScalarRounded(distributeAmount)
		payouts[i] = RecipientPayout{RecipientKey: r.RecipientKey, Amount: amt}
		distributed += amt
	}
	if distributed != distributeAmount {
		// Fold the rounding remainder into the last recipient so the split is exact, per
		// invariant 6 (recipient share closure).
		last := len(payouts) - 1
		if distributed > distributeAmount {
			payouts[last].Amount -= distributed - distributeAmount
		} else {
			payouts[last].Amount += distributeAmount - distributed
		}
	}

	bm.Set(in.Proof.LeafIndex)
	dist.DistributedRewardsCount++
	dist.Distributed2ZAmount += distributeAmount
	dist.Burned2ZAmount += burnAmount
	if p.metrics != nil {
		p.metrics.RewardsDistributed.Inc()
	}
	return payouts, burnAmount, nil
}

func u32LE(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
