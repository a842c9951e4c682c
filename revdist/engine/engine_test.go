package engine_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezerofoundation/doublezero-solana-sub000/fixedpoint"
	"github.com/doublezerofoundation/doublezero-solana-sub000/merkle"
	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist/engine"
)

func newProcessor() *engine.Processor {
	return engine.NewProcessor(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func u64LEBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func u32LEBytes(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// setupConfig builds a freshly initialized, unpaused ProgramConfig with the named authorities
// and a non-zero fee parameter set so InitializeDistribution's precondition is satisfied.
func setupConfig(admin, debtAcct, rewardsAcct, contribMgr, sentinel solana.PublicKey) *revdist.ProgramConfig {
	cfg := &revdist.ProgramConfig{
		AdminKey:              admin,
		DebtAccountantKey:     debtAcct,
		RewardsAccountantKey:  rewardsAcct,
		ContributorManagerKey: contribMgr,
		DZLedgerSentinelKey:   sentinel,
	}
	cfg.DistributionParameters.SolanaValidatorFeeParameters = revdist.SolanaValidatorFeeParameters{
		BaseBlockRewardsPct:     5000,
		PriorityBlockRewardsPct: 5000,
		InflationRewardsPct:     5000,
		JitoTipsPct:             5000,
		FixedSOLAmount:          0,
	}
	return cfg
}

// TestDistributionRoundTripPayAndDistribute exercises scenario S1: a validator pays its
// committed debt, the debt accountant finalizes both trees, rewards are distributed to a
// contributor's split table with an exact rounding closure, and tokens are swept in order.
func TestDistributionRoundTripPayAndDistribute(t *testing.T) {
	p := newProcessor()
	admin := solana.NewWallet().PublicKey()
	debtAcct := solana.NewWallet().PublicKey()
	rewardsAcct := solana.NewWallet().PublicKey()
	contribMgr := solana.NewWallet().PublicKey()
	sentinel := solana.NewWallet().PublicKey()
	cfg := setupConfig(admin, debtAcct, rewardsAcct, contribMgr, sentinel)

	journal := &revdist.Journal{}
	if err := p.InitializeJournal(journal, 1); err != nil {
		t.Fatalf("InitializeJournal: %v", err)
	}

	dist := &revdist.Distribution{}
	if err := p.InitializeDistribution(cfg, journal, dist, debtAcct, 1, 0); err != nil {
		t.Fatalf("InitializeDistribution: %v", err)
	}
	if cfg.NextCompletedDZEpoch != 1 {
		t.Fatalf("NextCompletedDZEpoch = %d, want 1", cfg.NextCompletedDZEpoch)
	}

	// One validator owes 1000 lamports of debt.
	nodeID := solana.NewWallet().PublicKey()
	debtLeaf := revdist.SolanaValidatorDebtLeaf{NodeID: nodeID, Amount: 1000}
	debtLeafBytes := append(append([]byte{}, debtLeaf.NodeID.Bytes()...), u64LEBytes(debtLeaf.Amount)...)
	debtTree := merkle.BuildTree(merkle.PrefixSolanaValidatorDebt, [][]byte{debtLeafBytes})
	debtRoot := debtTree.Root()

	if err := p.ConfigureDistributionDebt(cfg, dist, debtAcct, 1, 1000, [32]byte(debtRoot)); err != nil {
		t.Fatalf("ConfigureDistributionDebt: %v", err)
	}
	var tail []byte
	tail, err := p.FinalizeDistributionDebt(cfg, dist, tail, debtAcct)
	if err != nil {
		t.Fatalf("FinalizeDistributionDebt: %v", err)
	}

	deposit := &revdist.SolanaValidatorDeposit{}
	if err := p.InitializeSolanaValidatorDeposit(deposit, nodeID, 2); err != nil {
		t.Fatalf("InitializeSolanaValidatorDeposit: %v", err)
	}

	proof, err := debtTree.ProofFor(0)
	if err != nil {
		t.Fatalf("ProofFor: %v", err)
	}
	if err := p.PaySolanaValidatorDebt(dist, tail, deposit, journal, 1000, nodeID, 1000, proof); err != nil {
		t.Fatalf("PaySolanaValidatorDebt: %v", err)
	}
	if journal.TotalSOLBalance != 1000 {
		t.Fatalf("journal.TotalSOLBalance = %d, want 1000", journal.TotalSOLBalance)
	}

	// Replaying the same leaf must fail (invariant: idempotent leaf processing).
	if err := p.PaySolanaValidatorDebt(dist, tail, deposit, journal, 1000, nodeID, 1000, proof); err == nil {
		t.Fatal("expected error on replayed debt leaf, got nil")
	}

	// One contributor, split 70/30 between two recipients.
	contribKey := solana.NewWallet().PublicKey()
	recipientA := solana.NewWallet().PublicKey()
	recipientB := solana.NewWallet().PublicKey()
	cr := &revdist.ContributorRewards{}
	if err := p.InitializeContributorRewards(cfg, cr, contribMgr, contribKey); err != nil {
		t.Fatalf("InitializeContributorRewards: %v", err)
	}
	manager := solana.NewWallet().PublicKey()
	if err := p.SetRewardsManager(cfg, cr, contribMgr, manager); err != nil {
		t.Fatalf("SetRewardsManager: %v", err)
	}
	recipients := []revdist.RewardRecipientData{
		{RecipientKey: recipientA, BasisPoints: 7000},
		{RecipientKey: recipientB, BasisPoints: 3000},
	}
	setting := revdist.ConfigureContributorRewardsSetting{
		Tag:        revdist.ConfigureContributorRewardsTagRecipients,
		Recipients: recipients,
	}
	if err := p.ConfigureContributorRewards(cr, manager, setting); err != nil {
		t.Fatalf("ConfigureContributorRewards: %v", err)
	}

	// Rewards accountant commits a one-leaf reward-share tree: this contributor takes the
	// entire distributable pool (UnitShare32 MAX), with no extra per-contributor burn floor.
	remaining := revdist.PackRewardShareRemainingBytes(0, false)
	rewardLeaf := revdist.RewardShareLeaf{
		ContributorKey: contribKey,
		UnitShare:      uint32(fixedpoint.MaxUnitShare32),
		RemainingBytes: remaining,
	}
	rewardLeafBytes := append(append([]byte{}, rewardLeaf.ContributorKey.Bytes()...), u32LEBytes(rewardLeaf.UnitShare)...)
	rewardLeafBytes = append(rewardLeafBytes, rewardLeaf.RemainingBytes[:]...)
	rewardsTree := merkle.BuildTree(merkle.PrefixRewardShare, [][]byte{rewardLeafBytes})
	rewardsRoot := rewardsTree.Root()

	if err := p.ConfigureDistributionRewards(cfg, dist, rewardsAcct, 1, [32]byte(rewardsRoot)); err != nil {
		t.Fatalf("ConfigureDistributionRewards: %v", err)
	}
	// FinalizeDistributionRewards requires the configured minimum epoch duration to have
	// elapsed; with MinimumEpochDurationToFinalizeRewards left at zero, it's immediately due.
	tail, err = p.FinalizeDistributionRewards(cfg, dist, tail, rewardsAcct)
	if err != nil {
		t.Fatalf("FinalizeDistributionRewards: %v", err)
	}
	// Finalizing twice must be rejected — otherwise a retried call would reallocate the
	// processed-rewards bitmap and let every contributor claim a second payout.
	if _, err := p.FinalizeDistributionRewards(cfg, dist, tail, rewardsAcct); err != engine.ErrAlreadyFinalized {
		t.Fatalf("second FinalizeDistributionRewards: got %v, want ErrAlreadyFinalized", err)
	}

	// Seed the distributable 2Z pool directly (normally arrives via prepaid sweeps and the
	// SOL->2Z conversion swept in SweepDistributionTokens).
	dist.CollectedPrepaid2ZPayments = 10_000

	rewardProof, err := rewardsTree.ProofFor(0)
	if err != nil {
		t.Fatalf("ProofFor rewards: %v", err)
	}
	payouts, burned, err := p.DistributeRewards(dist, tail, cr, contribKey, engine.DistributeRewardsInput{
		UnitShare:        fixedpoint.MaxUnitShare32,
		EconomicBurnRate: 0,
		Proof:            rewardProof,
		Recipients:       cr.ActiveRecipients(),
	})
	if err != nil {
		t.Fatalf("DistributeRewards: %v", err)
	}
	if burned != 0 {
		t.Fatalf("burned = %d, want 0 (community burn rate defaults to 0)", burned)
	}
	var total uint64
	for _, payout := range payouts {
		total += payout.Amount
	}
	if total != 10_000 {
		t.Fatalf("distributed total = %d, want 10000 (invariant 6: recipient share closure)", total)
	}
	if payouts[0].Amount != 7000 || payouts[1].Amount != 3000 {
		t.Fatalf("payouts = %+v, want [7000 3000]", payouts)
	}

	// Replaying the same reward leaf must fail.
	if _, _, err := p.DistributeRewards(dist, tail, cr, contribKey, engine.DistributeRewardsInput{
		UnitShare:  fixedpoint.MaxUnitShare32,
		Proof:      rewardProof,
		Recipients: cr.ActiveRecipients(),
	}); err == nil {
		t.Fatal("expected error on replayed reward leaf, got nil")
	}

	// Sweep tokens: journal must already hold at least as much swapped SOL as the
	// distribution's net owed debt (1000 collected, nothing recovered or written off).
	journal.SwappedSOLAmount = 1000
	journal.Swap2ZDestinationBalance = 500
	if err := p.SweepDistributionTokens(journal, dist, 500); err != nil {
		t.Fatalf("SweepDistributionTokens: %v", err)
	}
	if journal.NextDZEpochToSweepTokens != 1 {
		t.Fatalf("NextDZEpochToSweepTokens = %d, want 1", journal.NextDZEpochToSweepTokens)
	}
	// Sweeping the same epoch again must fail (strict sequential ordering, scenario S5).
	if err := p.SweepDistributionTokens(journal, dist, 500); err == nil {
		t.Fatal("expected error resweeping the same epoch, got nil")
	}
}

// TestWriteOffReclassifyAndRecover exercises scenario S4: a debt leaf is written off, flagged
// erroneous and unflagged, then fully recovered once the windfall distribution is finalized and
// its recovery grace period has elapsed.
func TestWriteOffReclassifyAndRecover(t *testing.T) {
	p := newProcessor()
	admin := solana.NewWallet().PublicKey()
	debtAcct := solana.NewWallet().PublicKey()
	rewardsAcct := solana.NewWallet().PublicKey()
	contribMgr := solana.NewWallet().PublicKey()
	sentinel := solana.NewWallet().PublicKey()
	cfg := setupConfig(admin, debtAcct, rewardsAcct, contribMgr, sentinel)
	cfg.DebtWriteOffFeatureActivationEpoch = 1

	journal := &revdist.Journal{}
	p.InitializeJournal(journal, 1)

	dist := &revdist.Distribution{}
	if err := p.InitializeDistribution(cfg, journal, dist, debtAcct, 1, 0); err != nil {
		t.Fatalf("InitializeDistribution: %v", err)
	}

	nodeID := solana.NewWallet().PublicKey()
	debtLeaf := revdist.SolanaValidatorDebtLeaf{NodeID: nodeID, Amount: 500}
	debtLeafBytes := append(append([]byte{}, debtLeaf.NodeID.Bytes()...), u64LEBytes(debtLeaf.Amount)...)
	debtTree := merkle.BuildTree(merkle.PrefixSolanaValidatorDebt, [][]byte{debtLeafBytes})

	if err := p.ConfigureDistributionDebt(cfg, dist, debtAcct, 1, 500, [32]byte(debtTree.Root())); err != nil {
		t.Fatalf("ConfigureDistributionDebt: %v", err)
	}
	var tail []byte
	tail, err := p.FinalizeDistributionDebt(cfg, dist, tail, debtAcct)
	if err != nil {
		t.Fatalf("FinalizeDistributionDebt: %v", err)
	}
	tail, err = p.EnableSolanaValidatorDebtWriteOff(cfg, dist, tail, debtAcct, 0)
	if err != nil {
		t.Fatalf("EnableSolanaValidatorDebtWriteOff: %v", err)
	}
	tail, err = p.EnableErroneousSolanaValidatorDebt(cfg, dist, tail, debtAcct, 0)
	if err != nil {
		t.Fatalf("EnableErroneousSolanaValidatorDebt: %v", err)
	}

	deposit := &revdist.SolanaValidatorDeposit{}
	p.InitializeSolanaValidatorDeposit(deposit, nodeID, 2)

	if err := p.WriteOffSolanaValidatorDebt(cfg, dist, tail, dist, deposit, debtAcct, 0, 500); err != nil {
		t.Fatalf("WriteOffSolanaValidatorDebt: %v", err)
	}
	if dist.UncollectibleSOLDebt != 500 || deposit.WrittenOffSOLDebt != 500 {
		t.Fatalf("after write-off: dist.UncollectibleSOLDebt=%d deposit.WrittenOffSOLDebt=%d, want 500/500",
			dist.UncollectibleSOLDebt, deposit.WrittenOffSOLDebt)
	}

	// Flag erroneous, then un-flag (the second call undoes the first, per S4).
	if err := p.ReclassifyBadSolanaValidatorDebt(cfg, dist, tail, deposit, debtAcct, 0, 500); err != nil {
		t.Fatalf("ReclassifyBadSolanaValidatorDebt (flag): %v", err)
	}
	if dist.ErroneousSOLDebt != 500 {
		t.Fatalf("dist.ErroneousSOLDebt = %d, want 500", dist.ErroneousSOLDebt)
	}
	if err := p.ReclassifyBadSolanaValidatorDebt(cfg, dist, tail, deposit, debtAcct, 0, 500); err != nil {
		t.Fatalf("ReclassifyBadSolanaValidatorDebt (unflag): %v", err)
	}
	if dist.ErroneousSOLDebt != 0 || deposit.ErroneousSOLDebt != 0 {
		t.Fatalf("after unflag: dist.ErroneousSOLDebt=%d deposit.ErroneousSOLDebt=%d, want 0/0",
			dist.ErroneousSOLDebt, deposit.ErroneousSOLDebt)
	}

	// Recovery requires a finalized windfall distribution whose minimum recovery duration has
	// elapsed since it was created. Advance an epoch for a second distribution.
	cfg.DistributionParameters.MinimumEpochDurationToRecoverDebt = 0
	windfallDist := &revdist.Distribution{}
	if err := p.InitializeDistribution(cfg, journal, windfallDist, debtAcct, 1, 0); err != nil {
		t.Fatalf("InitializeDistribution (windfall): %v", err)
	}
	var windfallTail []byte
	emptyRoot := merkle.BuildTree(merkle.PrefixSolanaValidatorDebt, nil).Root()
	if err := p.ConfigureDistributionDebt(cfg, windfallDist, debtAcct, 0, 0, [32]byte(emptyRoot)); err != nil {
		t.Fatalf("ConfigureDistributionDebt (windfall): %v", err)
	}
	windfallTail, err = p.FinalizeDistributionDebt(cfg, windfallDist, windfallTail, debtAcct)
	if err != nil {
		t.Fatalf("FinalizeDistributionDebt (windfall): %v", err)
	}
	_ = windfallTail

	if err := p.RecoverBadSolanaValidatorDebt(cfg, dist, tail, windfallDist, deposit, journal, debtAcct, 0, 500); err != nil {
		t.Fatalf("RecoverBadSolanaValidatorDebt: %v", err)
	}
	if dist.UncollectibleSOLDebt != 0 {
		t.Fatalf("dist.UncollectibleSOLDebt = %d, want 0 after recovery", dist.UncollectibleSOLDebt)
	}
	if windfallDist.RecoveredSOLDebt != 500 || deposit.RecoveredSOLDebt != 500 {
		t.Fatalf("windfallDist.RecoveredSOLDebt=%d deposit.RecoveredSOLDebt=%d, want 500/500",
			windfallDist.RecoveredSOLDebt, deposit.RecoveredSOLDebt)
	}
	if journal.TotalSOLBalance != 500 {
		t.Fatalf("journal.TotalSOLBalance = %d, want 500", journal.TotalSOLBalance)
	}

	// The leaf stays marked processed after recovery, so it cannot be written off again.
	if err := p.WriteOffSolanaValidatorDebt(cfg, dist, tail, dist, deposit, debtAcct, 0, 500); err == nil {
		t.Fatal("expected error re-writing-off an already-processed leaf, got nil")
	}
}

// TestAuthorizationRejectsWrongSigner exercises invariant: every mutating call is gated on a
// specific configured authority, never an arbitrary signer.
func TestAuthorizationRejectsWrongSigner(t *testing.T) {
	p := newProcessor()
	admin := solana.NewWallet().PublicKey()
	debtAcct := solana.NewWallet().PublicKey()
	rewardsAcct := solana.NewWallet().PublicKey()
	contribMgr := solana.NewWallet().PublicKey()
	sentinel := solana.NewWallet().PublicKey()
	cfg := setupConfig(admin, debtAcct, rewardsAcct, contribMgr, sentinel)

	journal := &revdist.Journal{}
	p.InitializeJournal(journal, 1)
	dist := &revdist.Distribution{}
	imposter := solana.NewWallet().PublicKey()
	if err := p.InitializeDistribution(cfg, journal, dist, imposter, 1, 0); err == nil {
		t.Fatal("expected unauthorized error, got nil")
	}
}

// TestConfigurePausedBlocksInitializeDistribution exercises the program-pause invariant:
// InitializeDistribution must refuse to run while ProgramConfig.Flags has IsPaused set.
func TestConfigurePausedBlocksInitializeDistribution(t *testing.T) {
	p := newProcessor()
	admin := solana.NewWallet().PublicKey()
	debtAcct := solana.NewWallet().PublicKey()
	rewardsAcct := solana.NewWallet().PublicKey()
	contribMgr := solana.NewWallet().PublicKey()
	sentinel := solana.NewWallet().PublicKey()
	cfg := setupConfig(admin, debtAcct, rewardsAcct, contribMgr, sentinel)
	cfg.Flags = cfg.Flags.Set(revdist.ProgramConfigFlagIsPaused, true)

	journal := &revdist.Journal{}
	p.InitializeJournal(journal, 1)
	dist := &revdist.Distribution{}
	if err := p.InitializeDistribution(cfg, journal, dist, debtAcct, 1, 0); err == nil {
		t.Fatal("expected paused error, got nil")
	}
}

// TestConfigureCommunityBurnRateInitialRampsThroughIncreasing exercises the production
// ConfigureProgram(BurnRateInitial=...) path with a nonzero initial rate, then drives
// InitializeDistribution across the Static->Increasing transition. Before the slope was
// computed on this path, the Static->Increasing switch divided by a zero SlopeDenominator
// and panicked on exactly this input.
func TestConfigureCommunityBurnRateInitialRampsThroughIncreasing(t *testing.T) {
	p := newProcessor()
	admin := solana.NewWallet().PublicKey()
	debtAcct := solana.NewWallet().PublicKey()
	rewardsAcct := solana.NewWallet().PublicKey()
	contribMgr := solana.NewWallet().PublicKey()
	sentinel := solana.NewWallet().PublicKey()
	cfg := setupConfig(admin, debtAcct, rewardsAcct, contribMgr, sentinel)

	initial := uint32(200_000_000)
	setting := revdist.ConfigureProgramSetting{
		Tag:                  revdist.ConfigureProgramTagCommunityBurnRate,
		BurnRateInitial:      &initial,
		BurnRateLimit:        500_000_000,
		BurnRateToIncreasing: 2,
		BurnRateToLimit:      5,
	}
	if err := p.ConfigureProgram(cfg, admin, setting); err != nil {
		t.Fatalf("ConfigureProgram(CommunityBurnRate): %v", err)
	}
	cbr := cfg.DistributionParameters.CommunityBurnRateParameters
	if cbr.SlopeNumerator != 300_000_000 {
		t.Errorf("SlopeNumerator = %d, want 300_000_000", cbr.SlopeNumerator)
	}
	if cbr.SlopeDenominator != 4 {
		t.Errorf("SlopeDenominator = %d, want 4", cbr.SlopeDenominator)
	}

	journal := &revdist.Journal{}
	if err := p.InitializeJournal(journal, 1); err != nil {
		t.Fatalf("InitializeJournal: %v", err)
	}

	want := []fixedpoint.UnitShare32{
		200_000_000, 200_000_000, 200_000_000,
		275_000_000, 350_000_000, 425_000_000, 500_000_000,
	}
	for i, w := range want {
		dist := &revdist.Distribution{}
		if err := p.InitializeDistribution(cfg, journal, dist, debtAcct, 1, 0); err != nil {
			t.Fatalf("InitializeDistribution epoch %d: %v", i, err)
		}
		if dist.CommunityBurnRate != w {
			t.Fatalf("epoch %d: CommunityBurnRate = %d, want %d", i, dist.CommunityBurnRate, w)
		}
	}
}

// TestConfigureCommunityBurnRateInitialRejectsInvalidRange exercises the guards CheckedUpdate
// enforces: routing the BurnRateInitial path through CheckedUpdate must reject an initial rate
// above the limit, exactly like a plain CheckedUpdate call would.
func TestConfigureCommunityBurnRateInitialRejectsInvalidRange(t *testing.T) {
	p := newProcessor()
	admin := solana.NewWallet().PublicKey()
	cfg := &revdist.ProgramConfig{AdminKey: admin}

	initial := uint32(600_000_000)
	setting := revdist.ConfigureProgramSetting{
		Tag:                  revdist.ConfigureProgramTagCommunityBurnRate,
		BurnRateInitial:      &initial,
		BurnRateLimit:        500_000_000,
		BurnRateToIncreasing: 2,
		BurnRateToLimit:      5,
	}
	if err := p.ConfigureProgram(cfg, admin, setting); err != revdist.ErrBurnRateLimitBelowCached {
		t.Fatalf("got %v, want ErrBurnRateLimitBelowCached", err)
	}
}

// TestConfigureContributorRewardsRejectsBadSplitTables exercises the two split-table
// invariants: basis points must sum to exactly 10,000 and recipients must be unique.
func TestConfigureContributorRewardsRejectsBadSplitTables(t *testing.T) {
	p := newProcessor()
	contribMgr := solana.NewWallet().PublicKey()
	cfg := &revdist.ProgramConfig{ContributorManagerKey: contribMgr}
	cr := &revdist.ContributorRewards{}
	contribKey := solana.NewWallet().PublicKey()
	if err := p.InitializeContributorRewards(cfg, cr, contribMgr, contribKey); err != nil {
		t.Fatalf("InitializeContributorRewards: %v", err)
	}
	manager := solana.NewWallet().PublicKey()
	if err := p.SetRewardsManager(cfg, cr, contribMgr, manager); err != nil {
		t.Fatalf("SetRewardsManager: %v", err)
	}

	recipient := solana.NewWallet().PublicKey()
	short := revdist.ConfigureContributorRewardsSetting{
		Tag: revdist.ConfigureContributorRewardsTagRecipients,
		Recipients: []revdist.RewardRecipientData{
			{RecipientKey: recipient, BasisPoints: 9999},
		},
	}
	if err := p.ConfigureContributorRewards(cr, manager, short); err == nil {
		t.Fatal("expected error for basis points not summing to 10000, got nil")
	}

	dup := revdist.ConfigureContributorRewardsSetting{
		Tag: revdist.ConfigureContributorRewardsTagRecipients,
		Recipients: []revdist.RewardRecipientData{
			{RecipientKey: recipient, BasisPoints: 5000},
			{RecipientKey: recipient, BasisPoints: 5000},
		},
	}
	if err := p.ConfigureContributorRewards(cr, manager, dup); err == nil {
		t.Fatal("expected error for duplicate recipient, got nil")
	}

	// Once the lock is set, SetRewardsManager must be permanently refused.
	lock := revdist.ConfigureContributorRewardsSetting{
		Tag:                        revdist.ConfigureContributorRewardsTagIsSetRewardsManagerBlocked,
		IsSetRewardsManagerBlocked: true,
	}
	if err := p.ConfigureContributorRewards(cr, manager, lock); err != nil {
		t.Fatalf("ConfigureContributorRewards (lock): %v", err)
	}
	if err := p.SetRewardsManager(cfg, cr, contribMgr, solana.NewWallet().PublicKey()); err == nil {
		t.Fatal("expected error setting rewards manager after lock, got nil")
	}
}

// TestLoadPrepaidConnectionRequiresGrant exercises the access-grant precondition on the
// prepaid-connection ring buffer.
func TestLoadPrepaidConnectionRequiresGrant(t *testing.T) {
	p := newProcessor()
	journal := &revdist.Journal{}
	p.InitializeJournal(journal, 1)
	conn := &revdist.PrepaidConnection{}
	user := solana.NewWallet().PublicKey()
	if err := p.InitializePrepaidConnection(conn, user, 1); err != nil {
		t.Fatalf("InitializePrepaidConnection: %v", err)
	}
	if err := p.LoadPrepaidConnection(journal, conn, 0, 3, 9, 100); err == nil {
		t.Fatal("expected error loading an ungranted connection, got nil")
	}

	sentinel := solana.NewWallet().PublicKey()
	cfg := &revdist.ProgramConfig{DZLedgerSentinelKey: sentinel}
	if err := p.GrantPrepaidConnectionAccess(cfg, conn, sentinel); err != nil {
		t.Fatalf("GrantPrepaidConnectionAccess: %v", err)
	}
	if err := p.LoadPrepaidConnection(journal, conn, 0, 3, 9, 100); err != nil {
		t.Fatalf("LoadPrepaidConnection: %v", err)
	}
	if journal.Total2ZBalance != 400 {
		t.Fatalf("journal.Total2ZBalance = %d, want 400 (4 epochs * 100)", journal.Total2ZBalance)
	}
}
