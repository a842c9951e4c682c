package revdist

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezerofoundation/doublezero-solana-sub000/bitmap"
	"github.com/doublezerofoundation/doublezero-solana-sub000/fixedpoint"
)

// ProgramConfig flag bits.
const (
	ProgramConfigFlagIsPaused  = 0
	ProgramConfigFlagIsMigrated = 1
)

// Distribution flag bits.
const (
	DistributionFlagDebtCalculationFinalized       = 0
	DistributionFlagRewardsCalculationFinalized    = 1
	DistributionFlagHasSweptTokens                 = 2
	DistributionFlagSolanaValidatorDebtWriteOffOn  = 3
	DistributionFlagErroneousSolanaValidatorDebtOn = 4
)

// ContributorRewards flag bits.
const ContributorRewardsFlagSetManagerBlocked = 0

// SolanaValidatorFeeParameters mirrors the five sub-parameters that make up a validator's
// per-epoch fee split. All five must be configured together.
type SolanaValidatorFeeParameters struct {
	BaseBlockRewardsPct     uint16
	PriorityBlockRewardsPct uint16
	InflationRewardsPct     uint16
	JitoTipsPct             uint16
	FixedSOLAmount          uint32
}

// distributionSolanaValidatorFeeParameters is the 40-byte encoding Distribution snapshots
// fee parameters into, reserving room for future per-epoch fee fields without an account
// resize.
type distributionSolanaValidatorFeeParameters struct {
	BaseBlockRewardsPct     uint16
	PriorityBlockRewardsPct uint16
	InflationRewardsPct     uint16
	JitoTipsPct             uint16
	FixedSOLAmount          uint32
	_                       [28]byte
}

// CommunityBurnRateParameters is the sub-state machine described in Mode: it walks from
// Static (DZEpochsToIncreasing > 0) to Increasing (== 0, DZEpochsToLimit > 0) to Limit (both
// zero), caching the next burn rate to apply and the slope used to interpolate toward Limit.
type CommunityBurnRateParameters struct {
	Limit                fixedpoint.UnitShare32
	DZEpochsToIncreasing fixedpoint.EpochDuration
	DZEpochsToLimit      fixedpoint.EpochDuration
	SlopeNumerator       fixedpoint.UnitShare32
	SlopeDenominator     fixedpoint.EpochDuration
	CachedNextBurnRate   fixedpoint.UnitShare32
}

// CommunityBurnRateMode is the derived mode of a CommunityBurnRateParameters value, read from
// the same two counters CheckedCompute branches on.
type CommunityBurnRateMode int

const (
	CommunityBurnRateStatic CommunityBurnRateMode = iota
	CommunityBurnRateIncreasing
	CommunityBurnRateLimit
)

// Mode reports the current phase of the burn-rate ramp.
func (cb CommunityBurnRateParameters) Mode() CommunityBurnRateMode {
	switch {
	case cb.DZEpochsToIncreasing > 0:
		return CommunityBurnRateStatic
	case cb.DZEpochsToLimit > 0:
		return CommunityBurnRateIncreasing
	default:
		return CommunityBurnRateLimit
	}
}

var (
	ErrBurnRateLimitBelowCached       = errors.New("new burn rate limit is below the cached next burn rate")
	ErrBurnRateZeroEpochsToIncreasing = errors.New("epochs to increasing must be nonzero")
	ErrBurnRateLimitBeforeIncreasing  = errors.New("epochs to limit is before epochs to increasing")
)

// CheckedCompute advances the ramp by one DZ epoch and returns the burn rate that was in
// effect prior to this call (the value a Distribution created this epoch should snapshot).
//
// The mode used to decide this epoch's update is evaluated against the counters as they
// stood BEFORE this call's decrement, so a Static-to-Increasing transition takes one extra
// epoch to show up in the cached value — see the scenario fixtures for the exact sequence.
func (cb *CommunityBurnRateParameters) CheckedCompute() fixedpoint.UnitShare32 {
	prior := cb.CachedNextBurnRate
	switch {
	case cb.DZEpochsToIncreasing == 0 && cb.DZEpochsToLimit == 0:
		cb.CachedNextBurnRate = cb.Limit
	case cb.DZEpochsToIncreasing == 0:
		num := uint64(cb.CachedNextBurnRate)*uint64(cb.SlopeDenominator) + uint64(cb.SlopeNumerator)
		next := num / uint64(cb.SlopeDenominator)
		if next > uint64(cb.Limit) {
			next = uint64(cb.Limit)
		}
		cb.CachedNextBurnRate = fixedpoint.UnitShare32(next)
	}
	if cb.DZEpochsToIncreasing > 0 {
		cb.DZEpochsToIncreasing--
	}
	if cb.DZEpochsToLimit > 0 {
		cb.DZEpochsToLimit--
	}
	return prior
}

// CheckedUpdate reconfigures the ramp's target and timing, recomputing the slope so the
// cached value reaches newLimit exactly when newLimitEpochs elapses.
func (cb *CommunityBurnRateParameters) CheckedUpdate(newLimit fixedpoint.UnitShare32, newIncreasing, newLimitEpochs fixedpoint.EpochDuration) error {
	if uint32(newLimit) < uint32(cb.CachedNextBurnRate) {
		return ErrBurnRateLimitBelowCached
	}
	if newIncreasing == 0 {
		return ErrBurnRateZeroEpochsToIncreasing
	}
	if newLimitEpochs < newIncreasing {
		return ErrBurnRateLimitBeforeIncreasing
	}
	cb.SlopeNumerator = fixedpoint.UnitShare32(uint32(newLimit) - uint32(cb.CachedNextBurnRate))
	cb.SlopeDenominator = fixedpoint.EpochDuration(uint32(newLimitEpochs) - uint32(newIncreasing) + 1)
	cb.Limit = newLimit
	cb.DZEpochsToIncreasing = newIncreasing
	cb.DZEpochsToLimit = newLimitEpochs
	return nil
}

// DistributionParameters is the live configuration ProgramConfig holds and every new
// Distribution snapshots at InitializeDistribution time.
type DistributionParameters struct {
	CalculationGracePeriodMinutes          uint16
	InitializationGracePeriodMinutes       uint16
	MinimumEpochDurationToFinalizeRewards  uint8
	MinimumEpochDurationToRecoverDebt      uint8
	_                                      [2]byte
	CommunityBurnRateParameters            CommunityBurnRateParameters
	SolanaValidatorFeeParameters           SolanaValidatorFeeParameters
	_                                      [284]byte // reserved for future fee/grace fields
}

// RelayParameters holds the lamport amounts ConfigureProgram can set for relay-paid
// instructions. PlaceholderLamports is reserved for a future relay-paid operation.
type RelayParameters struct {
	PlaceholderLamports       uint32
	DistributeRewardsLamports uint32
	_                         [32]byte
}

// ProgramConfig is the program-wide singleton. compat_test.go checks its layout against
// on-chain account bytes at known offsets; fields that test does not assert were filled in
// from the data-model description.
type ProgramConfig struct {
	Flags                 bitmap.Flags
	NextCompletedDZEpoch  fixedpoint.DoubleZeroEpoch
	BumpSeed              uint8
	_                     [7]byte
	AdminKey              solana.PublicKey
	DebtAccountantKey     solana.PublicKey
	RewardsAccountantKey  solana.PublicKey
	ContributorManagerKey solana.PublicKey
	// DZLedgerSentinelKey authorizes GrantPrepaidConnectionAccess/DenyPrepaidConnectionAccess.
	DZLedgerSentinelKey   solana.PublicKey
	SOL2ZSwapProgramID    solana.PublicKey

	DistributionParameters DistributionParameters
	RelayParameters         RelayParameters

	LastInitializedDistributionTimestamp uint32
	_                                     [4]byte
	DebtWriteOffFeatureActivationEpoch    fixedpoint.DoubleZeroEpoch

	JournalBump          uint8
	SwapAuthorityBump    uint8
	SwapDestinationBump  uint8
	_                    [5]byte
}

// LastCompletedEpoch returns the most recently completed DZ epoch, or 0 if no distribution
// has ever been initialized.
func (p *ProgramConfig) LastCompletedEpoch() fixedpoint.DoubleZeroEpoch {
	if p.NextCompletedDZEpoch == 0 {
		return 0
	}
	return p.NextCompletedDZEpoch - 1
}

// WriteOffFeatureActivated reports whether the write-off/erroneous-debt sub-machine is
// live: an activation epoch is set and NextCompletedDZEpoch has reached it.
func (p *ProgramConfig) WriteOffFeatureActivated() bool {
	if p.DebtWriteOffFeatureActivationEpoch == 0 {
		return false
	}
	return p.NextCompletedDZEpoch >= p.DebtWriteOffFeatureActivationEpoch
}

// Distribution is the per-epoch bookkeeping record. The four bitmap ranges are recorded as
// byte start/end offsets into the account's own trailing data; BitmapRange exposes them.
type Distribution struct {
	DZEpoch           fixedpoint.DoubleZeroEpoch
	Flags             bitmap.Flags
	CommunityBurnRate fixedpoint.UnitShare32
	_                 [4]byte

	SolanaValidatorFeeParameters distributionSolanaValidatorFeeParameters

	SolanaValidatorDebtMerkleRoot [32]byte

	TotalSolanaValidators             uint32
	SolanaValidatorPaymentsCount      uint32
	TotalSolanaValidatorDebt          uint64
	CollectedSolanaValidatorPayments  uint64

	RewardsMerkleRoot [32]byte

	TotalContributors           uint32
	DistributedRewardsCount     uint32
	CollectedPrepaid2ZPayments  uint64
	Collected2ZConvertedFromSOL uint64
	UncollectibleSOLDebt        uint64

	RecoveredSOLDebt                     uint64
	ErroneousSOLDebt                     uint64
	SolanaValidatorDebtWriteOffCount     uint32
	SolanaValidatorDebtRecoveryCount     uint32

	Distributed2ZAmount uint64
	Burned2ZAmount      uint64

	// DistributeRewardsRelayLamports is snapshotted from ProgramConfig.RelayParameters at
	// InitializeDistribution time so a later reconfiguration never changes an in-flight
	// distribution's relay payout.
	DistributeRewardsRelayLamports uint32
	CalculationAllowedTimestamp    uint32

	ProcessedDebtBitmapStart      uint32
	ProcessedDebtBitmapEnd        uint32
	WrittenOffBitmapStart         uint32
	WrittenOffBitmapEnd           uint32
	ErroneousBitmapStart          uint32
	ErroneousBitmapEnd            uint32
	ProcessedRewardsBitmapStart   uint32
	ProcessedRewardsBitmapEnd     uint32

	BumpSeed uint8
	_        [7]byte
}

// BitmapRange identifies one of Distribution's four append-only replay-protection ranges.
type BitmapRange int

const (
	BitmapProcessedDebt BitmapRange = iota
	BitmapWrittenOff
	BitmapErroneous
	BitmapProcessedRewards
)

// Range returns the [start, end) byte offsets of the given range into the account's
// trailing bitmap data, as recorded on the Distribution header.
func (d *Distribution) Range(r BitmapRange) (start, end uint32) {
	switch r {
	case BitmapProcessedDebt:
		return d.ProcessedDebtBitmapStart, d.ProcessedDebtBitmapEnd
	case BitmapWrittenOff:
		return d.WrittenOffBitmapStart, d.WrittenOffBitmapEnd
	case BitmapErroneous:
		return d.ErroneousBitmapStart, d.ErroneousBitmapEnd
	case BitmapProcessedRewards:
		return d.ProcessedRewardsBitmapStart, d.ProcessedRewardsBitmapEnd
	default:
		return 0, 0
	}
}

// Bitmap slices the given range out of the account's trailing bitmap data (the bytes after
// this fixed header), using the account's own recorded start/end offsets. A range that does
// not fit inside tail yields an empty Bitmap.
func (d *Distribution) Bitmap(tail []byte, r BitmapRange) bitmap.Bitmap {
	start, end := d.Range(r)
	if end > uint32(len(tail)) || start > end {
		return bitmap.Bitmap{}
	}
	return bitmap.FromBytes(tail[start:end])
}

// AllocateRange appends a new bitmap range sized to hold n leaves, returning the updated
// tail and recording the range's start/end on the Distribution header.
func (d *Distribution) AllocateRange(tail []byte, r BitmapRange, n uint32) []byte {
	start := uint32(len(tail))
	end := start + uint32(bitmap.ByteLen(n))
	grown := append(tail, make([]byte, end-start)...)
	switch r {
	case BitmapProcessedDebt:
		d.ProcessedDebtBitmapStart, d.ProcessedDebtBitmapEnd = start, end
	case BitmapWrittenOff:
		d.WrittenOffBitmapStart, d.WrittenOffBitmapEnd = start, end
	case BitmapErroneous:
		d.ErroneousBitmapStart, d.ErroneousBitmapEnd = start, end
	case BitmapProcessedRewards:
		d.ProcessedRewardsBitmapStart, d.ProcessedRewardsBitmapEnd = start, end
	}
	return grown
}

// PrepaymentEntry is one slot of Journal's ring buffer: the amount of 2Z due for a single
// DZ epoch from prepaid connections.
type PrepaymentEntry struct {
	DZEpoch        fixedpoint.DoubleZeroEpoch
	AmountPerEpoch uint64
}

// prepaymentRingCapacity is the fixed capacity of Journal's PrepaymentEntries ring buffer.
const prepaymentRingCapacity = 256

// Journal is the program-wide singleton tracking global balances and the prepaid-connection
// ring buffer.
type Journal struct {
	BumpSeed uint8
	_        [7]byte

	TotalSOLBalance          uint64
	Total2ZBalance           uint64
	Swap2ZDestinationBalance uint64
	SwappedSOLAmount         uint64
	NextDZEpochToSweepTokens fixedpoint.DoubleZeroEpoch

	PrepaymentHead   uint16
	PrepaymentLength uint16
	_                [4]byte
	PrepaymentEntries [prepaymentRingCapacity]PrepaymentEntry
}

// EntryAt returns a pointer to the logical i-th entry (0 = front) of the ring buffer.
func (j *Journal) EntryAt(i int) *PrepaymentEntry {
	idx := (int(j.PrepaymentHead) + i) % prepaymentRingCapacity
	return &j.PrepaymentEntries[idx]
}

// Front returns the earliest-epoch entry, or false if the ring is empty.
func (j *Journal) Front() (PrepaymentEntry, bool) {
	if j.PrepaymentLength == 0 {
		return PrepaymentEntry{}, false
	}
	return *j.EntryAt(0), true
}

// PopFront removes and returns the earliest-epoch entry.
func (j *Journal) PopFront() (PrepaymentEntry, bool) {
	entry, ok := j.Front()
	if !ok {
		return PrepaymentEntry{}, false
	}
	j.PrepaymentHead = uint16((int(j.PrepaymentHead) + 1) % prepaymentRingCapacity)
	j.PrepaymentLength--
	return entry, true
}

// PushBack appends a new entry, which must be a prepaid connection's remaining epoch after
// the current tail.
func (j *Journal) PushBack(entry PrepaymentEntry) error {
	if int(j.PrepaymentLength) >= prepaymentRingCapacity {
		return ErrPrepaymentRingFull
	}
	idx := (int(j.PrepaymentHead) + int(j.PrepaymentLength)) % prepaymentRingCapacity
	j.PrepaymentEntries[idx] = entry
	j.PrepaymentLength++
	return nil
}

// ErrPrepaymentRingFull is returned when a load would push the ring buffer past its 256
// entry capacity.
var ErrPrepaymentRingFull = errors.New("prepayment ring buffer is full")

// SolanaValidatorDeposit is a per-validator escrow account. Its lamport balance above rent
// exemption is the validator's available debt-payment escrow.
type SolanaValidatorDeposit struct {
	NodeID            solana.PublicKey
	WrittenOffSOLDebt uint64
	RecoveredSOLDebt  uint64
	ErroneousSOLDebt  uint64
	BumpSeed          uint8
	_                 [7]byte
}

// maxContributorRecipients bounds ContributorRewards.Recipients so the account stays
// fixed-size; the spec's data model calls for a plain Vec but every other account in this
// program is fixed-layout, so recipients are capped the same way Journal's ring buffer is.
const maxContributorRecipients = 32

// RewardRecipient is one entry of a ContributorRewards' split table.
type RewardRecipient struct {
	RecipientKey solana.PublicKey
	BasisPoints  uint16
	_            [6]byte
}

// ContributorRewards maps a contributor's service key to the recipients its distributed 2Z
// is split between.
type ContributorRewards struct {
	ServiceKey        solana.PublicKey
	RewardsManagerKey solana.PublicKey
	Flags             bitmap.Flags
	RecipientCount    uint16
	_                 [6]byte
	Recipients        [maxContributorRecipients]RewardRecipient
}

// ActiveRecipients returns the configured prefix of the Recipients array.
func (c *ContributorRewards) ActiveRecipients() []RewardRecipient {
	return c.Recipients[:c.RecipientCount]
}

// IsSetRewardsManagerBlocked reports whether SetRewardsManager is permanently disabled for
// this contributor.
func (c *ContributorRewards) IsSetRewardsManagerBlocked() bool {
	return c.Flags.Has(ContributorRewardsFlagSetManagerBlocked)
}
