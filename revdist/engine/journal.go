package engine

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezerofoundation/doublezero-solana-sub000/fixedpoint"
	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
)

// MaxConfigurableEntries caps the number of DZ epochs a single LoadPrepaidConnection call may
// span. The ring buffer's hard storage capacity is 256 (revdist.Journal.PrepaymentEntries);
// original_source additionally caps what a single configuration call may request to 32, to
// bound the work done in one transaction. That narrower cap is enforced here, not on the ring
// buffer itself.
const MaxConfigurableEntries = 32

// InitializeJournal zeroes a freshly-allocated Journal account.
func (p *Processor) InitializeJournal(j *revdist.Journal, bumpSeed uint8) error {
	*j = revdist.Journal{BumpSeed: bumpSeed}
	return nil
}

// InitializePrepaidConnection creates the per-user access-grant record, ungranted by default.
func (p *Processor) InitializePrepaidConnection(conn *revdist.PrepaidConnection, user solana.PublicKey, bumpSeed uint8) error {
	*conn = revdist.PrepaidConnection{User: user, BumpSeed: bumpSeed}
	return nil
}

// GrantPrepaidConnectionAccess and DenyPrepaidConnectionAccess are signed by the ledger
// sentinel recorded on ProgramConfig.
func (p *Processor) GrantPrepaidConnectionAccess(cfg *revdist.ProgramConfig, conn *revdist.PrepaidConnection, sentinel solana.PublicKey) error {
	if err := p.authorize(sentinel, cfg.DZLedgerSentinelKey, "dz_ledger_sentinel_key"); err != nil {
		return err
	}
	conn.IsGranted = true
	return nil
}

func (p *Processor) DenyPrepaidConnectionAccess(cfg *revdist.ProgramConfig, conn *revdist.PrepaidConnection, sentinel solana.PublicKey) error {
	if err := p.authorize(sentinel, cfg.DZLedgerSentinelKey, "dz_ledger_sentinel_key"); err != nil {
		return err
	}
	conn.IsGranted = false
	return nil
}

// LoadPrepaidConnection amortizes a payment of costPerEpoch 2Z-per-epoch across
// [nextDZEpoch, validThroughDZEpoch], incrementing existing ring entries in range and
// appending new ones for epochs not yet covered. nextDZEpoch is the journal's own notion of
// "now" for this purpose: the caller passes ProgramConfig.NextCompletedDZEpoch. costPerEpoch is
// already denominated in the 2Z mint's smallest unit; decimals is carried through only for
// the caller's own bookkeeping and isn't re-applied here (the mint's decimal count is fixed
// and already folded into whatever the CLI computed before submitting).
func (p *Processor) LoadPrepaidConnection(j *revdist.Journal, conn *revdist.PrepaidConnection, nextDZEpoch, validThroughDZEpoch fixedpoint.DoubleZeroEpoch, decimals uint8, costPerEpoch uint64) error {
	if !conn.IsGranted {
		return fmt.Errorf("%w: prepaid connection access not granted", ErrUnauthorized)
	}
	if validThroughDZEpoch < nextDZEpoch {
		return fmt.Errorf("%w: valid_through_dz_epoch before current epoch", ErrWrongEpoch)
	}
	numEpochs := uint64(validThroughDZEpoch-nextDZEpoch) + 1
	if numEpochs > MaxConfigurableEntries {
		return fmt.Errorf("%w: %d epochs requested, max %d", ErrTooManyEpochs, numEpochs, MaxConfigurableEntries)
	}

	last := nextDZEpoch
	if tailLen := int(j.PrepaymentLength); tailLen > 0 {
		front, _ := j.Front()
		last = front.DZEpoch + fixedpoint.DoubleZeroEpoch(tailLen)
	}

	newNeeded := uint64(0)
	if validThroughDZEpoch >= last {
		newNeeded = uint64(validThroughDZEpoch-last) + 1
	}
	if uint64(j.PrepaymentLength)+newNeeded > 256 {
		return fmt.Errorf("%w: ring buffer would exceed 256 entries", ErrRingFull)
	}

	var delta uint64
	for i := 0; i < int(j.PrepaymentLength); i++ {
		e := j.EntryAt(i)
		if e.DZEpoch >= nextDZEpoch && e.DZEpoch <= validThroughDZEpoch {
			e.AmountPerEpoch += costPerEpoch
			delta += costPerEpoch
		}
	}
	for dz := last; dz <= validThroughDZEpoch; dz++ {
		if err := j.PushBack(revdist.PrepaymentEntry{DZEpoch: dz, AmountPerEpoch: costPerEpoch}); err != nil {
			return err
		}
		delta += costPerEpoch
	}
	j.Total2ZBalance += delta
	return nil
}

// SweepFrontToDistribution pops the Journal's front prepayment entry into dist if its epoch is
// strictly before epoch, matching InitializeDistribution's per-epoch prepaid sweep.
func (p *Processor) SweepFrontToDistribution(j *revdist.Journal, dist *revdist.Distribution, epoch fixedpoint.DoubleZeroEpoch) {
	front, ok := j.Front()
	if !ok || front.DZEpoch >= epoch {
		return
	}
	j.PopFront()
	dist.CollectedPrepaid2ZPayments += front.AmountPerEpoch
}
