package engine

import (
	"log/slog"

	"github.com/gagliardetto/solana-go"
)

// Processor holds the cross-cutting dependencies every instruction handler uses: a logger for
// the diagnostic detail spec's error-handling design requires, and optional metrics. A
// Processor has no mutable state of its own — every method takes the account pointers it acts
// on as arguments, so a single Processor is safe for concurrent use across independent
// accounts (the same way the host runtime serializes only accounts actually listed writable).
type Processor struct {
	log     *slog.Logger
	metrics *Metrics
}

// NewProcessor builds a Processor. metrics may be nil to disable metrics recording.
func NewProcessor(log *slog.Logger, metrics *Metrics) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{log: log, metrics: metrics}
}

func (p *Processor) authorize(signer, required solana.PublicKey, label string) error {
	if signer != required {
		p.log.Warn("unauthorized signer", "required_authority", label, "expected", required, "got", signer)
		return ErrUnauthorized
	}
	return nil
}
