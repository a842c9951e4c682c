package engine

import (
	"github.com/gagliardetto/solana-go"

	"github.com/doublezerofoundation/doublezero-solana-sub000/revdist"
)

// InitializeSolanaValidatorDeposit creates a validator's escrow account. This call is
// permissionless: any validator operator can open its
// own deposit, seeded by its own node identity key, without an admin or accountant signer.
func (p *Processor) InitializeSolanaValidatorDeposit(dep *revdist.SolanaValidatorDeposit, nodeID solana.PublicKey, bumpSeed uint8) error {
	*dep = revdist.SolanaValidatorDeposit{NodeID: nodeID, BumpSeed: bumpSeed}
	return nil
}
