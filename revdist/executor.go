package revdist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var (
	ErrNoPrivateKey      = errors.New("no private key configured")
	ErrNoProgramID       = errors.New("no program ID configured")
	ErrInstructionFailed = errors.New("instruction failed")
	ErrSignatureNotSeen  = errors.New("signature not observed by cluster before timeout")
)

// Executor submits revenue-distribution instructions to a cluster and waits
// for them to land. It knows nothing about the accounts it is signing for;
// callers build instructions with the NewXxx helpers in instruction.go and
// hand them to ExecuteTransaction.
type Executor struct {
	log                   *slog.Logger
	rpc                   ExecutorRPCClient
	signer                *solana.PrivateKey
	programID             solana.PublicKey
	waitForVisibleTimeout time.Duration
}

type ExecutorRPCClient interface {
	GetLatestBlockhash(ctx context.Context, commitment solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error)
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *solanarpc.GetTransactionOpts) (*solanarpc.GetTransactionResult, error)
}

type ExecutorOption func(*Executor)

func WithWaitForVisibleTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.waitForVisibleTimeout = timeout
	}
}

func NewExecutor(log *slog.Logger, rpc ExecutorRPCClient, signer *solana.PrivateKey, programID solana.PublicKey, opts ...ExecutorOption) *Executor {
	e := &Executor{
		log:                   log,
		rpc:                   rpc,
		signer:                signer,
		programID:             programID,
		waitForVisibleTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Signer returns the public key of the executor's configured transaction signer.
func (e *Executor) Signer() solana.PublicKey {
	if e.signer == nil {
		return solana.PublicKey{}
	}
	return e.signer.PublicKey()
}

// ExecuteTransaction signs, submits, and waits for finalization of a
// transaction built from the given instructions. It returns the signature
// and the finalized transaction once the cluster confirms it.
func (e *Executor) ExecuteTransaction(ctx context.Context, instructions []solana.Instruction) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if e.signer == nil {
		return solana.Signature{}, nil, ErrNoPrivateKey
	}
	if e.programID.IsZero() {
		return solana.Signature{}, nil, ErrNoProgramID
	}

	blockhashResult, err := e.rpc.GetLatestBlockhash(ctx, solanarpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhashResult.Value.Blockhash,
		solana.TransactionPayer(e.signer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(e.signer.PublicKey()) {
			return e.signer
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to sign transaction (likely missing signer): %w", err)
	}
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, nil, errors.New("signed transaction appears malformed")
	}

	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{})
	if err != nil {
		if failingIdx, parseErr := parseFailingInstructionIndex(err); parseErr == nil {
			return solana.Signature{}, nil, fmt.Errorf("instruction %d failed: %w", failingIdx, err)
		}
		return solana.Signature{}, nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	if err := e.waitForSignatureVisible(ctx, sig); err != nil {
		return sig, nil, fmt.Errorf("transaction dropped or rejected before cluster saw it: %w", err)
	}

	res, err := e.waitForTransactionFinalized(ctx, sig)
	if err != nil {
		return sig, nil, fmt.Errorf("failed to confirm transaction: %w", err)
	}

	return sig, res, nil
}

// waitForSignatureVisible polls for the cluster to first acknowledge the
// signature, backing off exponentially between checks so a quiet cluster
// isn't hammered while a busy one still gets fast confirmation.
func (e *Executor) waitForSignatureVisible(ctx context.Context, sig solana.Signature) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = e.waitForVisibleTimeout
	bo.RandomizationFactor = 0.2

	for {
		resp, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return err
		}
		if len(resp.Value) > 0 && resp.Value[0] != nil {
			return nil
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			return ErrSignatureNotSeen
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// waitForTransactionFinalized polls until the signature reaches finalized
// commitment, then fetches the finalized transaction and its metadata.
func (e *Executor) waitForTransactionFinalized(ctx context.Context, sig solana.Signature) (*solanarpc.GetTransactionResult, error) {
	e.log.Debug("waiting for transaction to finalize", "sig", sig)
	start := time.Now()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 0
	bo.RandomizationFactor = 0.2

	for {
		statusResp, err := e.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return nil, err
		}
		if len(statusResp.Value) == 0 {
			return nil, errors.New("transaction not found")
		}
		status := statusResp.Value[0]
		if status != nil {
			if status.Err != nil {
				return nil, fmt.Errorf("transaction failed on-chain: %v", status.Err)
			}
			if status.ConfirmationStatus == solanarpc.ConfirmationStatusFinalized {
				e.log.Debug("transaction finalized", "sig", sig, "duration", time.Since(start))
				break
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(bo.NextBackOff()):
		}
	}

	tx, err := e.rpc.GetTransaction(ctx, sig, &solanarpc.GetTransactionOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: solanarpc.CommitmentFinalized,
	})
	if err != nil {
		return nil, err
	}
	if tx == nil || tx.Meta == nil {
		return nil, errors.New("transaction not found or missing metadata after finalization")
	}
	return tx, nil
}

// parseFailingInstructionIndex extracts the failing instruction index from a
// Solana RPC error: {"err": {"InstructionError": [index, errorDetails]}}.
func parseFailingInstructionIndex(err error) (int, error) {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return -1, fmt.Errorf("not an RPC error: %w", ErrInstructionFailed)
	}

	data, ok := rpcErr.Data.(map[string]any)
	if !ok {
		return -1, fmt.Errorf("unexpected RPC error data type: %w", ErrInstructionFailed)
	}

	errField, ok := data["err"]
	if !ok {
		return -1, fmt.Errorf("no err field in RPC error: %w", ErrInstructionFailed)
	}

	errMap, ok := errField.(map[string]any)
	if !ok {
		return -1, fmt.Errorf("err field is not a map: %w", ErrInstructionFailed)
	}

	instructionError, ok := errMap["InstructionError"].([]any)
	if !ok || len(instructionError) < 2 {
		return -1, fmt.Errorf("no InstructionError in err: %w", ErrInstructionFailed)
	}

	switch idx := instructionError[0].(type) {
	case json.Number:
		i, err := idx.Int64()
		if err != nil {
			return -1, fmt.Errorf("failed to parse instruction index: %w", ErrInstructionFailed)
		}
		return int(i), nil
	case float64:
		return int(idx), nil
	default:
		return -1, fmt.Errorf("unexpected instruction index type %T: %w", idx, ErrInstructionFailed)
	}
}
