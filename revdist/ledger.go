package revdist

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ledgerRPCClient is the minimal RPC surface needed to read record accounts off the DZ Ledger.
type ledgerRPCClient interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// RPCLedgerClient implements LedgerRecordClient against a DZ Ledger RPC endpoint, fetching a
// record account's raw data the same way a Solana RPC client fetches any other account.
type RPCLedgerClient struct {
	rpc ledgerRPCClient
}

// NewRPCLedgerClient wraps a Solana-RPC-compatible client (pointed at a DZ Ledger RPC URL) as
// a LedgerRecordClient.
func NewRPCLedgerClient(rpc ledgerRPCClient) *RPCLedgerClient {
	return &RPCLedgerClient{rpc: rpc}
}

func (c *RPCLedgerClient) GetRecordData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	result, err := c.rpc.GetAccountInfo(ctx, account)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, ErrAccountNotFound
	}
	return result.Value.Data.GetBinary(), nil
}
