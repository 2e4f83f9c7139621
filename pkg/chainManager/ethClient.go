package chainManager

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EthClientInterface defines the chain-client methods this toolkit relies
// on: fee observation, account activity queries, and transaction submission.
// It is a narrowed view of ethclient.Client that allows mocking in tests.
type EthClientInterface interface {
	// Block operations
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)

	// Account operations
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)

	// Gas operations
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)

	// Transaction operations
	SendTransaction(ctx context.Context, tx *types.Transaction) error

	// Network identity
	ChainID(ctx context.Context) (*big.Int, error)
}
