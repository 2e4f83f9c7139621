// Package txSigner provides Ethereum transaction signing for the Base
// toolkit. It defines the signing interface used by the deploy/send
// passthrough and ships implementations backed by raw private keys and AWS
// KMS.
package txSigner

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ITransactionSigner defines the interface for signing Ethereum transactions.
// Implementations produce properly configured transaction options for use
// with go-ethereum contract bindings, supporting different signing backends.
type ITransactionSigner interface {
	// GetTransactOpts returns bind.TransactOpts configured for the signer.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - chainID: The chain ID for the target blockchain
	//
	// Returns:
	//   - *bind.TransactOpts: Configured transaction options for the signer
	//   - error: An error if transaction options cannot be created
	GetTransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)

	// GetNoSendTransactOpts returns transaction options that sign but do not
	// broadcast, for callers that submit through their own client.
	GetNoSendTransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)

	// GetAddress returns the Ethereum address associated with this signer.
	// This address is used as the 'from' field in transactions.
	GetAddress() (common.Address, error)
}
