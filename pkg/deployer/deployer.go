// Package deployer is the transaction submission passthrough of the Base
// toolkit. It builds EIP-1559 transactions priced from a fee schedule tier,
// signs them through an ITransactionSigner, and hands them to the chain
// client. There is no control logic beyond tier selection; estimation and
// broadcast are delegated entirely to the client.
package deployer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/wearedood/web3/pkg/chainManager"
	"github.com/wearedood/web3/pkg/feeEstimator"
	"github.com/wearedood/web3/pkg/txSigner"
)

// Tier selects which fee schedule tier prices a transaction.
type Tier string

const (
	TierSlow     Tier = "slow"
	TierStandard Tier = "standard"
	TierFast     Tier = "fast"
)

// ErrUnknownTier is returned when a tier name is not slow, standard, or fast
var ErrUnknownTier = errors.New("unknown fee tier")

// Deployer submits transfers and contract deployments priced from a fee
// schedule.
type Deployer struct {
	ethClient chainManager.EthClientInterface
	signer    txSigner.ITransactionSigner
	logger    *zap.Logger
}

// NewDeployer creates a new Deployer.
//
// Parameters:
//   - ec: The chain client used for nonce lookup, gas estimation, and broadcast
//   - signer: The transaction signer; required
//   - l: Logger for submission events
//
// Returns:
//   - *Deployer: A new deployer instance
//   - error: An error if no signer is configured
func NewDeployer(ec chainManager.EthClientInterface, signer txSigner.ITransactionSigner, l *zap.Logger) (*Deployer, error) {
	if signer == nil {
		return nil, fmt.Errorf("a transaction signer is required")
	}
	return &Deployer{
		ethClient: ec,
		signer:    signer,
		logger:    l,
	}, nil
}

// SubmitTransfer sends a value transfer priced by the given schedule tier.
//
// Parameters:
//   - ctx: Context for the submission
//   - to: Recipient address
//   - amountWei: Transfer value in wei
//   - schedule: The fee schedule to price from
//   - tier: Which tier of the schedule to use
//
// Returns:
//   - *types.Transaction: The signed, broadcast transaction
//   - error: An error if the transaction cannot be built, signed, or sent
func (d *Deployer) SubmitTransfer(
	ctx context.Context,
	to common.Address,
	amountWei *big.Int,
	schedule *feeEstimator.FeeSchedule,
	tier Tier,
) (*types.Transaction, error) {
	return d.submit(ctx, &to, amountWei, nil, schedule, tier)
}

// DeployContract submits a contract creation transaction carrying the given
// init bytecode, priced by the given schedule tier.
//
// Parameters:
//   - ctx: Context for the submission
//   - bytecode: Contract init code
//   - schedule: The fee schedule to price from
//   - tier: Which tier of the schedule to use
//
// Returns:
//   - *types.Transaction: The signed, broadcast transaction
//   - common.Address: The address the contract will be created at
//   - error: An error if the transaction cannot be built, signed, or sent
func (d *Deployer) DeployContract(
	ctx context.Context,
	bytecode []byte,
	schedule *feeEstimator.FeeSchedule,
	tier Tier,
) (*types.Transaction, common.Address, error) {
	if len(bytecode) == 0 {
		return nil, common.Address{}, fmt.Errorf("contract bytecode is empty")
	}

	tx, err := d.submit(ctx, nil, big.NewInt(0), bytecode, schedule, tier)
	if err != nil {
		return nil, common.Address{}, err
	}

	from, err := d.signer.GetAddress()
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("failed to get signer address: %w", err)
	}

	return tx, crypto.CreateAddress(from, tx.Nonce()), nil
}

// submit builds, signs, and broadcasts a dynamic-fee transaction.
func (d *Deployer) submit(
	ctx context.Context,
	to *common.Address,
	amountWei *big.Int,
	data []byte,
	schedule *feeEstimator.FeeSchedule,
	tier Tier,
) (*types.Transaction, error) {
	feeCap, tipCap, err := tierCaps(schedule, tier)
	if err != nil {
		return nil, err
	}

	from, err := d.signer.GetAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to get signer address: %w", err)
	}

	chainID, err := d.ethClient.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	nonce, err := d.ethClient.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending nonce for %s: %w", from.Hex(), err)
	}

	gasLimit, err := d.ethClient.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    to,
		Value: amountWei,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        to,
		Value:     amountWei,
		Data:      data,
	})

	auth, err := d.signer.GetNoSendTransactOpts(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transact opts: %w", err)
	}

	signedTx, err := auth.Signer(from, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := d.ethClient.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	d.logger.Sugar().Infow("Submitted transaction",
		zap.String("hash", signedTx.Hash().Hex()),
		zap.String("from", from.Hex()),
		zap.String("tier", string(tier)),
		zap.String("feeCap", feeCap.String()),
		zap.String("tipCap", tipCap.String()),
		zap.Uint64("gasLimit", gasLimit),
		zap.String("data", hexutil.Encode(data)),
	)
	return signedTx, nil
}

// tierCaps picks the fee and priority caps for a tier of the schedule.
func tierCaps(schedule *feeEstimator.FeeSchedule, tier Tier) (*big.Int, *big.Int, error) {
	if schedule == nil {
		return nil, nil, fmt.Errorf("a fee schedule is required")
	}
	switch tier {
	case TierSlow:
		return schedule.Slow.FeeCap, schedule.Slow.PriorityCap, nil
	case TierStandard:
		return schedule.Standard.FeeCap, schedule.Standard.PriorityCap, nil
	case TierFast:
		return schedule.Fast.FeeCap, schedule.Fast.PriorityCap, nil
	default:
		return nil, nil, fmt.Errorf("tier %q: %w", tier, ErrUnknownTier)
	}
}
