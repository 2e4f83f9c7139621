// Package builderTracker assembles fee observations and builder activity
// snapshots from a chain client and feeds them through the fee estimator.
// It is the wrapper layer around the pure estimator core: all RPC access,
// retry handling, and collaborator wiring lives here, so the estimator
// itself stays free of I/O. Trackers are constructed explicitly with their
// dependencies; there are no package-level instances.
package builderTracker

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/wearedood/web3/pkg/chainManager"
	"github.com/wearedood/web3/pkg/feeEstimator"
	"github.com/wearedood/web3/pkg/txSigner"
)

// ContractCounter supplies the number of contracts a builder has deployed.
// The count must come from a real indexing backend; the tracker never
// synthesizes it. A nil counter reports zero deployed contracts.
type ContractCounter interface {
	// DeployedContractCount returns the number of contracts the builder
	// address has deployed
	DeployedContractCount(ctx context.Context, builder common.Address) (uint64, error)
}

// Config holds the configuration for a BuilderTracker.
type Config struct {
	// RetryInitialInterval is the first backoff delay for transient RPC
	// failures. Zero selects the backoff library default.
	RetryInitialInterval time.Duration
	// RetryMaxElapsed bounds the total time spent retrying a single fetch.
	// Zero selects DefaultRetryMaxElapsed.
	RetryMaxElapsed time.Duration
}

// DefaultRetryMaxElapsed bounds retries of a single RPC fetch.
const DefaultRetryMaxElapsed = 15 * time.Second

// BuilderTracker fetches live chain data and computes fee schedules and
// builder eligibility from it. The signer and contract counter are optional:
// without a signer the tracker reports an uninitialized wallet, and without
// a counter it reports zero deployed contracts.
type BuilderTracker struct {
	config    *Config
	ethClient chainManager.EthClientInterface
	counter   ContractCounter
	signer    txSigner.ITransactionSigner
	logger    *zap.Logger
}

// NewBuilderTracker creates a new BuilderTracker.
//
// Parameters:
//   - cfg: Tracker configuration; nil selects all defaults
//   - ec: The chain client used for fee and activity queries
//   - counter: Indexer collaborator for deployed-contract counts (may be nil)
//   - signer: Transaction signer whose presence marks the wallet initialized (may be nil)
//   - l: Logger for fetch and computation events
//
// Returns:
//   - *BuilderTracker: A new tracker instance
func NewBuilderTracker(
	cfg *Config,
	ec chainManager.EthClientInterface,
	counter ContractCounter,
	signer txSigner.ITransactionSigner,
	l *zap.Logger,
) *BuilderTracker {
	if cfg == nil {
		cfg = &Config{}
	}
	return &BuilderTracker{
		config:    cfg,
		ethClient: ec,
		counter:   counter,
		signer:    signer,
		logger:    l,
	}
}

// FetchFeeObservation reads the current base fee and suggested priority fee
// from the chain. Transient RPC failures are retried with exponential
// backoff; a chain that does not report an EIP-1559 base fee is a permanent
// error.
//
// Parameters:
//   - ctx: Context bounding the fetch, including its retries
//
// Returns:
//   - *feeEstimator.FeeObservation: The observed base and priority fees
//   - error: An error if the observation cannot be fetched
func (t *BuilderTracker) FetchFeeObservation(ctx context.Context) (*feeEstimator.FeeObservation, error) {
	var obs *feeEstimator.FeeObservation

	err := t.withRetry(ctx, func() error {
		header, err := t.ethClient.HeaderByNumber(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to fetch latest header: %w", err)
		}
		if header.BaseFee == nil {
			return backoff.Permanent(fmt.Errorf("chain does not report an EIP-1559 base fee"))
		}

		tipCap, err := t.ethClient.SuggestGasTipCap(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch suggested gas tip cap: %w", err)
		}

		obs = &feeEstimator.FeeObservation{
			BaseFee:     header.BaseFee,
			PriorityFee: tipCap,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Sugar().Debugw("Fetched fee observation",
		zap.String("baseFee", obs.BaseFee.String()),
		zap.String("priorityFee", obs.PriorityFee.String()),
	)
	return obs, nil
}

// FetchActivitySnapshot assembles a builder's activity snapshot: transaction
// count and balance from the chain client, deployed-contract count from the
// indexer collaborator, and wallet state from signer presence.
//
// Parameters:
//   - ctx: Context bounding the fetch, including its retries
//   - builder: The builder address to snapshot
//
// Returns:
//   - *feeEstimator.ActivitySnapshot: The assembled snapshot
//   - error: An error if any component cannot be fetched
func (t *BuilderTracker) FetchActivitySnapshot(ctx context.Context, builder common.Address) (*feeEstimator.ActivitySnapshot, error) {
	var snap *feeEstimator.ActivitySnapshot

	err := t.withRetry(ctx, func() error {
		nonce, err := t.ethClient.NonceAt(ctx, builder, nil)
		if err != nil {
			return fmt.Errorf("failed to fetch transaction count for %s: %w", builder.Hex(), err)
		}

		balance, err := t.ethClient.BalanceAt(ctx, builder, nil)
		if err != nil {
			return fmt.Errorf("failed to fetch balance for %s: %w", builder.Hex(), err)
		}

		var contracts uint64
		if t.counter != nil {
			contracts, err = t.counter.DeployedContractCount(ctx, builder)
			if err != nil {
				return fmt.Errorf("failed to fetch deployed contract count for %s: %w", builder.Hex(), err)
			}
		}

		snap = &feeEstimator.ActivitySnapshot{
			TransactionCount:      nonce,
			DeployedContractCount: contracts,
			Balance:               balance,
			WalletInitialized:     t.signer != nil,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Sugar().Debugw("Fetched activity snapshot",
		zap.String("builder", builder.Hex()),
		zap.Uint64("transactionCount", snap.TransactionCount),
		zap.Uint64("deployedContractCount", snap.DeployedContractCount),
		zap.String("balance", snap.Balance.String()),
		zap.Bool("walletInitialized", snap.WalletInitialized),
	)
	return snap, nil
}

// RecommendFees fetches a live fee observation and tiers it into a schedule.
//
// Parameters:
//   - ctx: Context bounding the fetch
//   - cfg: Schedule configuration passed through to the estimator
//
// Returns:
//   - *feeEstimator.FeeSchedule: The tiered recommendation
//   - error: An error if the observation cannot be fetched or is invalid
func (t *BuilderTracker) RecommendFees(ctx context.Context, cfg feeEstimator.ScheduleConfig) (*feeEstimator.FeeSchedule, error) {
	obs, err := t.FetchFeeObservation(ctx)
	if err != nil {
		return nil, err
	}

	schedule, err := feeEstimator.ComputeFeeSchedule(*obs, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fee schedule: %w", err)
	}

	t.logger.Sugar().Infow("Computed fee schedule",
		zap.String("slowFeeCap", schedule.Slow.FeeCap.String()),
		zap.String("standardFeeCap", schedule.Standard.FeeCap.String()),
		zap.String("fastFeeCap", schedule.Fast.FeeCap.String()),
	)
	return schedule, nil
}

// CheckEligibility fetches a builder's activity snapshot and evaluates it
// against the given reward thresholds.
//
// Parameters:
//   - ctx: Context bounding the fetch
//   - builder: The builder address to evaluate
//   - th: Thresholds passed through to the estimator; the zero value selects
//     the defaults
//
// Returns:
//   - *feeEstimator.EligibilityResult: The eligibility verdict and score
//   - error: An error if the snapshot cannot be fetched or is invalid
func (t *BuilderTracker) CheckEligibility(ctx context.Context, builder common.Address, th feeEstimator.EligibilityThresholds) (*feeEstimator.EligibilityResult, error) {
	snap, err := t.FetchActivitySnapshot(ctx, builder)
	if err != nil {
		return nil, err
	}

	result, err := feeEstimator.ComputeEligibility(*snap, th)
	if err != nil {
		return nil, fmt.Errorf("failed to compute eligibility: %w", err)
	}

	t.logger.Sugar().Infow("Computed builder eligibility",
		zap.String("builder", builder.Hex()),
		zap.Bool("overallEligible", result.OverallEligible),
		zap.Uint64("activityScore", result.ActivityScore),
	)
	return result, nil
}

// withRetry runs op with exponential backoff until it succeeds, returns a
// permanent error, or the configured elapsed budget runs out.
func (t *BuilderTracker) withRetry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	if t.config.RetryInitialInterval > 0 {
		b.InitialInterval = t.config.RetryInitialInterval
	}
	b.MaxElapsedTime = DefaultRetryMaxElapsed
	if t.config.RetryMaxElapsed > 0 {
		b.MaxElapsedTime = t.config.RetryMaxElapsed
	}

	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
