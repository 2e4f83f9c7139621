package feeEstimator

import (
	"fmt"
	"math/big"
)

const (
	// MaxActivityScore is the ceiling of the builder activity score. The
	// score saturates at roughly 20 deployed contracts; insensitivity above
	// that point is intended, not a rounding artifact.
	MaxActivityScore uint64 = 1000

	scorePerContract     uint64 = 50
	scoreWalletActive    uint64 = 10
	scoreBaseline        uint64 = 20
	defaultMinTxCount    uint64 = 10
	defaultMinContracts  uint64 = 1
	defaultMinBalanceWei        = 10_000_000_000_000_000 // 0.01 ether
)

// ActivitySnapshot is a point-in-time view of a builder's on-chain activity,
// assembled by the caller from a chain client and an indexer. The deployed
// contract count must come from a real indexing collaborator; it is never
// synthesized here.
type ActivitySnapshot struct {
	// TransactionCount is the number of transactions sent by the builder
	TransactionCount uint64
	// DeployedContractCount is the number of contracts the builder deployed
	DeployedContractCount uint64
	// Balance is the builder's balance in wei
	Balance *big.Int
	// WalletInitialized reports whether the caller holds an active signing
	// credential for the builder address
	WalletInitialized bool
}

// EligibilityThresholds configures the minimums a builder must meet. The
// zero value selects the defaults (10 transactions, 1 contract, 0.01 ether).
// Balance thresholds are wei, the same unit as ActivitySnapshot.Balance;
// decimal ether values must be converted before reaching this package.
type EligibilityThresholds struct {
	MinTransactionCount  uint64
	MinDeployedContracts uint64
	MinBalanceWei        *big.Int
}

// DefaultEligibilityThresholds returns the standard builder-rewards
// thresholds: 10 transactions, 1 deployed contract, 0.01 ether.
func DefaultEligibilityThresholds() EligibilityThresholds {
	return EligibilityThresholds{
		MinTransactionCount:  defaultMinTxCount,
		MinDeployedContracts: defaultMinContracts,
		MinBalanceWei:        big.NewInt(defaultMinBalanceWei),
	}
}

// EligibilityResult reports which reward criteria a builder meets along with
// a bounded activity score.
type EligibilityResult struct {
	HasMinimumActivity   bool
	HasDeployedContracts bool
	HasMinimumBalance    bool
	// OverallEligible is the conjunction of the three predicates above
	OverallEligible bool
	// ActivityScore is a heuristic engagement score in [0, MaxActivityScore]
	ActivityScore uint64
}

// ComputeEligibility evaluates a builder's activity snapshot against reward
// thresholds. The function is pure and deterministic: identical inputs
// always yield identical results.
//
// Parameters:
//   - snap: The activity snapshot to evaluate. Balance must be a
//     non-negative wei amount.
//   - th: Thresholds to apply. The zero value selects
//     DefaultEligibilityThresholds.
//
// Returns:
//   - *EligibilityResult: Predicate outcomes and the bounded activity score
//   - error: ErrInvalidInput if the snapshot or thresholds are out of domain
func ComputeEligibility(snap ActivitySnapshot, th EligibilityThresholds) (*EligibilityResult, error) {
	if snap.Balance == nil {
		return nil, fmt.Errorf("balance is required: %w", ErrInvalidInput)
	}
	if snap.Balance.Sign() < 0 {
		return nil, fmt.Errorf("balance %s is negative: %w", snap.Balance, ErrInvalidInput)
	}

	if th == (EligibilityThresholds{}) {
		th = DefaultEligibilityThresholds()
	}
	if th.MinBalanceWei == nil {
		return nil, fmt.Errorf("minimum balance threshold is required: %w", ErrInvalidInput)
	}
	if th.MinBalanceWei.Sign() < 0 {
		return nil, fmt.Errorf("minimum balance threshold %s is negative: %w", th.MinBalanceWei, ErrInvalidInput)
	}

	result := &EligibilityResult{
		HasMinimumActivity:   snap.TransactionCount >= th.MinTransactionCount,
		HasDeployedContracts: snap.DeployedContractCount >= th.MinDeployedContracts,
		HasMinimumBalance:    snap.Balance.Cmp(th.MinBalanceWei) >= 0,
		ActivityScore:        activityScore(snap),
	}
	result.OverallEligible = result.HasMinimumActivity &&
		result.HasDeployedContracts &&
		result.HasMinimumBalance

	return result, nil
}

// activityScore computes the capped engagement heuristic. The contract count
// is range-checked before multiplying so a pathological snapshot cannot wrap
// the uint64 arithmetic.
func activityScore(snap ActivitySnapshot) uint64 {
	if snap.DeployedContractCount >= MaxActivityScore/scorePerContract {
		return MaxActivityScore
	}
	score := snap.DeployedContractCount*scorePerContract + scoreBaseline
	if snap.WalletInitialized {
		score += scoreWalletActive
	}
	if score > MaxActivityScore {
		return MaxActivityScore
	}
	return score
}
