// Package feeEstimator provides fee tiering and builder activity scoring for
// Base networks. Given a raw base fee observation it produces a three-tier
// fee schedule (slow, standard, fast), and given an activity snapshot it
// produces a bounded builder-rewards eligibility result. All arithmetic is
// performed on *big.Int wei values; percentages are applied as integer
// basis-point ratios so tier values always truncate toward zero and never
// round above the observed fee.
package feeEstimator

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrInvalidInput is returned when an observation, snapshot, or
	// configuration value is outside its valid domain. It indicates a bug
	// in the caller's data assembly and is never worth retrying.
	ErrInvalidInput = errors.New("invalid input")
)

const (
	// DefaultFastMultiplierBps is the default fast-tier multiplier,
	// expressed in basis points of the observed fee (12500 = 1.25x).
	DefaultFastMultiplierBps uint64 = 12500

	// slowMultiplierBps prices the slow tier at 90% of the observed fee.
	slowMultiplierBps uint64 = 9000

	bpsDenominator = 10000
)

// FeeObservation is a point-in-time reading of network fee conditions,
// supplied by a chain-client collaborator. PriorityFee may be nil, which is
// treated as zero.
type FeeObservation struct {
	// BaseFee is the protocol base fee per gas, in wei
	BaseFee *big.Int
	// PriorityFee is the suggested priority fee per gas, in wei (optional)
	PriorityFee *big.Int
}

// FeeTier holds the per-gas caps for a single urgency level.
type FeeTier struct {
	// FeeCap is the maximum total fee per gas, in wei
	FeeCap *big.Int
	// PriorityCap is the maximum priority fee per gas, in wei
	PriorityCap *big.Int
}

// FeeSchedule is a three-tier fee recommendation derived from a single
// observation. Tiers are monotonic: Slow <= Standard <= Fast on both the fee
// and priority components.
type FeeSchedule struct {
	Slow     FeeTier
	Standard FeeTier
	Fast     FeeTier
}

// ScheduleConfig controls fee schedule computation.
type ScheduleConfig struct {
	// FastMultiplierBps is the fast-tier multiplier in basis points of the
	// observed fee. Zero selects DefaultFastMultiplierBps. Values of 10000
	// (1.0x) or below are rejected.
	FastMultiplierBps uint64
}

// ComputeFeeSchedule derives a three-tier fee schedule from a fee
// observation. The slow tier is 90% of the observation, the standard tier is
// the observation itself, and the fast tier is the observation scaled by the
// configured multiplier. The same ratios are applied independently to the
// base and priority components. The computation is pure: it performs no I/O
// and never mutates its inputs.
//
// Parameters:
//   - obs: The fee observation to tier. BaseFee must be a non-negative
//     integer; a nil PriorityFee defaults to zero.
//   - cfg: Schedule configuration. A zero FastMultiplierBps selects the
//     default of 12500 (1.25x).
//
// Returns:
//   - *FeeSchedule: The tiered schedule, with slow <= standard <= fast
//   - error: ErrInvalidInput if the observation or configuration is out of
//     domain
func ComputeFeeSchedule(obs FeeObservation, cfg ScheduleConfig) (*FeeSchedule, error) {
	if obs.BaseFee == nil {
		return nil, fmt.Errorf("base fee is required: %w", ErrInvalidInput)
	}
	if obs.BaseFee.Sign() < 0 {
		return nil, fmt.Errorf("base fee %s is negative: %w", obs.BaseFee, ErrInvalidInput)
	}

	priorityFee := obs.PriorityFee
	if priorityFee == nil {
		priorityFee = big.NewInt(0)
	}
	if priorityFee.Sign() < 0 {
		return nil, fmt.Errorf("priority fee %s is negative: %w", priorityFee, ErrInvalidInput)
	}

	fastBps := cfg.FastMultiplierBps
	if fastBps == 0 {
		fastBps = DefaultFastMultiplierBps
	}
	if fastBps <= bpsDenominator {
		return nil, fmt.Errorf("fast multiplier %d bps must exceed %d: %w", fastBps, bpsDenominator, ErrInvalidInput)
	}

	return &FeeSchedule{
		Slow: FeeTier{
			FeeCap:      scaleBps(obs.BaseFee, slowMultiplierBps),
			PriorityCap: scaleBps(priorityFee, slowMultiplierBps),
		},
		Standard: FeeTier{
			FeeCap:      new(big.Int).Set(obs.BaseFee),
			PriorityCap: new(big.Int).Set(priorityFee),
		},
		Fast: FeeTier{
			FeeCap:      scaleBps(obs.BaseFee, fastBps),
			PriorityCap: scaleBps(priorityFee, fastBps),
		},
	}, nil
}

// scaleBps returns floor(value * bps / 10000). For non-negative values
// big.Int division truncates toward zero, which is exactly the floor
// semantics fee tiering requires.
func scaleBps(value *big.Int, bps uint64) *big.Int {
	scaled := new(big.Int).Mul(value, new(big.Int).SetUint64(bps))
	return scaled.Div(scaled, big.NewInt(bpsDenominator))
}
