package feeEstimator

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

// EtherToWei converts a decimal ether amount, given as a string, into wei.
// This is the single conversion point between the decimal display domain and
// the wei domain the estimator operates in; callers must convert thresholds
// here rather than comparing decimal values against wei integers.
//
// Parameters:
//   - ether: Decimal ether amount, e.g. "0.01"
//
// Returns:
//   - *big.Int: The equivalent wei amount
//   - error: ErrInvalidInput if the value is not a non-negative decimal or
//     has sub-wei precision
func EtherToWei(ether string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(ether)
	if !ok {
		return nil, fmt.Errorf("cannot parse ether amount %q: %w", ether, ErrInvalidInput)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("ether amount %q is negative: %w", ether, ErrInvalidInput)
	}

	r.Mul(r, new(big.Rat).SetUint64(params.Ether))
	if !r.IsInt() {
		return nil, fmt.Errorf("ether amount %q has sub-wei precision: %w", ether, ErrInvalidInput)
	}
	return new(big.Int).Set(r.Num()), nil
}

// FormatGwei renders a wei amount as a decimal gwei string with three
// fractional digits, for display only.
func FormatGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return new(big.Rat).SetFrac(wei, new(big.Int).SetUint64(params.GWei)).FloatString(3)
}
