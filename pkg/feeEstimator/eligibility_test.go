package feeEstimator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEligibility_MeetsAllDefaults(t *testing.T) {
	minBalance, err := EtherToWei("0.01")
	require.NoError(t, err)

	result, err := ComputeEligibility(ActivitySnapshot{
		TransactionCount:      10,
		DeployedContractCount: 1,
		Balance:               minBalance,
		WalletInitialized:     true,
	}, DefaultEligibilityThresholds())

	require.NoError(t, err)
	assert.True(t, result.HasMinimumActivity)
	assert.True(t, result.HasDeployedContracts)
	assert.True(t, result.HasMinimumBalance)
	assert.True(t, result.OverallEligible)
}

func TestComputeEligibility_ZeroThresholdsSelectDefaults(t *testing.T) {
	snap := ActivitySnapshot{
		TransactionCount:      9,
		DeployedContractCount: 1,
		Balance:               big.NewInt(defaultMinBalanceWei),
	}

	explicit, err := ComputeEligibility(snap, DefaultEligibilityThresholds())
	require.NoError(t, err)
	zeroValue, err := ComputeEligibility(snap, EligibilityThresholds{})
	require.NoError(t, err)

	assert.Equal(t, explicit, zeroValue)
}

func TestComputeEligibility_BelowTransactionMinimum(t *testing.T) {
	result, err := ComputeEligibility(ActivitySnapshot{
		TransactionCount:      9,
		DeployedContractCount: 1,
		Balance:               big.NewInt(defaultMinBalanceWei),
	}, DefaultEligibilityThresholds())

	require.NoError(t, err)
	assert.False(t, result.HasMinimumActivity)
	assert.True(t, result.HasDeployedContracts)
	assert.True(t, result.HasMinimumBalance)
	assert.False(t, result.OverallEligible)
}

func TestComputeEligibility_BelowBalanceMinimum(t *testing.T) {
	result, err := ComputeEligibility(ActivitySnapshot{
		TransactionCount:      100,
		DeployedContractCount: 5,
		Balance:               big.NewInt(defaultMinBalanceWei - 1),
	}, DefaultEligibilityThresholds())

	require.NoError(t, err)
	assert.False(t, result.HasMinimumBalance)
	assert.False(t, result.OverallEligible)
}

func TestComputeEligibility_NoDeployedContracts(t *testing.T) {
	result, err := ComputeEligibility(ActivitySnapshot{
		TransactionCount: 50,
		Balance:          big.NewInt(defaultMinBalanceWei),
	}, DefaultEligibilityThresholds())

	require.NoError(t, err)
	assert.False(t, result.HasDeployedContracts)
	assert.False(t, result.OverallEligible)
}

func TestComputeEligibility_ActivityScore(t *testing.T) {
	tests := []struct {
		name              string
		contracts         uint64
		walletInitialized bool
		expectedScore     uint64
	}{
		{
			name:          "no contracts no wallet yields baseline",
			expectedScore: 20,
		},
		{
			name:              "wallet only",
			walletInitialized: true,
			expectedScore:     30,
		},
		{
			name:          "one contract",
			contracts:     1,
			expectedScore: 70,
		},
		{
			name:              "nineteen contracts with wallet stays below cap",
			contracts:         19,
			walletInitialized: true,
			expectedScore:     980,
		},
		{
			name:          "twenty contracts saturates without wallet",
			contracts:     20,
			expectedScore: 1000,
		},
		{
			name:              "twenty contracts saturates with wallet",
			contracts:         20,
			walletInitialized: true,
			expectedScore:     1000,
		},
		{
			name:              "huge contract count stays capped",
			contracts:         1 << 60,
			walletInitialized: true,
			expectedScore:     1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeEligibility(ActivitySnapshot{
				DeployedContractCount: tt.contracts,
				Balance:               big.NewInt(0),
				WalletInitialized:     tt.walletInitialized,
			}, DefaultEligibilityThresholds())

			require.NoError(t, err)
			assert.Equal(t, tt.expectedScore, result.ActivityScore)
			assert.LessOrEqual(t, result.ActivityScore, MaxActivityScore)
		})
	}
}

func TestComputeEligibility_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		snap ActivitySnapshot
		th   EligibilityThresholds
	}{
		{
			name: "nil balance",
			snap: ActivitySnapshot{},
			th:   DefaultEligibilityThresholds(),
		},
		{
			name: "negative balance",
			snap: ActivitySnapshot{Balance: big.NewInt(-1)},
			th:   DefaultEligibilityThresholds(),
		},
		{
			name: "partial thresholds without balance minimum",
			snap: ActivitySnapshot{Balance: big.NewInt(1)},
			th:   EligibilityThresholds{MinTransactionCount: 5},
		},
		{
			name: "negative balance threshold",
			snap: ActivitySnapshot{Balance: big.NewInt(1)},
			th:   EligibilityThresholds{MinBalanceWei: big.NewInt(-1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeEligibility(tt.snap, tt.th)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestEtherToWei(t *testing.T) {
	tests := []struct {
		name     string
		ether    string
		expected *big.Int
	}{
		{
			name:     "one ether",
			ether:    "1",
			expected: new(big.Int).SetUint64(1_000_000_000_000_000_000),
		},
		{
			name:     "hundredth of an ether",
			ether:    "0.01",
			expected: big.NewInt(10_000_000_000_000_000),
		},
		{
			name:     "zero",
			ether:    "0",
			expected: big.NewInt(0),
		},
		{
			name:     "single wei",
			ether:    "0.000000000000000001",
			expected: big.NewInt(1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, err := EtherToWei(tt.ether)

			require.NoError(t, err)
			assert.Zero(t, tt.expected.Cmp(wei))
		})
	}
}

func TestEtherToWei_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		ether string
	}{
		{
			name:  "not a number",
			ether: "abc",
		},
		{
			name:  "empty",
			ether: "",
		},
		{
			name:  "negative",
			ether: "-0.5",
		},
		{
			name:  "sub-wei precision",
			ether: "0.0000000000000000001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, err := EtherToWei(tt.ether)

			assert.Nil(t, wei)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestFormatGwei(t *testing.T) {
	assert.Equal(t, "1.000", FormatGwei(big.NewInt(1_000_000_000)))
	assert.Equal(t, "0.250", FormatGwei(big.NewInt(250_000_000)))
	assert.Equal(t, "0", FormatGwei(nil))
}
