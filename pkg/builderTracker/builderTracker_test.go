package builderTracker

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wearedood/web3/pkg/chainManager"
	"github.com/wearedood/web3/pkg/feeEstimator"
	"github.com/wearedood/web3/pkg/txSigner"
)

var testBuilder = common.HexToAddress("0x1234567890123456789012345678901234567890")

// fixedContractCounter is a stub indexer returning a constant count.
type fixedContractCounter struct {
	count uint64
	err   error
}

func (f *fixedContractCounter) DeployedContractCount(_ context.Context, _ common.Address) (uint64, error) {
	return f.count, f.err
}

// fastRetryConfig keeps backoff delays negligible in tests.
func fastRetryConfig() *Config {
	return &Config{
		RetryInitialInterval: time.Millisecond,
		RetryMaxElapsed:      50 * time.Millisecond,
	}
}

func setupTestTracker(t *testing.T, counter ContractCounter, signer txSigner.ITransactionSigner) (*BuilderTracker, *chainManager.MockEthClientInterface) {
	mockEthClient := chainManager.NewMockEthClientInterface(t)
	logger, _ := zap.NewDevelopment()

	tracker := NewBuilderTracker(fastRetryConfig(), mockEthClient, counter, signer, logger)
	require.NotNil(t, tracker)

	return tracker, mockEthClient
}

func TestBuilderTracker_FetchFeeObservation(t *testing.T) {
	tracker, mockEthClient := setupTestTracker(t, nil, nil)

	mockEthClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).
		Return(&types.Header{BaseFee: big.NewInt(1_000_000_000)}, nil)
	mockEthClient.On("SuggestGasTipCap", mock.Anything).
		Return(big.NewInt(2_000_000), nil)

	obs, err := tracker.FetchFeeObservation(context.Background())

	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000), obs.BaseFee)
	assert.Equal(t, big.NewInt(2_000_000), obs.PriorityFee)
}

func TestBuilderTracker_FetchFeeObservation_RetriesTransientErrors(t *testing.T) {
	tracker, mockEthClient := setupTestTracker(t, nil, nil)

	mockEthClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).
		Return((*types.Header)(nil), errors.New("connection reset")).Once()
	mockEthClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).
		Return(&types.Header{BaseFee: big.NewInt(5)}, nil)
	mockEthClient.On("SuggestGasTipCap", mock.Anything).
		Return(big.NewInt(1), nil)

	obs, err := tracker.FetchFeeObservation(context.Background())

	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), obs.BaseFee)
}

func TestBuilderTracker_FetchFeeObservation_NoBaseFeeIsPermanent(t *testing.T) {
	tracker, mockEthClient := setupTestTracker(t, nil, nil)

	// A pre-London header has no base fee; the tracker must not retry it
	mockEthClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).
		Return(&types.Header{}, nil).Once()

	obs, err := tracker.FetchFeeObservation(context.Background())

	assert.Nil(t, obs)
	assert.ErrorContains(t, err, "base fee")
}

func TestBuilderTracker_FetchFeeObservation_ExhaustsRetries(t *testing.T) {
	tracker, mockEthClient := setupTestTracker(t, nil, nil)

	rpcErr := errors.New("boom")
	mockEthClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).
		Return((*types.Header)(nil), rpcErr)

	obs, err := tracker.FetchFeeObservation(context.Background())

	assert.Nil(t, obs)
	assert.ErrorIs(t, err, rpcErr)
}

func TestBuilderTracker_FetchActivitySnapshot(t *testing.T) {
	signer, err := txSigner.NewPrivateKeySigner("0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	counter := &fixedContractCounter{count: 3}
	tracker, mockEthClient := setupTestTracker(t, counter, signer)

	mockEthClient.On("NonceAt", mock.Anything, testBuilder, (*big.Int)(nil)).
		Return(uint64(42), nil)
	mockEthClient.On("BalanceAt", mock.Anything, testBuilder, (*big.Int)(nil)).
		Return(big.NewInt(10_000_000_000_000_000), nil)

	snap, err := tracker.FetchActivitySnapshot(context.Background(), testBuilder)

	require.NoError(t, err)
	assert.Equal(t, uint64(42), snap.TransactionCount)
	assert.Equal(t, uint64(3), snap.DeployedContractCount)
	assert.Equal(t, big.NewInt(10_000_000_000_000_000), snap.Balance)
	assert.True(t, snap.WalletInitialized)
}

func TestBuilderTracker_FetchActivitySnapshot_NoCounterNoSigner(t *testing.T) {
	tracker, mockEthClient := setupTestTracker(t, nil, nil)

	mockEthClient.On("NonceAt", mock.Anything, testBuilder, (*big.Int)(nil)).
		Return(uint64(7), nil)
	mockEthClient.On("BalanceAt", mock.Anything, testBuilder, (*big.Int)(nil)).
		Return(big.NewInt(0), nil)

	snap, err := tracker.FetchActivitySnapshot(context.Background(), testBuilder)

	require.NoError(t, err)
	assert.Zero(t, snap.DeployedContractCount)
	assert.False(t, snap.WalletInitialized)
}

func TestBuilderTracker_FetchActivitySnapshot_CounterError(t *testing.T) {
	counter := &fixedContractCounter{err: errors.New("indexer unavailable")}
	tracker, mockEthClient := setupTestTracker(t, counter, nil)

	mockEthClient.On("NonceAt", mock.Anything, testBuilder, (*big.Int)(nil)).
		Return(uint64(1), nil)
	mockEthClient.On("BalanceAt", mock.Anything, testBuilder, (*big.Int)(nil)).
		Return(big.NewInt(1), nil)

	snap, err := tracker.FetchActivitySnapshot(context.Background(), testBuilder)

	assert.Nil(t, snap)
	assert.ErrorContains(t, err, "deployed contract count")
}

func TestBuilderTracker_RecommendFees(t *testing.T) {
	tracker, mockEthClient := setupTestTracker(t, nil, nil)

	mockEthClient.On("HeaderByNumber", mock.Anything, (*big.Int)(nil)).
		Return(&types.Header{BaseFee: big.NewInt(1_000_000_000)}, nil)
	mockEthClient.On("SuggestGasTipCap", mock.Anything).
		Return(big.NewInt(100_000_000), nil)

	schedule, err := tracker.RecommendFees(context.Background(), feeEstimator.ScheduleConfig{})

	require.NoError(t, err)
	assert.Equal(t, big.NewInt(900_000_000), schedule.Slow.FeeCap)
	assert.Equal(t, big.NewInt(1_000_000_000), schedule.Standard.FeeCap)
	assert.Equal(t, big.NewInt(1_250_000_000), schedule.Fast.FeeCap)
}

func TestBuilderTracker_CheckEligibility(t *testing.T) {
	counter := &fixedContractCounter{count: 2}
	tracker, mockEthClient := setupTestTracker(t, counter, nil)

	mockEthClient.On("NonceAt", mock.Anything, testBuilder, (*big.Int)(nil)).
		Return(uint64(25), nil)
	mockEthClient.On("BalanceAt", mock.Anything, testBuilder, (*big.Int)(nil)).
		Return(big.NewInt(20_000_000_000_000_000), nil)

	result, err := tracker.CheckEligibility(context.Background(), testBuilder, feeEstimator.EligibilityThresholds{})

	require.NoError(t, err)
	assert.True(t, result.OverallEligible)
	assert.Equal(t, uint64(120), result.ActivityScore)
}

func TestBuilderTracker_CheckEligibility_BelowThresholds(t *testing.T) {
	tracker, mockEthClient := setupTestTracker(t, nil, nil)

	mockEthClient.On("NonceAt", mock.Anything, testBuilder, (*big.Int)(nil)).
		Return(uint64(3), nil)
	mockEthClient.On("BalanceAt", mock.Anything, testBuilder, (*big.Int)(nil)).
		Return(big.NewInt(1), nil)

	result, err := tracker.CheckEligibility(context.Background(), testBuilder, feeEstimator.EligibilityThresholds{})

	require.NoError(t, err)
	assert.False(t, result.HasMinimumActivity)
	assert.False(t, result.HasDeployedContracts)
	assert.False(t, result.HasMinimumBalance)
	assert.False(t, result.OverallEligible)
	assert.Equal(t, uint64(20), result.ActivityScore)
}
