package txSigner

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known test vector: private key 0x01 and its derived address
const (
	testPrivateKeyHex = "0000000000000000000000000000000000000000000000000000000000000001"
	testAddressHex    = "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"
)

func TestNewPrivateKeySigner(t *testing.T) {
	signer, err := NewPrivateKeySigner(testPrivateKeyHex)

	require.NoError(t, err)
	address, err := signer.GetAddress()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddressHex), address)
}

func TestNewPrivateKeySigner_StripsHexPrefix(t *testing.T) {
	signer, err := NewPrivateKeySigner("0x" + testPrivateKeyHex)

	require.NoError(t, err)
	address, err := signer.GetAddress()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddressHex), address)
}

func TestNewPrivateKeySigner_InvalidKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{
			name: "not hex",
			key:  "zzzz",
		},
		{
			name: "empty",
			key:  "",
		},
		{
			name: "truncated",
			key:  "abcd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer, err := NewPrivateKeySigner(tt.key)

			assert.Nil(t, signer)
			assert.Error(t, err)
		})
	}
}

func TestPrivateKeySigner_GetTransactOpts(t *testing.T) {
	signer, err := NewPrivateKeySigner(testPrivateKeyHex)
	require.NoError(t, err)

	auth, err := signer.GetTransactOpts(context.Background(), big.NewInt(8453))

	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddressHex), auth.From)
	assert.False(t, auth.NoSend)
	assert.NotNil(t, auth.Signer)
}

func TestPrivateKeySigner_GetNoSendTransactOpts(t *testing.T) {
	signer, err := NewPrivateKeySigner(testPrivateKeyHex)
	require.NoError(t, err)

	auth, err := signer.GetNoSendTransactOpts(context.Background(), big.NewInt(8453))

	require.NoError(t, err)
	assert.True(t, auth.NoSend)
}
