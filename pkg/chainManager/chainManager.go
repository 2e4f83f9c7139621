// Package chainManager provides blockchain connection management for the
// Base toolkit. It maintains a registry of active RPC connections indexed by
// chain ID and knows the public endpoints of the supported Base networks.
package chainManager

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	// ErrChainNotFound is returned when a requested chain ID is not found in the manager
	ErrChainNotFound = errors.New("chain not found")
	// ErrUnknownNetwork is returned when a network name has no built-in configuration
	ErrUnknownNetwork = errors.New("unknown network")
)

const (
	// BaseMainnetChainID is the chain ID of the Base mainnet
	BaseMainnetChainID uint64 = 8453
	// BaseSepoliaChainID is the chain ID of the Base Sepolia testnet
	BaseSepoliaChainID uint64 = 84532
)

// IChainManager defines the interface for managing blockchain connections.
// Implementations provide the ability to add new chains and retrieve
// existing chain connections by their chain ID.
type IChainManager interface {
	// AddChain adds a new blockchain connection to the manager
	AddChain(cfg *ChainConfig) error
	// GetChainForId retrieves a chain connection by its chain ID
	GetChainForId(chainId uint64) (*Chain, error)
}

// ChainConfig holds the configuration for connecting to a blockchain.
type ChainConfig struct {
	// ChainID is the unique identifier for the blockchain network
	ChainID uint64
	// RPCUrl is the URL endpoint for connecting to the blockchain RPC
	RPCUrl string
}

// KnownNetwork returns the built-in configuration for a named Base network.
// Supported names are "base" (mainnet) and "base-sepolia".
//
// Parameters:
//   - name: The network name to look up
//
// Returns:
//   - *ChainConfig: The chain ID and public RPC endpoint for the network
//   - error: ErrUnknownNetwork if the name is not recognized
func KnownNetwork(name string) (*ChainConfig, error) {
	switch name {
	case "base":
		return &ChainConfig{ChainID: BaseMainnetChainID, RPCUrl: "https://mainnet.base.org"}, nil
	case "base-sepolia":
		return &ChainConfig{ChainID: BaseSepoliaChainID, RPCUrl: "https://sepolia.base.org"}, nil
	default:
		return nil, fmt.Errorf("network %q: %w", name, ErrUnknownNetwork)
	}
}

// Chain represents an active connection to a blockchain.
type Chain struct {
	config *ChainConfig
	// RPCClient is the active client connection for this chain
	RPCClient EthClientInterface
}

// ChainManager implements IChainManager and manages multiple blockchain
// connections. It maintains a registry of active chains indexed by their
// chain IDs. This implementation is thread-safe using sync.Map for
// concurrent access.
type ChainManager struct {
	Chains sync.Map // map[uint64]*Chain
}

// NewChainManager creates a new ChainManager with an empty chain registry.
func NewChainManager() *ChainManager {
	return &ChainManager{}
}

// AddChain adds a new blockchain connection to the manager.
// This method establishes a connection to the specified RPC URL and stores
// the resulting chain connection for future use. It is thread-safe and can
// be called concurrently.
//
// Parameters:
//   - cfg: The chain configuration containing chain ID and RPC URL
//
// Returns:
//   - error: An error if the chain already exists or connection fails
func (cm *ChainManager) AddChain(cfg *ChainConfig) error {
	if _, exists := cm.Chains.Load(cfg.ChainID); exists {
		return fmt.Errorf("chain with ID %d already exists", cfg.ChainID)
	}
	client, err := ethclient.Dial(cfg.RPCUrl)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC URL %s: %w", cfg.RPCUrl, err)
	}
	cm.Chains.Store(cfg.ChainID, &Chain{
		config:    cfg,
		RPCClient: client,
	})
	return nil
}

// GetChainForId retrieves a chain connection by its chain ID.
// It is thread-safe and can be called concurrently.
//
// Parameters:
//   - chainId: The chain ID to look up
//
// Returns:
//   - *Chain: The chain connection if found
//   - error: ErrChainNotFound if the chain ID is not registered
func (cm *ChainManager) GetChainForId(chainId uint64) (*Chain, error) {
	value, exists := cm.Chains.Load(chainId)
	if !exists {
		return nil, ErrChainNotFound
	}
	chain, ok := value.(*Chain)
	if !ok {
		return nil, fmt.Errorf("invalid chain type stored for ID %d", chainId)
	}
	return chain, nil
}
