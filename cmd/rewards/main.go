package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/wearedood/web3/pkg/builderTracker"
	"github.com/wearedood/web3/pkg/chainManager"
	"github.com/wearedood/web3/pkg/deployer"
	"github.com/wearedood/web3/pkg/feeEstimator"
	"github.com/wearedood/web3/pkg/leaderboard"
	"github.com/wearedood/web3/pkg/logger"
	"github.com/wearedood/web3/pkg/txSigner"
)

func main() {
	// Optional .env next to the binary; flags and real env vars win
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "rewards",
		Usage: "Base builder rewards toolkit",
		Description: `The rewards CLI wraps a Base RPC endpoint with convenience operations:
tiered gas fee recommendations, builder-rewards eligibility scoring,
score leaderboards with merkle commitments, and a transfer passthrough
priced from the live fee schedule.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
				EnvVars: []string{"DEBUG"},
			},
			&cli.StringFlag{
				Name:    "network",
				Aliases: []string{"n"},
				Usage:   "Named network to connect to ('base' or 'base-sepolia')",
				Value:   "base",
				EnvVars: []string{"NETWORK"},
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Custom RPC endpoint (overrides --network; requires --chain-id)",
				EnvVars: []string{"RPC_URL"},
			},
			&cli.Uint64Flag{
				Name:    "chain-id",
				Usage:   "Chain ID of the custom RPC endpoint",
				EnvVars: []string{"CHAIN_ID"},
			},
			// Transaction signing options
			&cli.StringFlag{
				Name:    "private-key",
				Usage:   "Private key for transaction signing (hex format, with or without 0x prefix)",
				EnvVars: []string{"PRIVATE_KEY"},
			},
			&cli.StringFlag{
				Name:    "kms-key-id",
				Usage:   "AWS KMS key ID for transaction signing",
				EnvVars: []string{"KMS_KEY_ID"},
			},
			&cli.StringFlag{
				Name:    "kms-region",
				Usage:   "AWS region for the transaction signing KMS key",
				Value:   "us-east-1",
				EnvVars: []string{"KMS_REGION"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "fees",
				Aliases: []string{"f"},
				Usage:   "Recommend a tiered gas fee schedule from the live base fee",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:    "fast-multiplier-bps",
						Usage:   "Fast tier multiplier in basis points of the observed fee (must exceed 10000)",
						Value:   feeEstimator.DefaultFastMultiplierBps,
						EnvVars: []string{"FAST_MULTIPLIER_BPS"},
					},
				},
				Action: feesAction,
			},
			{
				Name:      "score",
				Aliases:   []string{"s"},
				Usage:     "Evaluate a builder's rewards eligibility and activity score",
				ArgsUsage: "<address>",
				Flags:     thresholdFlags(),
				Action:    scoreAction,
			},
			{
				Name:      "leaderboard",
				Aliases:   []string{"lb"},
				Usage:     "Rank builders by activity score and print the merkle commitment root",
				ArgsUsage: "<address[:deployedContracts]>...",
				Flags:     thresholdFlags(),
				Action:    leaderboardAction,
			},
			{
				Name:  "send",
				Usage: "Send a value transfer priced from the live fee schedule",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Recipient address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "amount",
						Usage:    "Amount to send, in ether (e.g. '0.05')",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "tier",
						Usage: "Fee tier to price with ('slow', 'standard', or 'fast')",
						Value: string(deployer.TierStandard),
					},
					&cli.Uint64Flag{
						Name:    "fast-multiplier-bps",
						Usage:   "Fast tier multiplier in basis points of the observed fee",
						Value:   feeEstimator.DefaultFastMultiplierBps,
						EnvVars: []string{"FAST_MULTIPLIER_BPS"},
					},
				},
				Action: sendAction,
			},
		},
		Before: validateFlags,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// thresholdFlags are shared by the score and leaderboard commands.
func thresholdFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{
			Name:    "min-transactions",
			Usage:   "Minimum transaction count for eligibility",
			Value:   10,
			EnvVars: []string{"MIN_TRANSACTIONS"},
		},
		&cli.Uint64Flag{
			Name:    "min-contracts",
			Usage:   "Minimum deployed contract count for eligibility",
			Value:   1,
			EnvVars: []string{"MIN_CONTRACTS"},
		},
		&cli.StringFlag{
			Name:    "min-balance",
			Usage:   "Minimum balance for eligibility, in ether",
			Value:   "0.01",
			EnvVars: []string{"MIN_BALANCE"},
		},
		&cli.Uint64Flag{
			Name:  "deployed-contracts",
			Usage: "Deployed contract count supplied by an indexer (score command only)",
		},
	}
}

func validateFlags(c *cli.Context) error {
	if c.String("rpc-url") != "" && c.Uint64("chain-id") == 0 {
		return fmt.Errorf("--rpc-url requires --chain-id")
	}

	if c.String("private-key") != "" && c.String("kms-key-id") != "" {
		return fmt.Errorf("cannot specify both --private-key and --kms-key-id")
	}

	return nil
}

func setupLogger(c *cli.Context) (*zap.Logger, error) {
	return logger.NewLogger(&logger.LoggerConfig{
		Debug: c.Bool("debug"),
	})
}

func setupChain(c *cli.Context) (*chainManager.Chain, error) {
	var cfg *chainManager.ChainConfig
	if rpcURL := c.String("rpc-url"); rpcURL != "" {
		cfg = &chainManager.ChainConfig{
			ChainID: c.Uint64("chain-id"),
			RPCUrl:  rpcURL,
		}
	} else {
		knownCfg, err := chainManager.KnownNetwork(c.String("network"))
		if err != nil {
			return nil, err
		}
		cfg = knownCfg
	}

	cm := chainManager.NewChainManager()
	if err := cm.AddChain(cfg); err != nil {
		return nil, fmt.Errorf("failed to add chain %d: %w", cfg.ChainID, err)
	}

	return cm.GetChainForId(cfg.ChainID)
}

// setupSigner returns the configured transaction signer, or nil if no
// signing credential was supplied.
func setupSigner(c *cli.Context) (txSigner.ITransactionSigner, error) {
	if privateKey := c.String("private-key"); privateKey != "" {
		return txSigner.NewPrivateKeySigner(privateKey)
	}

	if kmsKeyID := c.String("kms-key-id"); kmsKeyID != "" {
		return txSigner.NewAWSKMSSigner(kmsKeyID, c.String("kms-region"))
	}

	return nil, nil
}

func setupThresholds(c *cli.Context) (feeEstimator.EligibilityThresholds, error) {
	minBalance, err := feeEstimator.EtherToWei(c.String("min-balance"))
	if err != nil {
		return feeEstimator.EligibilityThresholds{}, fmt.Errorf("invalid --min-balance: %w", err)
	}

	return feeEstimator.EligibilityThresholds{
		MinTransactionCount:  c.Uint64("min-transactions"),
		MinDeployedContracts: c.Uint64("min-contracts"),
		MinBalanceWei:        minBalance,
	}, nil
}

// fixedContractCounter adapts an indexer-reported count supplied on the
// command line to the tracker's ContractCounter seam.
type fixedContractCounter struct {
	counts map[common.Address]uint64
}

func (f *fixedContractCounter) DeployedContractCount(_ context.Context, builder common.Address) (uint64, error) {
	return f.counts[builder], nil
}

func parseBuilderAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid builder address: %s", raw)
	}
	return common.HexToAddress(raw), nil
}

func feesAction(c *cli.Context) error {
	l, err := setupLogger(c)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	chain, err := setupChain(c)
	if err != nil {
		return fmt.Errorf("failed to setup chain: %w", err)
	}

	ctx := context.Background()
	tracker := builderTracker.NewBuilderTracker(nil, chain.RPCClient, nil, nil, l)

	schedule, err := tracker.RecommendFees(ctx, feeEstimator.ScheduleConfig{
		FastMultiplierBps: c.Uint64("fast-multiplier-bps"),
	})
	if err != nil {
		return fmt.Errorf("failed to recommend fees: %w", err)
	}

	blockNumber, err := chain.RPCClient.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block number: %w", err)
	}
	fmt.Printf("Block:     %d\n", blockNumber)

	printTier := func(name string, tier feeEstimator.FeeTier) {
		fmt.Printf("%-10s fee cap %s gwei (%s wei), priority cap %s gwei (%s wei)\n",
			name,
			feeEstimator.FormatGwei(tier.FeeCap), tier.FeeCap,
			feeEstimator.FormatGwei(tier.PriorityCap), tier.PriorityCap,
		)
	}
	printTier("slow", schedule.Slow)
	printTier("standard", schedule.Standard)
	printTier("fast", schedule.Fast)

	return nil
}

func scoreAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one builder address argument")
	}
	builder, err := parseBuilderAddress(c.Args().First())
	if err != nil {
		return err
	}

	l, err := setupLogger(c)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	chain, err := setupChain(c)
	if err != nil {
		return fmt.Errorf("failed to setup chain: %w", err)
	}

	signer, err := setupSigner(c)
	if err != nil {
		return fmt.Errorf("failed to setup signer: %w", err)
	}

	thresholds, err := setupThresholds(c)
	if err != nil {
		return err
	}

	counter := &fixedContractCounter{
		counts: map[common.Address]uint64{builder: c.Uint64("deployed-contracts")},
	}
	tracker := builderTracker.NewBuilderTracker(nil, chain.RPCClient, counter, signer, l)

	result, err := tracker.CheckEligibility(context.Background(), builder, thresholds)
	if err != nil {
		return fmt.Errorf("failed to check eligibility: %w", err)
	}

	fmt.Printf("Builder:                 %s\n", builder.Hex())
	fmt.Printf("Minimum activity:        %v\n", result.HasMinimumActivity)
	fmt.Printf("Deployed contracts:      %v\n", result.HasDeployedContracts)
	fmt.Printf("Minimum balance:         %v\n", result.HasMinimumBalance)
	fmt.Printf("Overall eligible:        %v\n", result.OverallEligible)
	fmt.Printf("Activity score:          %d\n", result.ActivityScore)

	return nil
}

func leaderboardAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected one or more 'address[:deployedContracts]' arguments")
	}

	counts := make(map[common.Address]uint64)
	builders := make([]common.Address, 0, c.NArg())
	for _, arg := range c.Args().Slice() {
		parts := strings.SplitN(arg, ":", 2)
		builder, err := parseBuilderAddress(parts[0])
		if err != nil {
			return err
		}
		var contracts uint64
		if len(parts) == 2 {
			contracts, err = strconv.ParseUint(parts[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid deployed contract count in %q: %w", arg, err)
			}
		}
		builders = append(builders, builder)
		counts[builder] = contracts
	}

	l, err := setupLogger(c)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	chain, err := setupChain(c)
	if err != nil {
		return fmt.Errorf("failed to setup chain: %w", err)
	}

	thresholds, err := setupThresholds(c)
	if err != nil {
		return err
	}

	tracker := builderTracker.NewBuilderTracker(nil, chain.RPCClient, &fixedContractCounter{counts: counts}, nil, l)

	lb := leaderboard.NewLeaderboard()
	eligible := make(map[common.Address]bool, len(builders))
	for _, builder := range builders {
		result, err := tracker.CheckEligibility(context.Background(), builder, thresholds)
		if err != nil {
			return fmt.Errorf("failed to check eligibility for %s: %w", builder.Hex(), err)
		}
		lb.SetScore(builder, result.ActivityScore)
		eligible[builder] = result.OverallEligible
	}

	root, err := lb.CommitmentRoot()
	if err != nil {
		return fmt.Errorf("failed to compute commitment root: %w", err)
	}

	fmt.Printf("Builders:        %d\n", lb.Len())
	fmt.Printf("Commitment root: %s\n", hexutil.Encode(root[:]))
	for i, entry := range lb.RankedEntries() {
		fmt.Printf("  [%d] %s score=%d eligible=%v\n", i, entry.Builder.Hex(), entry.Score, eligible[entry.Builder])
	}

	return nil
}

func sendAction(c *cli.Context) error {
	to, err := parseBuilderAddress(c.String("to"))
	if err != nil {
		return err
	}

	amountWei, err := feeEstimator.EtherToWei(c.String("amount"))
	if err != nil {
		return fmt.Errorf("invalid --amount: %w", err)
	}

	l, err := setupLogger(c)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	chain, err := setupChain(c)
	if err != nil {
		return fmt.Errorf("failed to setup chain: %w", err)
	}

	signer, err := setupSigner(c)
	if err != nil {
		return fmt.Errorf("failed to setup signer: %w", err)
	}
	if signer == nil {
		return fmt.Errorf("send requires --private-key or --kms-key-id")
	}

	tracker := builderTracker.NewBuilderTracker(nil, chain.RPCClient, nil, signer, l)
	schedule, err := tracker.RecommendFees(context.Background(), feeEstimator.ScheduleConfig{
		FastMultiplierBps: c.Uint64("fast-multiplier-bps"),
	})
	if err != nil {
		return fmt.Errorf("failed to recommend fees: %w", err)
	}

	d, err := deployer.NewDeployer(chain.RPCClient, signer, l)
	if err != nil {
		return fmt.Errorf("failed to create deployer: %w", err)
	}

	tx, err := d.SubmitTransfer(context.Background(), to, amountWei, schedule, deployer.Tier(c.String("tier")))
	if err != nil {
		return fmt.Errorf("failed to submit transfer: %w", err)
	}

	fmt.Printf("Transaction: %s\n", tx.Hash().Hex())
	fmt.Printf("To:          %s\n", to.Hex())
	fmt.Printf("Amount:      %s wei\n", new(big.Int).Set(amountWei))
	fmt.Printf("Fee cap:     %s gwei\n", feeEstimator.FormatGwei(tx.GasFeeCap()))

	return nil
}
