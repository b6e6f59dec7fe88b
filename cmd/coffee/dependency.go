package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"buymeacoffee/chain"
	"buymeacoffee/coffee"
	"buymeacoffee/config"
	"buymeacoffee/contract"
	"buymeacoffee/metrics"
	"buymeacoffee/wallet"
)

var (
	cfg         *config.Config
	logger      *zap.Logger
	registry    *prometheus.Registry
	localWallet *wallet.LocalWallet
	session     *coffee.Session

	// assumeYes skips the signature prompt.
	assumeYes bool

	shutdownOnce sync.Once
)

func defaultDependencyInject() error {
	var err error
	cfg, err = config.Read(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		if cfg.LogLevel, err = zapcore.ParseLevel(logLevel); err != nil {
			return fmt.Errorf("%w: %q", config.ErrInvalidLogLevel, logLevel)
		}
	}

	logger, err = newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("unable to create logger: %w", err)
	}

	registry = prometheus.NewRegistry()
	m := metrics.New(registry)

	deployments := contract.DefaultRegistry()
	if cfg.ContractAddress != nil {
		deployments = deployments.With(cfg.Network.ChainID, *cfg.ContractAddress)
	}

	opts := []coffee.Option{
		coffee.WithRegistry(deployments),
		coffee.WithLogger(logger),
		coffee.WithMetrics(m),
		coffee.WithPhaseHook(func(p coffee.Phase) {
			logger.Debug("donation phase", zap.Stringer("phase", p))
		}),
	}

	// Without a key the session behaves as if no wallet is installed.
	if !cfg.HasWallet() {
		session = coffee.NewSession(nil, cfg.Network, opts...)
		return nil
	}

	walletOpts := []wallet.Option{
		wallet.WithLogger(logger.Named("wallet")),
		wallet.WithApprover(approve),
	}
	for id, url := range cfg.WalletNetworks {
		walletOpts = append(walletOpts, wallet.WithNetwork(id, url))
	}
	// The wallet starts on the first extra network when one is configured,
	// so the reconciler has something to switch away from.
	startID, startURL := cfg.Network.ChainID, cfg.Network.RPCURL
	if id, url, ok := firstExtraNetwork(cfg.WalletNetworks, cfg.Network.ChainID); ok {
		startID, startURL = id, url
	}
	localWallet, err = wallet.NewLocalWallet(cfg.PrivateKey, startID, startURL, walletOpts...)
	if err != nil {
		return fmt.Errorf("unable to load wallet: %w", err)
	}
	session = coffee.NewSession(localWallet, cfg.Network, opts...)
	return nil
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func firstExtraNetwork(networks map[uint64]string, target uint64) (uint64, string, bool) {
	var (
		best uint64
		url  string
	)
	for id, u := range networks {
		if id == target {
			continue
		}
		if best == 0 || id < best {
			best, url = id, u
		}
	}
	return best, url, best != 0
}

// approve stands in for the wallet confirmation popup.
func approve(from common.Address, tx *types.Transaction) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("Sign transaction from %v to %v for %v %v? [y/N] ",
		from.Hex(), tx.To().Hex(), chain.FormatEther(tx.Value()), cfg.Network.Currency.Symbol)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func shutdown() {
	shutdownOnce.Do(func() {
		if session != nil {
			session.Close()
		}
		if localWallet != nil {
			localWallet.Close()
		}
		if metricsFile != "" && registry != nil {
			if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil {
				logger.Warn("failed to write metrics file", zap.String("path", metricsFile), zap.Error(err))
			}
		}
		if logger != nil {
			_ = logger.Sync()
		}
	})
}
