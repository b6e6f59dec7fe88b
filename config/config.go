package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"buymeacoffee/chain"
	"buymeacoffee/wallet"
)

const EnvPrefix = "COFFEE"

var (
	ErrReadConfig             = errors.New("error in reading config file")
	ErrInvalidNetwork         = errors.New("invalid network configuration")
	ErrInvalidContractAddress = errors.New("contract.address is not a hex address")
	ErrInvalidPrivateKey      = errors.New("wallet.private_key is not a valid secp256k1 key")
	ErrInvalidWalletNetwork   = errors.New("wallet.networks keys must be decimal chain ids with an rpc url")
	ErrInvalidDefaultAmount   = errors.New("donation.default_amount must be a positive ether amount")
	ErrInvalidLogLevel        = errors.New("log.level is not a zap level")
)

var TrailingSlashRE = regexp.MustCompile("/+$")

// Config is the processed configuration.
type Config struct {
	Network chain.Network

	// ContractAddress overrides the registry entry of the target chain.
	ContractAddress *common.Address

	// PrivateKey is empty when no wallet is configured.
	PrivateKey     string
	WalletNetworks map[uint64]string

	DefaultAmount string
	LogLevel      zapcore.Level
}

func (c *Config) HasWallet() bool {
	return c.PrivateKey != ""
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	sepolia := chain.Sepolia()
	v.SetDefault("network.chain_id", sepolia.ChainID)
	v.SetDefault("network.name", sepolia.Name)
	v.SetDefault("network.rpc_url", sepolia.RPCURL)
	v.SetDefault("network.explorer_url", sepolia.ExplorerURL)
	v.SetDefault("network.currency.name", sepolia.Currency.Name)
	v.SetDefault("network.currency.symbol", sepolia.Currency.Symbol)
	v.SetDefault("network.currency.decimals", sepolia.Currency.Decimals)
	v.SetDefault("contract.address", "")
	v.SetDefault("wallet.private_key", "")
	v.SetDefault("donation.default_amount", "0.001")
	v.SetDefault("log.level", "info")
}

// Read loads filePath, when given, on top of defaults and COFFEE_* variables.
func Read(filePath string) (*Config, error) {
	v := New()
	if filePath != "" {
		v.SetConfigFile(filePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
		}
	}
	return Process(v)
}

// Process validates the values held by v.
func Process(v *viper.Viper) (*Config, error) {
	var err error
	c := &Config{}

	// Network stuff
	decimals := v.GetUint("network.currency.decimals")
	if decimals > math.MaxUint8 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNetwork, chain.ErrInvalidDecimals)
	}
	c.Network = chain.Network{
		ChainID:     v.GetUint64("network.chain_id"),
		Name:        strings.TrimSpace(v.GetString("network.name")),
		RPCURL:      strings.TrimSpace(v.GetString("network.rpc_url")),
		ExplorerURL: TrailingSlashRE.ReplaceAllString(strings.TrimSpace(v.GetString("network.explorer_url")), ""),
		Currency: chain.NativeCurrency{
			Name:     v.GetString("network.currency.name"),
			Symbol:   v.GetString("network.currency.symbol"),
			Decimals: uint8(decimals),
		},
	}
	if err = c.Network.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNetwork, err)
	}

	// Contract stuff
	if addr := strings.TrimSpace(v.GetString("contract.address")); addr != "" {
		if !common.IsHexAddress(addr) {
			return nil, ErrInvalidContractAddress
		}
		a := common.HexToAddress(addr)
		c.ContractAddress = &a
	}

	// Wallet stuff
	c.PrivateKey = strings.TrimSpace(v.GetString("wallet.private_key"))
	if c.PrivateKey != "" {
		if _, err = wallet.ParsePrivateKey(c.PrivateKey); err != nil {
			return nil, ErrInvalidPrivateKey
		}
	}
	c.WalletNetworks = make(map[uint64]string)
	for key, url := range v.GetStringMapString("wallet.networks") {
		id, err := strconv.ParseUint(key, 10, 64)
		url = strings.TrimSpace(url)
		if err != nil || id == 0 || url == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWalletNetwork, key)
		}
		c.WalletNetworks[id] = url
	}

	// Donation stuff
	c.DefaultAmount = strings.TrimSpace(v.GetString("donation.default_amount"))
	amount, err := chain.ParseEther(c.DefaultAmount)
	if err != nil || amount.Sign() <= 0 {
		return nil, ErrInvalidDefaultAmount
	}

	// Log stuff
	c.LogLevel, err = zapcore.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, ErrInvalidLogLevel
	}

	return c, nil
}
