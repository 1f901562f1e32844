package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	WalletBridge  = "bridge"
	WalletKeypair = "keypair"
)

// Config holds all application configuration
type Config struct {
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	Theme    string `yaml:"theme"`

	// Chain settings
	Cluster             string        `yaml:"cluster"`
	RPCURL              string        `yaml:"rpc_url"`
	Commitment          string        `yaml:"commitment"`
	ConfirmTimeout      time.Duration `yaml:"confirm_timeout"`
	ConfirmPollInterval time.Duration `yaml:"confirm_poll_interval"`
	ExplorerURL         string        `yaml:"explorer_url"`

	// Wallet settings
	Wallet          string        `yaml:"wallet"`
	WalletBridgeURL string        `yaml:"wallet_bridge_url"`
	KeypairPath     string        `yaml:"keypair_path"`
	InstallURL      string        `yaml:"install_url"`
	InstallDelay    time.Duration `yaml:"install_delay"`

	// Storage gateway settings
	StorageUploadURL       string `yaml:"storage_upload_url"`
	StorageSecretKey       string `yaml:"storage_secret_key"`
	GatewayURL             string `yaml:"gateway_url"`
	UploadWithGatewayURL   bool   `yaml:"upload_with_gateway_url"`
	UploadWithoutDirectory bool   `yaml:"upload_without_directory"`

	// Mint settings
	MintEndpoint    string `yaml:"mint_endpoint"`
	NFTName         string `yaml:"nft_name"`
	MintExplorerURL string `yaml:"mint_explorer_url"`

	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		DataDir:                "~/.solmint",
		Theme:                  "auto",
		LogLevel:               "info",
		Cluster:                "devnet",
		RPCURL:                 "https://api.devnet.solana.com",
		Commitment:             "confirmed",
		ConfirmTimeout:         60 * time.Second,
		ConfirmPollInterval:    500 * time.Millisecond,
		ExplorerURL:            "https://explorer.solana.com",
		Wallet:                 WalletBridge,
		WalletBridgeURL:        "http://127.0.0.1:7413",
		KeypairPath:            "~/.config/solana/id.json",
		InstallURL:             "https://phantom.app/",
		InstallDelay:           2 * time.Second,
		StorageUploadURL:       "https://storage.thirdweb.com/ipfs/upload",
		GatewayURL:             "https://ipfs.io",
		UploadWithGatewayURL:   true,
		UploadWithoutDirectory: true,
		MintEndpoint:           "http://localhost:3000/api/mintnft",
		NFTName:                "My first NFT with Superteam MX",
		MintExplorerURL:        "https://solscan.io",
		HTTPTimeout:            30 * time.Second,
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// config.yaml inside the data dir when path is empty) and the environment.
// A non-empty dataDir takes precedence over SOLMINT_DATA_DIR.
func Load(path, dataDir string) (*Config, error) {
	cfg := NewConfig()

	if env := os.Getenv("SOLMINT_DATA_DIR"); env != "" {
		cfg.DataDir = env
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if path == "" {
		path = filepath.Join(ExpandHome(cfg.DataDir), "config.yaml")
	}

	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}

	cfg.LoadFromEnvironment()
	cfg.ExpandPaths()

	return cfg, nil
}

// LoadFile merges the YAML file at path into c. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if d, err := parseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("SOLMINT_DATA_DIR", &c.DataDir)
	setString("SOLMINT_LOG_LEVEL", &c.LogLevel)
	setString("SOLMINT_THEME", &c.Theme)
	setString("SOLMINT_CLUSTER", &c.Cluster)
	setString("SOLMINT_RPC_URL", &c.RPCURL)
	setString("SOLMINT_COMMITMENT", &c.Commitment)
	setDuration("SOLMINT_CONFIRM_TIMEOUT", &c.ConfirmTimeout)
	setDuration("SOLMINT_CONFIRM_POLL_INTERVAL", &c.ConfirmPollInterval)
	setString("SOLMINT_EXPLORER_URL", &c.ExplorerURL)
	setString("SOLMINT_WALLET", &c.Wallet)
	setString("SOLMINT_WALLET_BRIDGE_URL", &c.WalletBridgeURL)
	setString("SOLMINT_KEYPAIR", &c.KeypairPath)
	setString("SOLMINT_INSTALL_URL", &c.InstallURL)
	setDuration("SOLMINT_INSTALL_DELAY", &c.InstallDelay)
	setString("SOLMINT_STORAGE_UPLOAD_URL", &c.StorageUploadURL)
	setString("SOLMINT_STORAGE_SECRET_KEY", &c.StorageSecretKey)
	setString("SOLMINT_IPFS_GATEWAY", &c.GatewayURL)
	setBool("SOLMINT_UPLOAD_WITH_GATEWAY_URL", &c.UploadWithGatewayURL)
	setBool("SOLMINT_UPLOAD_WITHOUT_DIRECTORY", &c.UploadWithoutDirectory)
	setString("SOLMINT_MINT_ENDPOINT", &c.MintEndpoint)
	setString("SOLMINT_NFT_NAME", &c.NFTName)
	setString("SOLMINT_MINT_EXPLORER_URL", &c.MintExplorerURL)
	setDuration("SOLMINT_HTTP_TIMEOUT", &c.HTTPTimeout)
}

// parseDuration accepts Go duration strings and bare milliseconds.
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// ExpandPaths resolves a leading ~ in every path setting.
func (c *Config) ExpandPaths() {
	c.DataDir = ExpandHome(c.DataDir)
	c.KeypairPath = ExpandHome(c.KeypairPath)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir cannot be empty")
	}

	switch c.Theme {
	case "auto", "dark", "light":
	default:
		return fmt.Errorf("unknown theme %q, expected auto, dark or light", c.Theme)
	}

	switch c.Cluster {
	case "devnet", "testnet", "mainnet-beta", "localnet":
	default:
		return fmt.Errorf("unknown cluster %q", c.Cluster)
	}

	switch c.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("unknown commitment %q", c.Commitment)
	}

	switch c.Wallet {
	case WalletBridge:
		if err := validateURL("wallet bridge url", c.WalletBridgeURL); err != nil {
			return err
		}
	case WalletKeypair:
		if c.KeypairPath == "" {
			return fmt.Errorf("keypair path cannot be empty")
		}
	default:
		return fmt.Errorf("unknown wallet provider %q, expected %q or %q", c.Wallet, WalletBridge, WalletKeypair)
	}

	for name, raw := range map[string]string{
		"rpc url":            c.RPCURL,
		"explorer url":       c.ExplorerURL,
		"install url":        c.InstallURL,
		"storage upload url": c.StorageUploadURL,
		"gateway url":        c.GatewayURL,
		"mint endpoint":      c.MintEndpoint,
		"mint explorer url":  c.MintExplorerURL,
	} {
		if err := validateURL(name, raw); err != nil {
			return err
		}
	}

	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("confirm timeout must be positive, got: %s", c.ConfirmTimeout)
	}

	if c.ConfirmPollInterval <= 0 {
		return fmt.Errorf("confirm poll interval must be positive, got: %s", c.ConfirmPollInterval)
	}

	if c.InstallDelay < 0 {
		return fmt.Errorf("install delay must be non-negative, got: %s", c.InstallDelay)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got: %s", c.HTTPTimeout)
	}

	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be http or https, got: %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", name, raw)
	}
	return nil
}
