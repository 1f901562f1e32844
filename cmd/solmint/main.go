package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kelsos/solmint/internal/config"
	"github.com/kelsos/solmint/internal/logger"
	"github.com/kelsos/solmint/internal/services"
	"github.com/kelsos/solmint/internal/tui"
	"github.com/kelsos/solmint/internal/ui"
	"github.com/kelsos/solmint/internal/utils"
)

type options struct {
	configPath  string
	dataDir     string
	rpcURL      string
	wallet      string
	keypairPath string
	logLevel    string
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath, opts.dataDir)
	if err != nil {
		return nil, err
	}

	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.rpcURL != "" {
		cfg.RPCURL = opts.rpcURL
	}
	if opts.wallet != "" {
		cfg.Wallet = opts.wallet
	}
	if opts.keypairPath != "" {
		cfg.KeypairPath = opts.keypairPath
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	cfg.ExpandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.SetLevel(cfg.LogLevel)
	ui.SetTheme(cfg.Theme)
	return cfg, nil
}

// newCLIService creates a service printing notices to stderr and loads the page state.
func newCLIService(ctx context.Context, opts *options) (*services.DappService, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	svc, err := services.NewDappService(cfg, ui.WriterNotifier{Out: os.Stderr})
	if err != nil {
		return nil, err
	}

	// a failed balance read is reported and does not stop the command
	_ = svc.Load(ctx)
	return svc, nil
}

func runPage(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := logger.InitFileOnly(cfg.DataDir); err != nil {
		return err
	}
	defer logger.Close()
	logger.SetLevel(cfg.LogLevel)

	page := tui.NewPage()
	svc, err := services.NewDappService(cfg, page)
	if err != nil {
		return err
	}
	defer svc.Close()

	return page.Run(ctx, svc)
}

func main() {
	loaded := utils.LoadEnvironment()
	logger.Init()
	for _, path := range loaded {
		logger.Debug("Loaded environment from %s", path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(&options{})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}

func newInitConfigCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write the effective configuration to a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			path := opts.configPath
			if path == "" {
				path = filepath.Join(cfg.DataDir, "config.yaml")
			}
			path = config.ExpandHome(path)

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}

			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "solmint",
		Short:         "A terminal dApp for Solana devnet",
		Long:          `solmint connects a wallet, shows its devnet balance, sends SOL, uploads images to IPFS and mints NFTs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return runPage(cmd.Context(), opts)
			}
			return runStatus(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the config file (default: <data dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.dataDir, "data-dir", "", "", "Directory where solmint keeps its session and logs")
	rootCmd.PersistentFlags().StringVarP(&opts.rpcURL, "rpc-url", "", "", "Solana JSON-RPC endpoint")
	rootCmd.PersistentFlags().StringVarP(&opts.wallet, "wallet", "w", "", "Wallet provider: bridge or keypair")
	rootCmd.PersistentFlags().StringVarP(&opts.keypairPath, "keypair", "k", "", "Path to a Solana CLI keypair file")
	rootCmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newStatusCmd(opts),
		newConnectCmd(opts),
		newDisconnectCmd(opts),
		newBalanceCmd(opts),
		newTransferCmd(opts),
		newUploadCmd(opts),
		newMintCmd(opts),
		newInitConfigCmd(opts),
	)

	return rootCmd
}
