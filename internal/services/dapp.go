package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/kelsos/solmint/internal/assets"
	"github.com/kelsos/solmint/internal/blockchain"
	"github.com/kelsos/solmint/internal/config"
	"github.com/kelsos/solmint/internal/mint"
	"github.com/kelsos/solmint/internal/models"
	"github.com/kelsos/solmint/internal/storage"
	"github.com/kelsos/solmint/internal/utils"
	"github.com/kelsos/solmint/internal/wallet"
)

var (
	ErrNotConnected        = errors.New("no wallet connected")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransferInFlight    = errors.New("a transfer is already in progress")
	ErrUploadInFlight      = errors.New("an upload is already in progress")
	ErrMintInFlight        = errors.New("a mint is already in progress")
	ErrNoUploadedAsset     = errors.New("no uploaded asset to mint")

	errBalanceRead = errors.New("failed to refresh balance")
)

// Ledger is the part of the Solana RPC the page needs.
type Ledger interface {
	GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature) (uint64, error)
}

// AccountStore persists the connected account between runs.
type AccountStore interface {
	LoadAccount() (string, error)
	SaveAccount(publicKey string) error
	ClearAccount() error
}

// AssetUploader fetches resources and pins them to IPFS.
type AssetUploader interface {
	FetchBlob(ctx context.Context, rawURL string) (assets.Blob, error)
	Upload(ctx context.Context, files []assets.File, opts assets.Options) ([]string, error)
}

// Minter delegates NFT minting to the server.
type Minter interface {
	Mint(ctx context.Context, name, imageURL, owner string) (*mint.Result, error)
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(notice models.Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(notice models.Notice)

func (f NotifierFunc) Notify(notice models.Notice) {
	f(notice)
}

// Deps are the collaborators of a DappService.
type Deps struct {
	Config   *config.Config
	Wallet   wallet.Provider
	Ledger   Ledger
	Store    AccountStore
	Uploader AssetUploader
	Minter   Minter
	Notifier Notifier
	// Opener opens a URL in the user's browser.
	Opener func(url string) error
}

// DappService drives the page: it sequences the wallet, RPC, storage and
// mint calls and keeps the state the page renders.
type DappService struct {
	config   *config.Config
	wallet   wallet.Provider
	ledger   Ledger
	store    AccountStore
	uploader AssetUploader
	minter   Minter
	notifier Notifier
	opener   func(url string) error

	mu          sync.Mutex
	state       models.PageState
	signerReady bool

	transferMu sync.Mutex
	uploadMu   sync.Mutex
	mintMu     sync.Mutex

	background sync.WaitGroup
	closing    chan struct{}
	closeOnce  sync.Once
}

// NewDappService creates a service wired to the real wallet, cluster,
// storage gateway and mint endpoint described by cfg.
func NewDappService(cfg *config.Config, notifier Notifier) (*DappService, error) {
	provider, err := wallet.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet provider: %w", err)
	}

	return NewDappServiceWithDeps(Deps{
		Config:   cfg,
		Wallet:   provider,
		Ledger:   blockchain.NewClient(cfg.RPCURL, cfg.Commitment, cfg.ConfirmPollInterval, cfg.ConfirmTimeout),
		Store:    storage.NewStore(cfg.DataDir),
		Uploader: assets.NewUploader(cfg.StorageUploadURL, cfg.GatewayURL, cfg.StorageSecretKey, cfg.HTTPTimeout),
		Minter:   mint.NewDelegator(cfg.MintEndpoint, cfg.MintExplorerURL, cfg.Cluster, cfg.HTTPTimeout),
		Notifier: notifier,
		Opener:   utils.OpenURL,
	}), nil
}

// NewDappServiceWithDeps creates a service from explicit collaborators.
func NewDappServiceWithDeps(deps Deps) *DappService {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(models.Notice) {})
	}
	opener := deps.Opener
	if opener == nil {
		opener = utils.OpenURL
	}

	return &DappService{
		config:   deps.Config,
		wallet:   deps.Wallet,
		ledger:   deps.Ledger,
		store:    deps.Store,
		uploader: deps.Uploader,
		minter:   deps.Minter,
		notifier: notifier,
		opener:   opener,
		closing:  make(chan struct{}),
	}
}

// GetConfig returns the current configuration
func (s *DappService) GetConfig() *config.Config {
	return s.config
}

// Snapshot returns a copy of the page state.
func (s *DappService) Snapshot() models.PageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until background work, such as a pending install page, is done.
func (s *DappService) Wait() {
	s.background.Wait()
}

// Close cancels pending background work and waits for it to stop.
func (s *DappService) Close() {
	s.closeOnce.Do(func() {
		close(s.closing)
	})
	s.background.Wait()
}

func (s *DappService) notify(level models.NoticeLevel, message string) {
	s.notifier.Notify(models.Notice{Level: level, Message: message})
}

func (s *DappService) setStatus(text string) {
	s.mu.Lock()
	s.state.StatusText = text
	s.mu.Unlock()
}
