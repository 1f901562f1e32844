package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/solmint/internal/assets"
	"github.com/kelsos/solmint/internal/config"
	"github.com/kelsos/solmint/internal/mint"
	"github.com/kelsos/solmint/internal/models"
	"github.com/kelsos/solmint/internal/storage"
	"github.com/kelsos/solmint/internal/wallet"
)

type fakeWallet struct {
	mu           sync.Mutex
	key          solana.PrivateKey
	missing      bool
	connected    bool
	connects     int
	disconnects  int
	signs        int
	connectError error
}

func (w *fakeWallet) Detect(context.Context) error {
	if w.missing {
		return fmt.Errorf("%w: test", wallet.ErrNotInstalled)
	}
	return nil
}

func (w *fakeWallet) Connect(context.Context) (solana.PublicKey, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connects++
	if w.connectError != nil {
		return solana.PublicKey{}, w.connectError
	}
	w.connected = true
	return w.key.PublicKey(), nil
}

func (w *fakeWallet) Disconnect(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disconnects++
	w.connected = false
	return nil
}

func (w *fakeWallet) SignTransaction(_ context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signs++
	if !w.connected {
		return nil, wallet.ErrNotConnected
	}
	key := w.key
	if _, err := tx.Sign(func(solana.PublicKey) *solana.PrivateKey { return &key }); err != nil {
		return nil, err
	}
	return tx, nil
}

func (w *fakeWallet) signCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.signs
}

type fakeLedger struct {
	mu         sync.Mutex
	balance    uint64
	balanceErr error
	balances   int
	sent       [][]byte
	signature  solana.Signature
	confirmed  []solana.Signature
	// confirming is signalled when a confirmation starts; release unblocks it.
	confirming chan struct{}
	release    chan struct{}
}

func (l *fakeLedger) GetBalance(context.Context, solana.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances++
	return l.balance, l.balanceErr
}

func (l *fakeLedger) setBalance(lamports uint64, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = lamports
	l.balanceErr = err
}

func (l *fakeLedger) LatestBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{3}, nil
}

func (l *fakeLedger) SendRawTransaction(_ context.Context, raw []byte) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, raw)
	return l.signature, nil
}

func (l *fakeLedger) ConfirmTransaction(_ context.Context, sig solana.Signature) (uint64, error) {
	if l.confirming != nil {
		l.confirming <- struct{}{}
		<-l.release
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.confirmed = append(l.confirmed, sig)
	return 10, nil
}

func (l *fakeLedger) sentCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sent)
}

type fakeUploader struct {
	fetches []string
	uploads [][]assets.File
	options []assets.Options
	err     error
}

func (u *fakeUploader) FetchBlob(_ context.Context, rawURL string) (assets.Blob, error) {
	u.fetches = append(u.fetches, rawURL)
	if u.err != nil {
		return assets.Blob{}, u.err
	}
	return assets.Blob{Data: []byte("img"), ContentType: "image/jpeg"}, nil
}

func (u *fakeUploader) Upload(_ context.Context, files []assets.File, opts assets.Options) ([]string, error) {
	u.uploads = append(u.uploads, files)
	u.options = append(u.options, opts)
	return []string{"https://ipfs.io/ipfs/QmUploaded"}, nil
}

type mintCall struct {
	name, imageURL, owner string
}

type fakeMinter struct {
	calls []mintCall
	err   error
}

func (m *fakeMinter) Mint(_ context.Context, name, imageURL, owner string) (*mint.Result, error) {
	m.calls = append(m.calls, mintCall{name, imageURL, owner})
	if m.err != nil {
		return nil, m.err
	}
	return &mint.Result{Signature: "sig", ExplorerURL: "https://solscan.io/tx/sig?cluster=devnet", RequestID: "id"}, nil
}

type recorder struct {
	mu      sync.Mutex
	notices []models.Notice
}

func (r *recorder) Notify(notice models.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

func (r *recorder) has(level models.NoticeLevel, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notices {
		if n.Level == level && n.Message == message {
			return true
		}
	}
	return false
}

type opener struct {
	mu   sync.Mutex
	urls []string
}

func (o *opener) open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, url)
	return nil
}

func (o *opener) opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.urls...)
}

type harness struct {
	cfg      *config.Config
	wallet   *fakeWallet
	ledger   *fakeLedger
	store    *storage.Store
	uploader *fakeUploader
	minter   *fakeMinter
	notices  *recorder
	opener   *opener
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := config.NewConfig()
	cfg.DataDir = t.TempDir()
	cfg.InstallDelay = 30 * time.Millisecond

	var sig solana.Signature
	sig[0] = 7

	return &harness{
		cfg:      cfg,
		wallet:   &fakeWallet{key: solana.NewWallet().PrivateKey},
		ledger:   &fakeLedger{balance: 2 * solana.LAMPORTS_PER_SOL, signature: sig},
		store:    storage.NewStore(cfg.DataDir),
		uploader: &fakeUploader{},
		minter:   &fakeMinter{},
		notices:  &recorder{},
		opener:   &opener{},
	}
}

func (h *harness) service() *DappService {
	return NewDappServiceWithDeps(Deps{
		Config:   h.cfg,
		Wallet:   h.wallet,
		Ledger:   h.ledger,
		Store:    h.store,
		Uploader: h.uploader,
		Minter:   h.minter,
		Notifier: h.notices,
		Opener:   h.opener.open,
	})
}

// connected returns a service with the wallet connected and the page loaded.
func (h *harness) connected(t *testing.T) *DappService {
	t.Helper()
	svc := h.service()
	require.NoError(t, svc.Load(context.Background()))
	require.NoError(t, svc.Connect(context.Background()))
	return svc
}

var errBoom = errors.New("boom")
