package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/kelsos/solmint/internal/logger"
	"github.com/kelsos/solmint/internal/models"
	"github.com/kelsos/solmint/internal/wallet"
)

// Load resets the page to its initial state: the cached account, if any,
// and its balance. Nothing from a previous run besides the account survives.
func (s *DappService) Load(ctx context.Context) error {
	account, err := s.store.LoadAccount()
	if err != nil {
		logger.Error("Failed to read cached account: %v", err)
		account = ""
	}

	s.mu.Lock()
	s.state = models.PageState{Account: account}
	s.signerReady = false
	s.mu.Unlock()

	if account == "" {
		logger.Debug("No cached account")
		return nil
	}

	logger.Info("Restored account %s", account)
	return s.RefreshBalance(ctx)
}

// Connect asks the wallet for access and caches the granted account. When no
// wallet is installed the install page is opened after a short delay.
func (s *DappService) Connect(ctx context.Context) error {
	if err := s.wallet.Detect(ctx); err != nil {
		if errors.Is(err, wallet.ErrNotInstalled) {
			logger.Warn("Wallet not installed: %v", err)
			s.notify(models.NoticeError, msgNotInstalled)
			s.openInstallPage()
			return err
		}
		logger.Error("Wallet detection failed: %v", err)
		s.notify(models.NoticeError, msgConnectFailed)
		return err
	}

	key, err := s.wallet.Connect(ctx)
	if err != nil {
		logger.Error("Wallet connect failed: %v", err)
		s.notify(models.NoticeError, msgConnectFailed)
		return err
	}

	account := key.String()
	logger.Info("Connected with public key: %s", account)

	if err := s.store.SaveAccount(account); err != nil {
		logger.Error("Failed to cache account: %v", err)
	}

	s.mu.Lock()
	s.state.Account = account
	s.signerReady = true
	s.mu.Unlock()

	s.notify(models.NoticeSuccess, msgConnected)

	// balance failures are already reported
	_ = s.RefreshBalance(ctx)
	return nil
}

// Disconnect forgets the cached account, releases the wallet and reloads the page.
func (s *DappService) Disconnect(ctx context.Context) error {
	if err := s.store.ClearAccount(); err != nil {
		logger.Error("Failed to clear cached account: %v", err)
		s.notify(models.NoticeError, msgDisconnectFailed)
		return err
	}

	if err := s.wallet.Disconnect(ctx); err != nil {
		logger.Warn("Wallet disconnect failed: %v", err)
	}

	logger.Info("Wallet disconnected")
	s.notify(models.NoticeInfo, msgDisconnected)
	return s.Load(ctx)
}

// ensureSigner connects the wallet when this process has not done so yet and
// checks it still holds the cached account.
func (s *DappService) ensureSigner(ctx context.Context, account solana.PublicKey) error {
	s.mu.Lock()
	ready := s.signerReady
	s.mu.Unlock()
	if ready {
		return nil
	}

	key, err := s.wallet.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconnect wallet: %w", err)
	}
	if !key.Equals(account) {
		return fmt.Errorf("wallet account %s does not match connected account %s", key, account)
	}

	s.mu.Lock()
	s.signerReady = true
	s.mu.Unlock()
	return nil
}

func (s *DappService) openInstallPage() {
	s.background.Add(1)
	go func() {
		defer s.background.Done()

		timer := time.NewTimer(s.config.InstallDelay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-s.closing:
			return
		}

		logger.Info("Opening %s", s.config.InstallURL)
		if err := s.opener(s.config.InstallURL); err != nil {
			logger.Warn("Failed to open %s: %v", s.config.InstallURL, err)
		}
	}()
}
