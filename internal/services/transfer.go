package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelsos/solmint/internal/blockchain"
	"github.com/kelsos/solmint/internal/logger"
	"github.com/kelsos/solmint/internal/models"
)

// SetTransferFields stores the pending receiver and amount.
func (s *DappService) SetTransferFields(receiver, amount string) {
	s.mu.Lock()
	s.state.Receiver = receiver
	s.state.Amount = amount
	s.mu.Unlock()
}

// SubmitTransfer sends amount SOL from the connected account to receiver and
// waits for confirmation. It returns the explorer link of the transaction.
// Only one transfer runs at a time.
func (s *DappService) SubmitTransfer(ctx context.Context, receiver, amount string) (string, error) {
	if !s.transferMu.TryLock() {
		s.notify(models.NoticeError, msgTransferInFlight)
		return "", ErrTransferInFlight
	}
	defer s.transferMu.Unlock()

	s.SetTransferFields(receiver, amount)

	account := s.Snapshot().Account
	if account == "" {
		s.notify(models.NoticeError, msgNotConnected)
		return "", ErrNotConnected
	}

	logger.Info("Sending %s SOL from %s to %s", amount, account, receiver)

	link, err := s.transfer(ctx, account, receiver, amount)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			logger.Warn("Transfer rejected: %v", err)
			s.notify(models.NoticeError, msgInsufficient)
			return "", err
		}
		if errors.Is(err, errBalanceRead) {
			logger.Error("ERROR GET BALANCE: %v", err)
			s.notify(models.NoticeError, msgBalanceFailed)
			return "", err
		}
		logger.Error("ERROR SEND TRANSACTION: %v", err)
		s.notify(models.NoticeError, msgTransferFailed)
		return "", err
	}

	s.mu.Lock()
	s.state.ExplorerLink = link
	s.state.Receiver = ""
	s.state.Amount = ""
	s.mu.Unlock()

	s.notify(models.NoticeSuccess, msgTransferSent)

	// balance failures are already reported
	_ = s.RefreshBalance(ctx)
	return link, nil
}

func (s *DappService) transfer(ctx context.Context, account, receiver, amount string) (string, error) {
	balance, err := s.fetchBalance(ctx, account)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errBalanceRead, err)
	}

	lamports, err := blockchain.ParseSOL(amount)
	if err != nil {
		return "", err
	}

	if lamports > balance {
		return "", fmt.Errorf("%w: need %s SOL, have %s SOL",
			ErrInsufficientBalance, blockchain.FormatSOL(lamports), blockchain.FormatSOL(balance))
	}

	from, err := blockchain.ParsePublicKey(account)
	if err != nil {
		return "", err
	}
	to, err := blockchain.ParsePublicKey(receiver)
	if err != nil {
		return "", fmt.Errorf("invalid receiver: %w", err)
	}

	if err := s.ensureSigner(ctx, from); err != nil {
		return "", err
	}

	blockhash, err := s.ledger.LatestBlockhash(ctx)
	if err != nil {
		return "", err
	}

	tx, err := blockchain.BuildTransfer(from, to, lamports, blockhash)
	if err != nil {
		return "", err
	}

	signed, err := s.wallet.SignTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	sig, err := s.ledger.SendRawTransaction(ctx, raw)
	if err != nil {
		return "", err
	}

	if _, err := s.ledger.ConfirmTransaction(ctx, sig); err != nil {
		return "", err
	}

	return blockchain.TxURL(s.config.ExplorerURL, sig.String(), s.config.Cluster), nil
}
