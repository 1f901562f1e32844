package services

import (
	"context"

	"github.com/kelsos/solmint/internal/blockchain"
	"github.com/kelsos/solmint/internal/logger"
	"github.com/kelsos/solmint/internal/models"
)

// RefreshBalance reads the connected account balance. On failure the last
// known balance is kept.
func (s *DappService) RefreshBalance(ctx context.Context) error {
	account := s.Snapshot().Account
	if account == "" {
		return ErrNotConnected
	}

	if _, err := s.fetchBalance(ctx, account); err != nil {
		logger.Error("ERROR GET BALANCE: %v", err)
		s.notify(models.NoticeError, msgBalanceFailed)
		return err
	}

	return nil
}

func (s *DappService) fetchBalance(ctx context.Context, account string) (uint64, error) {
	owner, err := blockchain.ParsePublicKey(account)
	if err != nil {
		return 0, err
	}

	lamports, err := s.ledger.GetBalance(ctx, owner)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.state.Lamports = lamports
	s.state.Balance = blockchain.LamportsToSOL(lamports)
	s.mu.Unlock()

	logger.Debug("Balance of %s is %s SOL", account, blockchain.FormatSOL(lamports))
	return lamports, nil
}
