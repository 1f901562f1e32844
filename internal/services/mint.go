package services

import (
	"context"

	"github.com/kelsos/solmint/internal/logger"
	"github.com/kelsos/solmint/internal/mint"
	"github.com/kelsos/solmint/internal/models"
)

// GenerateNFT asks the mint endpoint to mint the uploaded asset to the
// connected account. The uploaded asset is consumed on success.
func (s *DappService) GenerateNFT(ctx context.Context) (*mint.Result, error) {
	if !s.mintMu.TryLock() {
		s.notify(models.NoticeError, msgMintInFlight)
		return nil, ErrMintInFlight
	}
	defer s.mintMu.Unlock()

	snapshot := s.Snapshot()
	if snapshot.Account == "" {
		s.notify(models.NoticeError, msgNotConnected)
		return nil, ErrNotConnected
	}
	if snapshot.UploadURL == "" {
		s.notify(models.NoticeError, msgNeedUpload)
		return nil, ErrNoUploadedAsset
	}

	s.setStatus(statusCreatingNFT)
	logger.Info("Minting %q with image %s for %s", s.config.NFTName, snapshot.UploadURL, snapshot.Account)
	s.setStatus(statusMinting)

	result, err := s.minter.Mint(ctx, s.config.NFTName, snapshot.UploadURL, snapshot.Account)
	if err != nil {
		logger.Error("ERROR GENERATE NFT: %v", err)
		s.setStatus(statusMintFailed)
		s.notify(models.NoticeError, msgMintFailed)
		return nil, err
	}

	s.mu.Lock()
	s.state.MintLink = result.ExplorerURL
	s.state.UploadURL = ""
	s.state.StatusText = statusMinted
	s.mu.Unlock()

	s.notify(models.NoticeSuccess, msgMinted)
	return result, nil
}
