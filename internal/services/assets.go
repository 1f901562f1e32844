package services

import (
	"context"
	"fmt"

	"github.com/kelsos/solmint/internal/assets"
	"github.com/kelsos/solmint/internal/logger"
	"github.com/kelsos/solmint/internal/models"
)

// UploadFromURL fetches rawURL and pins it to IPFS. It returns the address of
// the uploaded asset, which is also kept for minting.
func (s *DappService) UploadFromURL(ctx context.Context, rawURL string) (string, error) {
	if !s.uploadMu.TryLock() {
		s.notify(models.NoticeError, msgUploadInFlight)
		return "", ErrUploadInFlight
	}
	defer s.uploadMu.Unlock()

	s.setStatus(statusTransformURL)
	blob, err := s.uploader.FetchBlob(ctx, rawURL)
	if err != nil {
		return "", s.uploadFailed(err)
	}

	return s.upload(ctx, assets.FileFromBlob(blob))
}

// UploadFile pins the local file at path to IPFS.
func (s *DappService) UploadFile(ctx context.Context, path string) (string, error) {
	if !s.uploadMu.TryLock() {
		s.notify(models.NoticeError, msgUploadInFlight)
		return "", ErrUploadInFlight
	}
	defer s.uploadMu.Unlock()

	s.setStatus(statusReadingFile)
	file, err := assets.ReadFile(path)
	if err != nil {
		return "", s.uploadFailed(err)
	}

	return s.upload(ctx, file)
}

// SetUploadedAsset uses an address uploaded earlier as the asset to mint.
func (s *DappService) SetUploadedAsset(uri string) {
	s.mu.Lock()
	s.state.UploadURL = uri
	s.state.StatusText = fmt.Sprintf(statusUploaded, uri)
	s.mu.Unlock()
}

func (s *DappService) upload(ctx context.Context, file assets.File) (string, error) {
	s.setStatus(statusUploading)

	opts := assets.Options{
		WithGatewayURL:   s.config.UploadWithGatewayURL,
		WithoutDirectory: s.config.UploadWithoutDirectory,
	}
	uris, err := s.uploader.Upload(ctx, []assets.File{file}, opts)
	if err != nil {
		return "", s.uploadFailed(err)
	}
	if len(uris) == 0 {
		return "", s.uploadFailed(assets.ErrEmptyResponse)
	}

	uri := uris[0]
	logger.Info("Uploaded %s (%d bytes) to %s", file.Name, len(file.Data), uri)
	s.SetUploadedAsset(uri)
	return uri, nil
}

func (s *DappService) uploadFailed(err error) error {
	logger.Error("ERROR UPLOAD: %v", err)
	s.setStatus(statusUploadFailed)
	s.notify(models.NoticeError, msgUploadFailed)
	return err
}
