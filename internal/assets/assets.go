package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelsos/solmint/internal/client"
	"github.com/kelsos/solmint/internal/logger"
	"github.com/kelsos/solmint/internal/models"
)

// BlobFileName is the name given to resources fetched from a URL.
const BlobFileName = "image.png"

var (
	ErrNoFiles       = errors.New("no files to upload")
	ErrEmptyResponse = errors.New("storage gateway returned no content address")
)

// Blob is a fetched resource before it gets a file name.
type Blob struct {
	Data        []byte
	ContentType string
}

// File is a named blob ready for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Options mirrors the storage SDK upload options.
type Options struct {
	// WithGatewayURL returns https gateway links instead of ipfs:// URIs.
	WithGatewayURL bool
	// WithoutDirectory pins a single file directly instead of wrapping it
	// in a directory.
	WithoutDirectory bool
}

// Uploader sends files to an IPFS pinning gateway.
type Uploader struct {
	client     *client.APIClient
	uploadURL  string
	gatewayURL string
}

// NewUploader creates an uploader posting to uploadURL. secretKey is sent as
// x-secret-key when set.
func NewUploader(uploadURL, gatewayURL, secretKey string, timeout time.Duration) *Uploader {
	apiClient := client.NewAPIClient("", timeout)
	if secretKey != "" {
		apiClient.SetHeader("x-secret-key", secretKey)
	}

	return &Uploader{
		client:     apiClient,
		uploadURL:  uploadURL,
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
	}
}

// FetchBlob downloads rawURL into memory.
func (u *Uploader) FetchBlob(ctx context.Context, rawURL string) (Blob, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Blob{}, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Blob{}, fmt.Errorf("unsupported URL scheme: %q", parsed.Scheme)
	}

	data, contentType, err := u.client.Download(ctx, parsed.String())
	if err != nil {
		return Blob{}, fmt.Errorf("failed to fetch %s: %w", parsed, err)
	}

	logger.Debug("Fetched %d bytes of %s from %s", len(data), contentType, parsed)
	return Blob{Data: data, ContentType: contentType}, nil
}

// FileFromBlob wraps a blob under the fixed upload name, keeping its type.
func FileFromBlob(blob Blob) File {
	return File{
		Name:        BlobFileName,
		ContentType: blob.ContentType,
		Data:        blob.Data,
	}
}

// ReadFile loads a local file for upload.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Upload pins files in one gateway request and returns one address per file.
func (u *Uploader) Upload(ctx context.Context, files []File, opts Options) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if opts.WithoutDirectory && len(files) > 1 {
		return nil, fmt.Errorf("cannot upload %d files without a directory", len(files))
	}

	pinOptions, err := json.Marshal(models.PinOptions{WrapWithDirectory: !opts.WithoutDirectory})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pin options: %w", err)
	}

	parts := make([]client.FilePart, 0, len(files))
	for _, file := range files {
		parts = append(parts, client.FilePart{
			Field:       "file",
			FileName:    file.Name,
			ContentType: file.ContentType,
			Data:        file.Data,
		})
	}

	var response models.UploadResponse
	fields := map[string]string{"pinataOptions": string(pinOptions)}
	if err := u.client.PostMultipart(ctx, u.uploadURL, fields, parts, &response); err != nil {
		return nil, fmt.Errorf("failed to upload to storage gateway: %w", err)
	}

	if response.IpfsHash == "" {
		return nil, ErrEmptyResponse
	}

	logger.Info("Uploaded %d file(s) to IPFS as %s", len(files), response.IpfsHash)

	uris := make([]string, 0, len(files))
	for _, file := range files {
		path := response.IpfsHash
		if !opts.WithoutDirectory {
			path += "/" + url.PathEscape(file.Name)
		}
		uris = append(uris, u.resolve(path, opts.WithGatewayURL))
	}

	return uris, nil
}

func (u *Uploader) resolve(path string, withGateway bool) string {
	if withGateway {
		return fmt.Sprintf("%s/ipfs/%s", u.gatewayURL, path)
	}
	return "ipfs://" + path
}
