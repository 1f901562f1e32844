package assets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kelsos/solmint/internal/client"
	"github.com/kelsos/solmint/internal/models"
)

var pngData = []byte("\x89PNG\r\n\x1a\nfake")

type gatewayCall struct {
	secret      string
	fileName    string
	contentType string
	data        []byte
	pinOptions  models.PinOptions
}

func newGateway(t *testing.T, cid string, calls *[]gatewayCall) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)

		call := gatewayCall{
			secret:      r.Header.Get("x-secret-key"),
			fileName:    header.Filename,
			contentType: header.Header.Get("Content-Type"),
			data:        data,
		}
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("pinataOptions")), &call.pinOptions))
		*calls = append(*calls, call)

		_ = json.NewEncoder(w).Encode(models.UploadResponse{IpfsHash: cid, PinSize: int64(len(data))})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchBlob(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngData)
	}))
	defer server.Close()

	uploader := NewUploader("http://unused", "https://ipfs.io", "", time.Second)
	blob, err := uploader.FetchBlob(context.Background(), server.URL+"/cat.png")
	require.NoError(t, err)
	require.Equal(t, pngData, blob.Data)
	require.Equal(t, "image/png", blob.ContentType)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))

	file := FileFromBlob(blob)
	require.Equal(t, BlobFileName, file.Name)
	require.Equal(t, "image/png", file.ContentType)
}

func TestFetchBlobRejectsScheme(t *testing.T) {
	uploader := NewUploader("http://unused", "https://ipfs.io", "", time.Second)
	_, err := uploader.FetchBlob(context.Background(), "file:///etc/passwd")
	require.Error(t, err)
}

func TestFetchBlobTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(make([]byte, 33<<20))
	}))
	defer server.Close()

	uploader := NewUploader("http://unused", "https://ipfs.io", "", 10*time.Second)
	blob, err := uploader.FetchBlob(context.Background(), server.URL+"/huge.png")
	require.ErrorIs(t, err, client.ErrTooLarge)
	require.Nil(t, blob.Data)
}

func TestFetchBlobHTTPError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	uploader := NewUploader("http://unused", "https://ipfs.io", "", time.Second)
	_, err := uploader.FetchBlob(context.Background(), server.URL)
	require.Error(t, err)
}

func TestUploadWithoutDirectory(t *testing.T) {
	var calls []gatewayCall
	gateway := newGateway(t, "QmTestCid", &calls)

	uploader := NewUploader(gateway.URL, "https://ipfs.io/", "s3cret", time.Second)
	uris, err := uploader.Upload(context.Background(),
		[]File{{Name: BlobFileName, ContentType: "image/png", Data: pngData}},
		Options{WithGatewayURL: true, WithoutDirectory: true})
	require.NoError(t, err)
	require.Equal(t, []string{"https://ipfs.io/ipfs/QmTestCid"}, uris)

	require.Len(t, calls, 1)
	require.Equal(t, "s3cret", calls[0].secret)
	require.Equal(t, BlobFileName, calls[0].fileName)
	require.Equal(t, "image/png", calls[0].contentType)
	require.Equal(t, pngData, calls[0].data)
	require.False(t, calls[0].pinOptions.WrapWithDirectory)
}

func TestUploadWrappedIPFSURI(t *testing.T) {
	var calls []gatewayCall
	gateway := newGateway(t, "QmDir", &calls)

	uploader := NewUploader(gateway.URL, "https://ipfs.io", "", time.Second)
	uris, err := uploader.Upload(context.Background(),
		[]File{{Name: "my cat.png", ContentType: "image/png", Data: pngData}},
		Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"ipfs://QmDir/my%20cat.png"}, uris)
	require.Len(t, calls, 1)
	require.Empty(t, calls[0].secret)
	require.True(t, calls[0].pinOptions.WrapWithDirectory)
}

func TestUploadErrors(t *testing.T) {
	uploader := NewUploader("http://unused", "https://ipfs.io", "", time.Second)

	_, err := uploader.Upload(context.Background(), nil, Options{})
	require.ErrorIs(t, err, ErrNoFiles)

	two := []File{{Name: "a"}, {Name: "b"}}
	_, err = uploader.Upload(context.Background(), two, Options{WithoutDirectory: true})
	require.Error(t, err)

	var calls []gatewayCall
	gateway := newGateway(t, "", &calls)
	_, err = NewUploader(gateway.URL, "https://ipfs.io", "", time.Second).
		Upload(context.Background(), []File{{Name: "a", Data: pngData}}, Options{})
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "photo.PNG")
	require.NoError(t, os.WriteFile(pngPath, pngData, 0600))
	file, err := ReadFile(pngPath)
	require.NoError(t, err)
	require.Equal(t, "photo.PNG", file.Name)
	require.Equal(t, "image/png", file.ContentType)
	require.Equal(t, pngData, file.Data)

	noExt := filepath.Join(dir, "blob")
	require.NoError(t, os.WriteFile(noExt, pngData, 0600))
	file, err = ReadFile(noExt)
	require.NoError(t, err)
	require.Equal(t, "image/png", file.ContentType)

	_, err = ReadFile(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}
