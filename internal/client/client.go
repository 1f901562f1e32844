package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kelsos/solmint/internal/logger"
)

// maxResponseBytes caps JSON responses and downloads.
const maxResponseBytes = 32 << 20

// ErrTooLarge is returned when a download exceeds maxResponseBytes.
var ErrTooLarge = fmt.Errorf("response exceeds %d bytes", maxResponseBytes)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Body)
}

// FilePart is a single file field of a multipart upload.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// APIClient handles JSON-over-HTTP communication with one base URL
type APIClient struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
}

// NewAPIClient creates a new API client for baseURL. An empty baseURL makes
// every endpoint an absolute URL.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(map[string]string),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetHeader adds a header sent with every request.
func (c *APIClient) SetHeader(key, value string) {
	c.headers[key] = value
}

// BuildURL constructs a full URL for the given endpoint
func (c *APIClient) BuildURL(endpoint string) string {
	return c.baseURL + endpoint
}

// Get makes a GET request to the specified endpoint
func (c *APIClient) Get(ctx context.Context, endpoint string, result interface{}) error {
	return c.request(ctx, http.MethodGet, endpoint, "", nil, nil, result)
}

// Post makes a JSON POST request to the specified endpoint
func (c *APIClient) Post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	return c.PostWithHeaders(ctx, endpoint, nil, body, result)
}

// PostWithHeaders is Post with extra per-request headers.
func (c *APIClient) PostWithHeaders(ctx context.Context, endpoint string, headers map[string]string, body interface{}, result interface{}) error {
	var requestBody io.Reader
	contentType := ""
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshaling request body: %w", err)
		}
		requestBody = bytes.NewReader(jsonBody)
		contentType = "application/json"
	}

	return c.request(ctx, http.MethodPost, endpoint, contentType, headers, requestBody, result)
}

// PostMultipart sends fields and files as multipart/form-data in one request.
func (c *APIClient) PostMultipart(ctx context.Context, endpoint string, fields map[string]string, files []FilePart, result interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(file.Field), escapeQuotes(file.FileName)))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return fmt.Errorf("error creating multipart file %s: %w", file.FileName, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return fmt.Errorf("error writing multipart file %s: %w", file.FileName, err)
		}
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("error writing multipart field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("error closing multipart body: %w", err)
	}

	return c.request(ctx, http.MethodPost, endpoint, writer.FormDataContentType(), nil, &buf, result)
}

// Download fetches endpoint and returns the raw body with its content type.
func (c *APIClient) Download(ctx context.Context, endpoint string) ([]byte, string, error) {
	url := c.BuildURL(endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("error reading response: %w", err)
	}
	if len(data) > maxResponseBytes {
		return nil, "", ErrTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}

// request is the core HTTP request method
func (c *APIClient) request(ctx context.Context, method, endpoint, contentType string, headers map[string]string, body io.Reader, result interface{}) error {
	url := c.BuildURL(endpoint)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(result); err != nil {
		logger.Error("%s: Error decoding response: %v", url, err)
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}

// do sends req with the default headers and checks for a 2xx status.
func (c *APIClient) do(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	url := req.URL.String()
	start := time.Now()
	logger.Debug("Starting %s request to %s", req.Method, url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Request failed after (%s) %v: %v", url, time.Since(start), err)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	logger.Debug("Request to %s completed in %v with status %d", url, time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		logger.Error("%s: HTTP error %d: %s", url, resp.StatusCode, string(bodyBytes))
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	return resp, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
