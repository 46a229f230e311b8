package secretstore

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
)

const (
	defaultMount   = "secret"
	defaultTimeout = 30 * time.Second

	// valueField is the single field each secret is stored under.
	valueField = "value"
)

// ClientConfig carries everything the client needs explicitly. Nothing is
// read from the process environment.
type ClientConfig struct {
	Address   string
	Token     string
	Namespace string
	Mount     string

	// CACertFile adds a PEM certificate to the trusted roots, typically the
	// vault's self-signed listener certificate.
	CACertFile string

	// HTTPClient overrides the transport entirely. CACertFile is ignored when set.
	HTTPClient *http.Client
}

// HTTPClient talks to a KV version 2 secrets engine over its HTTP API.
type HTTPClient struct {
	base      *url.URL
	token     string
	namespace string
	mount     string
	http      *http.Client
}

var _ Store = (*HTTPClient)(nil)

// NewHTTPClient validates cfg and builds a client.
func NewHTTPClient(cfg ClientConfig) (*HTTPClient, error) {
	base, err := url.Parse(cfg.Address)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: secret store address %q must be an http(s) URL", kerrors.ErrInvalidConfig, cfg.Address)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: secret store token is required", kerrors.ErrInvalidConfig)
	}

	mount := strings.Trim(cfg.Mount, "/")
	if mount == "" {
		mount = defaultMount
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient, err = newTransportClient(cfg.CACertFile)
		if err != nil {
			return nil, err
		}
	}

	return &HTTPClient{
		base:      base,
		token:     cfg.Token,
		namespace: cfg.Namespace,
		mount:     mount,
		http:      httpClient,
	}, nil
}

func newTransportClient(caCertFile string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if caCertFile != "" {
		pemData, err := os.ReadFile(caCertFile)
		if err != nil {
			return nil, fmt.Errorf("%w: reading CA certificate %s: %w", kerrors.ErrIO, caCertFile, err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pemData) {
			return nil, fmt.Errorf("%w: no certificates found in %s", kerrors.ErrInvalidConfig, caCertFile)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}

	return &http.Client{Transport: transport, Timeout: defaultTimeout}, nil
}

type kvWriteRequest struct {
	Data map[string]string `json:"data"`
}

type kvReadResponse struct {
	Data struct {
		Data map[string]string `json:"data"`
	} `json:"data"`
}

type kvListResponse struct {
	Data struct {
		Keys []string `json:"keys"`
	} `json:"data"`
}

type errorResponse struct {
	Errors []string `json:"errors"`
}

func (c *HTTPClient) Put(ctx context.Context, path, value string) error {
	body, err := json.Marshal(kvWriteRequest{Data: map[string]string{valueField: value}})
	if err != nil {
		return fmt.Errorf("encoding secret: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoint("data", path), nil, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp, path)
}

func (c *HTTPClient) Get(ctx context.Context, path string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint("data", path), nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", kerrors.ErrSecretNotFound, path)
	}
	if err := checkStatus(resp, path); err != nil {
		return "", err
	}

	var decoded kvReadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decoding response for %s: %v", kerrors.ErrSecretStore, path, err)
	}

	value, ok := decoded.Data.Data[valueField]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %q field", kerrors.ErrSecretNotFound, path, valueField)
	}
	return value, nil
}

func (c *HTTPClient) List(ctx context.Context, path string) ([]string, error) {
	query := url.Values{"list": []string{"true"}}
	resp, err := c.do(ctx, http.MethodGet, c.endpoint("metadata", path), query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []string{}, nil
	}
	if err := checkStatus(resp, path); err != nil {
		return nil, err
	}

	var decoded kvListResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding list for %s: %v", kerrors.ErrSecretStore, path, err)
	}
	return decoded.Data.Keys, nil
}

func (c *HTTPClient) Delete(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.endpoint("metadata", path), nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp, path)
}

// endpoint builds /v1/<mount>/<kind>/<path> with each segment escaped.
func (c *HTTPClient) endpoint(kind, path string) string {
	segments := []string{"v1", url.PathEscape(c.mount), kind}
	for _, s := range strings.Split(strings.Trim(path, "/"), "/") {
		if s != "" {
			segments = append(segments, url.PathEscape(s))
		}
	}
	return strings.TrimRight(c.base.String(), "/") + "/" + strings.Join(segments, "/")
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*http.Response, error) {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-Vault-Token", c.token)
	req.Header.Set("X-Vault-Request", "true")
	if c.namespace != "" {
		req.Header.Set("X-Vault-Namespace", c.namespace)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", kerrors.ErrSecretStore, method, req.URL.Path, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var decoded errorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &decoded) == nil && len(decoded.Errors) > 0 {
		return fmt.Errorf("%w: %s: %d %s", kerrors.ErrSecretStore, path, resp.StatusCode, strings.Join(decoded.Errors, "; "))
	}
	return fmt.Errorf("%w: %s: %d %s", kerrors.ErrSecretStore, path, resp.StatusCode, http.StatusText(resp.StatusCode))
}
