package upstream

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/yctimlin/openai-mimic/internal/config"
	"github.com/yctimlin/openai-mimic/internal/models"
	"go.uber.org/zap"
)

// Client performs authenticated HTTP calls against the backend. It holds no
// token state: a token is acquired per request and refreshed at most once
// when the backend reports credential expiry.
type Client struct {
	cfg    config.UpstreamConfig
	logger *zap.Logger

	tokenClient *http.Client
	chatClient  *http.Client
	embedClient *http.Client
}

// NewClient creates a new backend client. The three endpoints carry
// separate timeout budgets but share one transport.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		ForceAttemptHTTP2:   true,
	}
	if !cfg.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		cfg:         cfg,
		logger:      logger,
		tokenClient: &http.Client{Timeout: cfg.TokenTimeout, Transport: transport},
		chatClient:  &http.Client{Timeout: cfg.ChatTimeout, Transport: transport},
		embedClient: &http.Client{Timeout: cfg.EmbeddingTimeout, Transport: transport},
	}
}

// AcquireToken requests a fresh access token from the token endpoint.
func (c *Client) AcquireToken(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{"code": c.cfg.AuthCode})
	if err != nil {
		return "", &AuthError{Err: err}
	}

	c.logger.Debug("Requesting token", zap.String("url", c.cfg.TokenURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.tokenClient.Do(req)
	if err != nil {
		c.logger.Error("Token request failed", zap.Error(err))
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Token endpoint returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var tokenResp models.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", &AuthError{Err: fmt.Errorf("failed to decode token response: %w", err)}
	}
	if tokenResp.Data.AccessToken == "" {
		c.logger.Error("Token response missing data.access_token", zap.String("body", string(body)))
		return "", &AuthError{Body: "expected data.access_token in response"}
	}

	c.logger.Info("Token obtained successfully")
	return tokenResp.Data.AccessToken, nil
}

// CallChat posts the chat payload to the chat endpoint, transparently
// refreshing the token once if the backend signals expiry.
func (c *Client) CallChat(ctx context.Context, token string, payload *models.ChatPayload) (*models.ChatResult, error) {
	var result models.ChatResult
	if err := c.doWithRetry(ctx, c.chatClient, c.cfg.ChatURL, token, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CallEmbedding posts per-text embedding params to the embedding endpoint,
// with the same single-retry policy as CallChat.
func (c *Client) CallEmbedding(ctx context.Context, token string, params *models.EmbeddingParams) (*models.EmbeddingResult, error) {
	var result models.EmbeddingResult
	if err := c.doWithRetry(ctx, c.embedClient, c.cfg.EmbeddingURL, token, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// doWithRetry executes a JSON POST against url and decodes the body into
// out. A non-200 response whose body carries errorCode 401 triggers exactly
// one token refresh and one retry of the identical request; the retry's
// failure, if any, is what the caller sees. Any other non-200 surfaces
// immediately, and transport failures are never retried.
func (c *Client) doWithRetry(ctx context.Context, client *http.Client, url, token string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	status, respBody, err := c.post(ctx, client, url, token, body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if status == http.StatusOK {
		return decodeResult(respBody, out)
	}

	var errBody models.UpstreamErrorBody
	if jsonErr := json.Unmarshal(respBody, &errBody); jsonErr != nil || errBody.ErrorCode != 401 {
		return &UpstreamError{Status: status, Body: string(respBody)}
	}

	c.logger.Warn("Token expired, fetching a new token...")
	newToken, err := c.AcquireToken(ctx)
	if err != nil {
		return err
	}

	status, respBody, err = c.post(ctx, client, url, newToken, body)
	if err != nil {
		return &NetworkError{Err: err}
	}
	if status != http.StatusOK {
		c.logger.Error("Retry with new token failed",
			zap.Int("status", status),
			zap.String("body", string(respBody)))
		return &UpstreamError{Status: status, Body: string(respBody)}
	}
	return decodeResult(respBody, out)
}

func (c *Client) post(ctx context.Context, client *http.Client, url, token string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func decodeResult(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}
