// Package oauth forwards authorization-code grants to an upstream OAuth
// token endpoint. The default upstream is a local identity server with
// a self-signed certificate, so certificate verification is
// configurable.
package oauth

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aescanero/pulse/pkg/domain"
)

// Exchanger performs the token exchange against the upstream endpoint.
type Exchanger struct {
	tokenURL string
	client   *http.Client
	logger   *zap.Logger
}

// Config holds token exchange configuration
type Config struct {
	TokenURL           string
	InsecureSkipVerify bool
	Timeout            time.Duration
	Logger             *zap.Logger
}

// NewExchanger creates a token exchanger.
func NewExchanger(cfg *Config) *Exchanger {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	return &Exchanger{
		tokenURL: cfg.TokenURL,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: cfg.Logger,
	}
}

// Exchange forwards the authorization-code grant and returns the
// upstream response body verbatim.
func (e *Exchanger) Exchange(ctx context.Context, req domain.TokenExchangeRequest) (domain.TokenExchangeResponse, error) {
	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", req.Code)
	params.Set("redirect_uri", req.RedirectURI)
	params.Set("client_id", req.ClientID)
	params.Set("code_verifier", req.CodeVerifier)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Error("token exchange rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	return domain.TokenExchangeResponse(body), nil
}
