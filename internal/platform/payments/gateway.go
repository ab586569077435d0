package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/ovenline/bakehouse/pkg/config"
)

// Gateway talks to the payment provider's REST API. Charge mechanics stay on
// the provider side; this client only moves the contract's requests and
// results across the wire.
type Gateway struct {
	cfg  *cfgpkg.Config
	http *http.Client
	log  *zap.SugaredLogger
}

func NewGateway(cfg *cfgpkg.Config, log *zap.SugaredLogger) Client {
	timeout := time.Duration(cfg.Payments.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{cfg: cfg, http: &http.Client{Timeout: timeout}, log: log}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("payment gateway error: %s (%s)", e.Message, e.Code)
}

func (g *Gateway) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	if g.cfg.Payments.BaseURL == "" {
		return 0, fmt.Errorf("payment gateway is not configured")
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.Payments.BaseURL+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.Payments.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := g.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("payment gateway request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return res.StatusCode, fmt.Errorf("failed to decode gateway response: %w", err)
			}
		}
		return res.StatusCode, nil
	}

	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Message == "" {
		return res.StatusCode, fmt.Errorf("payment gateway returned status %d", res.StatusCode)
	}
	return res.StatusCode, &apiErr
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req *CreateCheckoutRequest) (*Session, error) {
	var s Session
	if _, err := g.do(ctx, http.MethodPost, "/v1/checkout/sessions", req, &s); err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &s, nil
}

func (g *Gateway) CreateSetupSession(ctx context.Context, req *CreateSetupRequest) (*Session, error) {
	var s Session
	if _, err := g.do(ctx, http.MethodPost, "/v1/setup/sessions", req, &s); err != nil {
		return nil, fmt.Errorf("failed to create setup session: %w", err)
	}
	return &s, nil
}

func (g *Gateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if _, err := g.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+sessionID, nil, &s); err != nil {
		return nil, fmt.Errorf("failed to retrieve session %s: %w", sessionID, err)
	}
	return &s, nil
}

func (g *Gateway) ChargeOffSession(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	var res ChargeResult
	status, err := g.do(ctx, http.MethodPost, "/v1/charges", req, &res)
	if err != nil {
		// Declines come back as 402 with a reason code. Anything else
		// (timeout, 5xx, transport failure) stays an error so callers never
		// mistake an unknown outcome for success.
		var apiErr *apiError
		if status == http.StatusPaymentRequired && errors.As(err, &apiErr) {
			return &ChargeResult{Status: ChargeStatusFailed, ReasonCode: apiErr.Code}, nil
		}
		return nil, err
	}
	return &res, nil
}

func (g *Gateway) VerifyEventSignature(payload []byte, sigHeader string) (*Event, error) {
	return VerifyEvent(payload, sigHeader, g.cfg.Payments.WebhookSecret, time.Now(), DefaultSignatureTolerance)
}
