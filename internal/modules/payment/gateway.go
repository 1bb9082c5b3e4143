package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway is the external PIX collaborator: token acquisition plus charge
// creation. Reconciliation comes back through the webhook, not through this
// interface.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
}

type ChargeRequest struct {
	Reference     string          `json:"external_reference"`
	MovementID    string          `json:"movement_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	PayerName     string          `json:"payer_name"`
	PayerDocument string          `json:"payer_document"`
}

type ChargeResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`    // PIX copia-e-cola payload
	QRCode string `json:"qr_code"` // base64 QR image
}

type GatewayClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewGatewayClient(baseURL, clientID, clientSecret string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (g *GatewayClient) getToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" && time.Now().Before(g.tokenExpiry) {
		return g.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", g.clientID)
	form.Set("client_secret", g.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrGatewayUnavailable)
	}

	g.token = body.AccessToken
	// Renew one minute early to avoid using a token mid-expiry.
	g.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - time.Minute)

	return g.token, nil
}

func (g *GatewayClient) CreateCharge(ctx context.Context, chargeReq ChargeRequest) (*ChargeResponse, error) {
	token, err := g.getToken(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(chargeReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/pix/charges", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: charge endpoint returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var body ChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if body.Code == "" || body.QRCode == "" {
		return nil, fmt.Errorf("%w: gateway omitted the PIX code or QR payload", ErrGatewayUnavailable)
	}

	return &body, nil
}
