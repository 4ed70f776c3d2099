package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"storefront-be/internal/config"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

// tokenSkew renews the access token this long before the gateway expires it.
const tokenSkew = time.Minute

type portoneGateway struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// portoneEnvelope wraps every Portone v1 response.
type portoneEnvelope struct {
	Code     int             `json:"code"`
	Message  *string         `json:"message"`
	Response json.RawMessage `json:"response"`
}

type portoneToken struct {
	AccessToken string `json:"access_token"`
	Now         int64  `json:"now"`
	ExpiredAt   int64  `json:"expired_at"`
}

type portonePayment struct {
	ImpUID      string `json:"imp_uid"`
	MerchantUID string `json:"merchant_uid"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	PayMethod   string `json:"pay_method"`
}

// ----------------- Constructor -----------------

func NewPortoneGateway(cfg config.Gateway) Gateway {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		logger.L().Warn("Portone API credentials are empty")
	}

	return &portoneGateway{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		now: time.Now,
	}
}

// ----------------- Access token -----------------

func (g *portoneGateway) accessToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" && g.now().Before(g.expiresAt.Add(-tokenSkew)) {
		return g.token, nil
	}

	body, _ := json.Marshal(map[string]string{
		"imp_key":    g.apiKey,
		"imp_secret": g.apiSecret,
	})

	env, status, err := g.do(ctx, http.MethodPost, "/users/getToken", "", body)
	if err != nil {
		return "", err
	}
	if status == http.StatusUnauthorized || env.Code != 0 {
		logger.FromCtx(ctx).Error("Portone token request rejected",
			zap.Int("http_status", status),
			zap.Int("code", env.Code),
		)
		return "", ErrGatewayAuthFailed
	}

	var tok portoneToken
	if err := json.Unmarshal(env.Response, &tok); err != nil || tok.AccessToken == "" {
		return "", fmt.Errorf("%w: malformed token response", ErrGatewayUnreachable)
	}

	g.token = tok.AccessToken
	g.expiresAt = time.Unix(tok.ExpiredAt, 0)
	return g.token, nil
}

func (g *portoneGateway) resetToken() {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()
}

// ----------------- Prepare -----------------

func (g *portoneGateway) Prepare(ctx context.Context, merchantUID string, amount int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("merchant_uid", merchantUID),
		zap.Int64("amount", amount),
	)

	token, err := g.accessToken(ctx)
	if err != nil {
		return err
	}

	body, _ := json.Marshal(map[string]interface{}{
		"merchant_uid": merchantUID,
		"amount":       amount,
	})

	env, status, err := g.do(ctx, http.MethodPost, "/payments/prepare", token, body)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		g.resetToken()
		return ErrGatewayAuthFailed
	}
	if env.Code != 0 {
		msg := ""
		if env.Message != nil {
			msg = *env.Message
		}
		log.Error("Portone prepare rejected", zap.Int("code", env.Code), zap.String("message", msg))
		return fmt.Errorf("%w: %s", ErrGatewayRejected, msg)
	}

	log.Info("Portone payment prepared")
	return nil
}

// ----------------- Lookup -----------------

func (g *portoneGateway) Lookup(ctx context.Context, merchantUID string) (*GatewayRecord, error) {
	log := logger.FromCtx(ctx).With(zap.String("merchant_uid", merchantUID))

	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	env, status, err := g.do(ctx, http.MethodGet, "/payments/find/"+url.PathEscape(merchantUID), token, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		log.Warn("Portone has no payment for merchant reference")
		return nil, ErrGatewayRecordNotFound
	case status == http.StatusUnauthorized:
		g.resetToken()
		return nil, ErrGatewayAuthFailed
	case env.Code != 0 || len(env.Response) == 0 || string(env.Response) == "null":
		log.Warn("Portone returned empty payment", zap.Int("code", env.Code))
		return nil, ErrGatewayRecordNotFound
	}

	var p portonePayment
	if err := json.Unmarshal(env.Response, &p); err != nil {
		log.Error("Failed decoding Portone payment", zap.Error(err))
		return nil, fmt.Errorf("%w: malformed payment response", ErrGatewayUnreachable)
	}

	log.Info("Portone payment found",
		zap.String("imp_uid", p.ImpUID),
		zap.String("status", p.Status),
		zap.Int64("amount", p.Amount),
	)

	return &GatewayRecord{
		GatewayID:   p.ImpUID,
		MerchantUID: p.MerchantUID,
		Status:      p.Status,
		Amount:      p.Amount,
		PayMethod:   p.PayMethod,
		Metadata:    env.Response,
	}, nil
}

// do sends one request. Transport failures, timeouts and 5xx answers are
// reported as ErrGatewayUnreachable so callers may retry.
func (g *portoneGateway) do(ctx context.Context, method, path, token string, body []byte) (*portoneEnvelope, int, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", method), zap.String("path", path))

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("Portone request failed", zap.Error(err))
		return nil, 0, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, resp.StatusCode, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		log.Error("Portone returned server error",
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, resp.StatusCode, fmt.Errorf("%w: http %d", ErrGatewayUnreachable, resp.StatusCode)
	}

	var env portoneEnvelope
	if len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, &env); err != nil {
			log.Error("Failed decoding Portone envelope", zap.Error(err))
			return nil, resp.StatusCode, fmt.Errorf("%w: malformed response", ErrGatewayUnreachable)
		}
	}

	return &env, resp.StatusCode, nil
}
