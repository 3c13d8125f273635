package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/appoetlabs/appoet/internal/config"
	paymentdomain "github.com/appoetlabs/appoet/internal/payment/domain"
)

// Adapter talks to the PayPal Orders v2 REST API. Access tokens from the
// client-credentials grant are cached until shortly before expiry.
type Adapter struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	log          *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func New(cfg config.Config, log *zap.Logger) *Adapter {
	return &Adapter{
		baseURL:      strings.TrimRight(cfg.PayPal.BaseURL, "/"),
		clientID:     cfg.PayPal.ClientID,
		clientSecret: cfg.PayPal.ClientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          log.Named("payment.paypal"),
	}
}

type amountPayload struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type createOrderRequest struct {
	Intent        string `json:"intent"`
	PurchaseUnits []struct {
		ReferenceID string        `json:"reference_id"`
		Description string        `json:"description,omitempty"`
		Amount      amountPayload `json:"amount"`
	} `json:"purchase_units"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string        `json:"id"`
				Status string        `json:"status"`
				Amount amountPayload `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (a *Adapter) CreateRemoteOrder(ctx context.Context, referenceID, description string, amountCents int64, currency string) (*paymentdomain.RemoteOrder, error) {
	var req createOrderRequest
	req.Intent = "CAPTURE"
	req.PurchaseUnits = make([]struct {
		ReferenceID string        `json:"reference_id"`
		Description string        `json:"description,omitempty"`
		Amount      amountPayload `json:"amount"`
	}, 1)
	req.PurchaseUnits[0].ReferenceID = referenceID
	req.PurchaseUnits[0].Description = description
	req.PurchaseUnits[0].Amount = amountPayload{
		CurrencyCode: currency,
		Value:        CentsToDecimal(amountCents),
	}

	body, err := a.post(ctx, "/v2/checkout/orders", req)
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode paypal order: %w", err)
	}
	if resp.ID == "" {
		return nil, paymentdomain.ErrProviderUnavailable
	}

	remote := &paymentdomain.RemoteOrder{ID: resp.ID}
	for _, link := range resp.Links {
		if link.Rel == "approve" {
			remote.ApprovalURL = link.Href
			break
		}
	}

	a.log.Info("paypal order created", zap.String("paypal_order_id", resp.ID))
	return remote, nil
}

func (a *Adapter) Capture(ctx context.Context, remoteOrderID string) (*paymentdomain.CaptureResult, error) {
	remoteOrderID = strings.TrimSpace(remoteOrderID)
	if remoteOrderID == "" {
		return nil, paymentdomain.ErrRemoteOrderNotFound
	}

	body, err := a.post(ctx, "/v2/checkout/orders/"+url.PathEscape(remoteOrderID)+"/capture", struct{}{})
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode paypal capture: %w", err)
	}

	result := &paymentdomain.CaptureResult{
		Status:     resp.Status,
		RawPayload: body,
	}
	if len(resp.PurchaseUnits) > 0 && len(resp.PurchaseUnits[0].Payments.Captures) > 0 {
		capture := resp.PurchaseUnits[0].Payments.Captures[0]
		cents, err := DecimalToCents(capture.Amount.Value)
		if err != nil {
			return nil, fmt.Errorf("parse captured amount %q: %w", capture.Amount.Value, err)
		}
		result.AmountCents = cents
		result.Currency = capture.Amount.CurrencyCode
		result.ProviderRef = capture.ID
	}

	a.log.Info("paypal capture returned",
		zap.String("paypal_order_id", remoteOrderID),
		zap.String("status", resp.Status))
	return result, nil
}

func (a *Adapter) post(ctx context.Context, path string, payload any) ([]byte, error) {
	token, err := a.token(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, paymentdomain.ErrProviderUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, paymentdomain.ErrRemoteOrderNotFound
	case resp.StatusCode >= 500:
		return nil, paymentdomain.ErrProviderUnavailable
	case resp.StatusCode >= 400:
		a.log.Warn("paypal request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, fmt.Errorf("paypal request failed with status %d", resp.StatusCode)
	}
	return body, nil
}

func (a *Adapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	form := url.Values{"grant_type": []string{"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", paymentdomain.ErrProviderUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", paymentdomain.ErrProviderUnavailable
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}
	if tokenResp.AccessToken == "" {
		return "", paymentdomain.ErrProviderUnavailable
	}

	a.accessToken = tokenResp.AccessToken
	// Refresh one minute early to avoid racing the expiry.
	a.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return a.accessToken, nil
}

// CentsToDecimal renders integer cents as the two-decimal string PayPal
// expects, e.g. 199 -> "1.99".
func CentsToDecimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// DecimalToCents parses provider decimal strings without going through
// floating point.
func DecimalToCents(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := strings.HasPrefix(value, "-")
	value = strings.TrimPrefix(value, "-")

	whole, frac, _ := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		frac = frac[:2]
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}

	cents := w*100 + f
	if negative {
		cents = -cents
	}
	return cents, nil
}
