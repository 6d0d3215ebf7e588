package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingSecret = errors.New("payment secret key is not configured")
	ErrUnavailable   = errors.New("payment provider unavailable")
)

// CodeAlreadyProcessed провайдер уже подтвердил этот paymentKey для этого заказа.
const CodeAlreadyProcessed = "ALREADY_PROCESSED_PAYMENT"

// RejectedError ответ провайдера с не-2xx статусом.
type RejectedError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("payment rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("payment rejected: %s (%s)", e.Message, e.Code)
}

// AlreadyProcessed сообщает, что платёж уже был подтверждён ранее.
func (e *RejectedError) AlreadyProcessed() bool {
	return e.Code == CodeAlreadyProcessed
}

// Confirmation запись провайдера о подтверждённом платеже.
type Confirmation struct {
	PaymentKey  string          `json:"paymentKey"`
	OrderID     string          `json:"orderId"`
	Status      string          `json:"status"`
	Method      string          `json:"method"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ApprovedAt  string          `json:"approvedAt"`
}

// Gateway интерфейс подтверждения платежей.
type Gateway interface {
	Confirm(ctx context.Context, paymentKey, orderNumber string, amount decimal.Decimal) (*Confirmation, error)
}

type confirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HTTPGateway struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewHTTPGateway создаёт HTTP-клиент платёжного провайдера.
func NewHTTPGateway(baseURL, secretKey string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Confirm подтверждает платёж у провайдера. Номер заказа служит ключом сопоставления.
func (c *HTTPGateway) Confirm(ctx context.Context, paymentKey, orderNumber string, amount decimal.Decimal) (*Confirmation, error) {
	if c.secretKey == "" {
		return nil, ErrMissingSecret
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid payments base url: %w", err)
	}
	u.Path = u.Path + "/v1/payments/confirm"

	body, err := json.Marshal(confirmRequest{
		PaymentKey: paymentKey,
		OrderID:    orderNumber,
		Amount:     amount.IntPart(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode confirm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+basicCredentials(c.secretKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rejected := &RejectedError{StatusCode: resp.StatusCode}
		var payload errorResponse
		if json.Unmarshal(raw, &payload) == nil {
			rejected.Code = payload.Code
			rejected.Message = payload.Message
		}
		return nil, rejected
	}

	var payload Confirmation
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode confirm response: %w", err)
	}
	return &payload, nil
}

// basicCredentials секретный ключ как имя пользователя с пустым паролем.
func basicCredentials(secretKey string) string {
	return base64.StdEncoding.EncodeToString([]byte(secretKey + ":"))
}
