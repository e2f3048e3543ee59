package tosspay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/modomarket/modomarket-backend/pkg/config"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
	"github.com/modomarket/modomarket-backend/pkg/logger"
)

var (
	errSecretKeyRequired = errors.New("tosspay secret key is required")
	errBaseURLRequired   = errors.New("tosspay base url is required")
	errLoggerRequired    = errors.New("tosspay logger is required")
)

// Gateway is the confirm/cancel surface the payment reconciler depends on.
type Gateway interface {
	ConfirmPayment(ctx context.Context, params ConfirmParams) (*Confirmation, error)
	CancelPayment(ctx context.Context, paymentKey, reason string) error
}

// ConfirmParams carries the three values the gateway verifies against the
// checkout session it holds.
type ConfirmParams struct {
	PaymentKey     string `json:"paymentKey"`
	GatewayOrderID string `json:"orderId"`
	Amount         int    `json:"amount"`
}

// Confirmation is the gateway's record of a captured payment.
type Confirmation struct {
	PaymentKey     string `json:"paymentKey"`
	GatewayOrderID string `json:"orderId"`
	TotalAmount    int    `json:"totalAmount"`
	Status         string `json:"status"`
	TransactionID  string `json:"lastTransactionKey"`
}

type gatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to the payment gateway's REST API with centralized auth,
// logging, and error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	logger     *logger.Logger
}

// NewClient initializes the gateway wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.TossPayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretKeyRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(secret+":")),
		logger:     logg,
	}

	logg.Info(ctx, "tosspay client initialized")
	return c, nil
}

// ConfirmPayment asks the gateway to capture the payment for the given key.
// The gateway rejects the capture when amount differs from the checkout
// session it holds, so a non-error response means the amount was accepted.
func (c *Client) ConfirmPayment(ctx context.Context, params ConfirmParams) (*Confirmation, error) {
	if strings.TrimSpace(params.PaymentKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment key is required")
	}
	if strings.TrimSpace(params.GatewayOrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id is required")
	}
	if params.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	c.log(ctx, "request", "confirm_payment", map[string]any{
		"gateway_order_id": params.GatewayOrderID,
		"amount":           params.Amount,
	})

	var confirmation Confirmation
	if err := c.post(ctx, "/v1/payments/confirm", params, &confirmation); err != nil {
		c.log(ctx, "error", "confirm_payment", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "confirm_payment", map[string]any{
		"gateway_order_id": confirmation.GatewayOrderID,
		"status":           confirmation.Status,
	})
	return &confirmation, nil
}

// CancelPayment voids a captured payment. Used as compensation when the
// order could not be persisted after a successful capture.
func (c *Client) CancelPayment(ctx context.Context, paymentKey, reason string) error {
	if strings.TrimSpace(paymentKey) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment key is required")
	}

	c.log(ctx, "request", "cancel_payment", map[string]any{"reason": reason})

	body := map[string]string{"cancelReason": reason}
	path := fmt.Sprintf("/v1/payments/%s/cancel", paymentKey)
	if err := c.post(ctx, path, body, nil); err != nil {
		c.log(ctx, "error", "cancel_payment", map[string]any{"error": err.Error()})
		return err
	}

	c.log(ctx, "response", "cancel_payment", nil)
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding gateway request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building gateway request")
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "calling payment gateway")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "reading gateway response")
	}

	if resp.StatusCode >= 400 {
		return c.mapGatewayError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "decoding gateway response")
		}
	}
	return nil
}

func (c *Client) mapGatewayError(status int, raw []byte) error {
	var ge gatewayError
	_ = json.Unmarshal(raw, &ge)
	msg := ge.Message
	if msg == "" {
		msg = "payment gateway request failed"
	}

	code := pkgerrors.CodeGateway
	switch {
	case ge.Code == "NOT_FOUND_PAYMENT" || status == http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case ge.Code == "ALREADY_PROCESSED_PAYMENT":
		code = pkgerrors.CodeStateConflict
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = pkgerrors.CodeUnauthorized
	case status >= 400 && status < 500:
		code = pkgerrors.CodeValidation
	}
	return pkgerrors.New(code, msg).WithDetails(map[string]any{"gateway_code": ge.Code})
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("tosspay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("tosspay %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "card", "token", "key", "phone", "email"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
