package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tipjar-backend/internal/config"
	"tipjar-backend/internal/model"
)

// GatewayClient wraps the external payment provider's checkout-initiation
// and verify-payment endpoints. It reports transport and protocol errors;
// deciding what a gateway "failed" answer means is the caller's job.
type GatewayClient interface {
	CreateCheckout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResult, error)
	VerifyPayment(ctx context.Context, transactionID string) (*model.VerifyResult, error)
}

type rupantorPayClient struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
}

func NewGatewayClient(gatewayCfg *config.RupantorPay) GatewayClient {
	return &rupantorPayClient{
		httpClient: &http.Client{
			Timeout: gatewayCfg.Timeout,
		},
		baseApiURL: gatewayCfg.BaseApiURL,
		apiKey:     gatewayCfg.APIKey,
	}
}

func (c *rupantorPayClient) CreateCheckout(ctx context.Context, checkoutReq *model.CheckoutRequest) (*model.CheckoutResult, error) {
	body, err := c.post(ctx, "/api/payment/checkout", checkoutReq)
	if err != nil {
		return nil, err
	}

	var result model.CheckoutResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}

	return &result, nil
}

func (c *rupantorPayClient) VerifyPayment(ctx context.Context, transactionID string) (*model.VerifyResult, error) {
	body, err := c.post(ctx, "/api/payment/verify-payment", map[string]string{
		"transaction_id": transactionID,
	})
	if err != nil {
		return nil, err
	}

	var result model.VerifyResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	result.Raw = json.RawMessage(body)

	return &result, nil
}

func (c *rupantorPayClient) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
