package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/saradorri/edrewards/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Config holds the provider endpoint, credentials and retry policy
type Config struct {
	BaseURL      string
	APIUser      string
	APIKey       string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

type providerClient struct {
	baseURL string
	apiUser string
	apiKey  string
	// payments must not be re-sent once the request may have reached the provider
	initiateClient *retryablehttp.Client
	queryClient    *retryablehttp.Client
	logger         *logger.Logger
}

// NewPaymentProvider creates the mobile-money gateway client
func NewPaymentProvider(cfg Config, log *logger.Logger) domain.PaymentProvider {
	log = log.Named("provider")
	return &providerClient{
		baseURL:        cfg.BaseURL,
		apiUser:        cfg.APIUser,
		apiKey:         cfg.APIKey,
		initiateClient: newRetryableClient(cfg, log, retryOnConnectionError),
		queryClient:    newRetryableClient(cfg, log, retryablehttp.DefaultRetryPolicy),
		logger:         log,
	}
}

func newRetryableClient(cfg Config, log *logger.Logger, policy retryablehttp.CheckRetry) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	client.CheckRetry = policy
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = &leveledLogger{sugar: log.Zap().Sugar()}
	return client
}

// InitiatePayment sends a direct-pay request to the payer's phone
func (c *providerClient) InitiatePayment(ctx context.Context, reqData domain.PaymentRequest) (*domain.PaymentInitiation, error) {
	var resp domain.PaymentInitiation
	if err := c.sendRequest(ctx, c.initiateClient, "initiate", http.MethodPost, c.baseURL+"/direct-pay", reqData, &resp); err != nil {
		return nil, err
	}
	if resp.TransID == "" {
		return nil, &domain.ProviderError{StatusCode: http.StatusBadGateway, Code: "EMPTY_TRANS_ID", Message: "provider returned no transaction id"}
	}
	return &resp, nil
}

// PaymentStatus looks a payment up by the provider transaction id
func (c *providerClient) PaymentStatus(ctx context.Context, transID string) (*domain.ProviderPayment, error) {
	var resp domain.ProviderPayment
	endpoint := fmt.Sprintf("%s/payment-status/%s", c.baseURL, url.PathEscape(transID))
	if err := c.sendRequest(ctx, c.queryClient, "status", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FindPaymentByExternalID looks a payment up by our external id and returns the most recent attempt
func (c *providerClient) FindPaymentByExternalID(ctx context.Context, externalID string) (*domain.ProviderPayment, error) {
	var resp []domain.ProviderPayment
	endpoint := fmt.Sprintf("%s/transaction/external/%s", c.baseURL, url.PathEscape(externalID))
	err := c.sendRequest(ctx, c.queryClient, "find_by_external_id", http.MethodGet, endpoint, nil, &resp)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp) == 0 {
		return nil, nil
	}
	return &resp[len(resp)-1], nil
}

// sendRequest sends an HTTP request and decodes a 2xx JSON body into out
func (c *providerClient) sendRequest(ctx context.Context, client *retryablehttp.Client, operation, method, endpoint string, bodyData any, out any) error {
	start := time.Now()
	status := "error"
	defer func() {
		metrics.ProviderRequestDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if bodyData != nil {
		jsonBytes, err := json.Marshal(bodyData)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(jsonBytes)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apiuser", c.apiUser)
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			status = "timeout"
			c.logger.Warn("Provider request timed out", zap.String("operation", operation), zap.Error(err))
			return fmt.Errorf("%w: %s", domain.ErrProviderTimeout, err.Error())
		}
		c.logger.Error("Provider request failed", zap.String("operation", operation), zap.Error(err))
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return fmt.Errorf("%w: %s", domain.ErrProviderTimeout, err.Error())
		}
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newProviderError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// newProviderError builds a ProviderError from an error body
func newProviderError(statusCode int, body []byte) *domain.ProviderError {
	var errResp domain.ProviderErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &domain.ProviderError{StatusCode: statusCode, Code: errResp.Code, Message: errResp.Message}
	}
	return &domain.ProviderError{
		StatusCode: statusCode,
		Code:       http.StatusText(statusCode),
		Message:    fmt.Sprintf("unexpected status %d - %s", statusCode, string(body)),
	}
}

// leveledLogger routes retryablehttp logs through zap
type leveledLogger struct {
	sugar *zap.SugaredLogger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}
