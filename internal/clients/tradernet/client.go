// Package tradernet is a compact client for the Tradernet (Freedom24)
// trading API, covering the operations the rebalancer needs: session
// checks, quotes, market orders, and cash balances.
package tradernet

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/domain"
)

const defaultBaseURL = "https://freedom24.com"

// Client talks to the Tradernet REST API with HMAC-signed requests.
// The connection is a single logical handle; callers serialize
// exchange-level operations against the same balance.
type Client struct {
	baseURL    string
	publicKey  string
	privateKey string
	httpClient *http.Client
	log        zerolog.Logger

	mu        sync.Mutex
	connected bool
}

var _ domain.BrokerClient = (*Client)(nil)

// NewClient creates a Tradernet client. Credentials are validated on the
// first request, not here.
func NewClient(publicKey, privateKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		publicKey:  publicKey,
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("client", "tradernet").Logger(),
	}
}

// IsConnected reports whether the last session check succeeded
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect verifies credentials against the API and marks the session live
func (c *Client) Connect() error {
	if c.publicKey == "" || c.privateKey == "" {
		return fmt.Errorf("keypair is not valid")
	}

	if _, err := c.request("getSidInfo", map[string]any{}); err != nil {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		return fmt.Errorf("failed to establish session: %w", err)
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	c.log.Info().Msg("Tradernet session established")
	return nil
}

type quotePayload struct {
	Result []struct {
		Ticker string  `json:"c"`
		Price  float64 `json:"ltp"`
		Time   string  `json:"ltt"`
	} `json:"result"`
}

// GetQuote returns the last trade price for a symbol
func (c *Client) GetQuote(symbol string) (*domain.BrokerQuote, error) {
	body, err := c.request("getStockQuotesJson", map[string]any{"tickers": symbol})
	if err != nil {
		return nil, fmt.Errorf("quote request failed for %s: %w", symbol, err)
	}

	var payload quotePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse quote for %s: %w", symbol, err)
	}
	if len(payload.Result) == 0 {
		return nil, fmt.Errorf("no quote returned for %s", symbol)
	}

	q := payload.Result[0]
	return &domain.BrokerQuote{
		Symbol:    q.Ticker,
		Price:     q.Price,
		Timestamp: q.Time,
	}, nil
}

type orderPayload struct {
	OrderID int64   `json:"order_id"`
	ErrMsg  string  `json:"errMsg"`
	Price   float64 `json:"p"`
}

// PlaceOrder submits a day market order. Side is "BUY" or "SELL".
func (c *Client) PlaceOrder(symbol, side string, quantity float64) (*domain.BrokerOrderResult, error) {
	var action int
	switch side {
	case "BUY":
		action = 1
	case "SELL":
		action = 3
	default:
		return nil, fmt.Errorf("invalid side: %s (must be BUY or SELL)", side)
	}

	body, err := c.request("putTradeOrder", map[string]any{
		"instr_name": symbol,
		"action_id":  action,
		"order_type": 1, // market
		"qty":        int(quantity),
		"expiration": "day",
	})
	if err != nil {
		return nil, fmt.Errorf("order placement failed for %s: %w", symbol, err)
	}

	var payload orderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse order result for %s: %w", symbol, err)
	}
	if payload.ErrMsg != "" {
		return nil, fmt.Errorf("order rejected for %s: %s", symbol, payload.ErrMsg)
	}

	c.log.Info().
		Str("symbol", symbol).
		Str("side", side).
		Float64("quantity", quantity).
		Int64("order_id", payload.OrderID).
		Msg("Order placed")

	return &domain.BrokerOrderResult{
		OrderID:  strconv.FormatInt(payload.OrderID, 10),
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
	}, nil
}

type accountPayload struct {
	Result struct {
		Accounts []struct {
			Currency string  `json:"curr"`
			Amount   float64 `json:"s"`
		} `json:"accounts"`
	} `json:"result"`
}

// GetCashBalances returns the free cash per currency
func (c *Client) GetCashBalances() ([]domain.BrokerCashBalance, error) {
	body, err := c.request("getPositionJson", map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("balance request failed: %w", err)
	}

	var payload accountPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse balances: %w", err)
	}

	balances := make([]domain.BrokerCashBalance, 0, len(payload.Result.Accounts))
	for _, acct := range payload.Result.Accounts {
		balances = append(balances, domain.BrokerCashBalance{
			Currency: acct.Currency,
			Amount:   acct.Amount,
		})
	}
	return balances, nil
}

// request performs a signed POST to /api/<cmd>. The signature is HMAC
// SHA256 over the JSON payload concatenated with a unix timestamp.
func (c *Client) request(cmd string, params map[string]any) ([]byte, error) {
	if c.publicKey == "" || c.privateKey == "" {
		return nil, fmt.Errorf("keypair is not valid")
	}

	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := sign(c.privateKey, string(payload)+timestamp)

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/api/%s", c.baseURL, cmd), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-NtApi-PublicKey", c.publicKey)
	req.Header.Set("X-NtApi-Timestamp", timestamp)
	req.Header.Set("X-NtApi-Sig", signature)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, resp.Status)
	}

	return body, nil
}

func sign(privateKey, message string) string {
	mac := hmac.New(sha256.New, []byte(privateKey))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
