package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"remitchat/config"
	"remitchat/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client talks to the settlement gateway over HTTP JSON. It executes
// on-chain transfers and resolves balances and verified wallet
// addresses. The gateway is the system of record for wallet links, so
// this client also serves as the WalletDirectory.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a settlement gateway client with a bounded timeout.
func NewClient(cfg config.ChainConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "chain_client").Logger(),
	}
}

type transferRequest struct {
	ToAddress string `json:"to_address"`
	Amount    int64  `json:"amount"`
}

type transferResponse struct {
	TxHash string `json:"tx_hash"`
	Status string `json:"status"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type walletResponse struct {
	UserID  string `json:"user_id"`
	Address string `json:"address"`
}

// Transfer executes an irreversible on-chain transfer. A non-2xx
// response or a timeout is a settlement failure; the caller decides
// what to compensate.
func (c *Client) Transfer(ctx context.Context, toAddress string, amount int64) (*ports.TransferReceipt, error) {
	body, err := json.Marshal(transferRequest{ToAddress: toAddress, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("chain transfer: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfers", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("chain transfer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chain transfer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chain transfer: gateway returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var out transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("chain transfer: decode response: %w", err)
	}
	if out.TxHash == "" {
		return nil, fmt.Errorf("chain transfer: gateway returned no tx hash")
	}

	c.log.Info().Str("tx_hash", out.TxHash).Int64("amount", amount).Msg("transfer settled")
	return &ports.TransferReceipt{TxHash: out.TxHash, Status: out.Status}, nil
}

// GetBalance returns the current on-chain balance for an address.
func (c *Client) GetBalance(ctx context.Context, address string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/balances/"+address, nil)
	if err != nil {
		return 0, fmt.Errorf("chain balance: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("chain balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("chain balance: gateway returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var out balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("chain balance: decode response: %w", err)
	}
	return out.Balance, nil
}

// GetVerifiedWallet resolves a user's verified wallet address.
// A 404 means the user has not linked a wallet; that is reported as
// an empty address, not an error.
func (c *Client) GetVerifiedWallet(ctx context.Context, userID uuid.UUID) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wallets/"+userID.String(), nil)
	if err != nil {
		return "", fmt.Errorf("chain wallet lookup: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chain wallet lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chain wallet lookup: gateway returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var out walletResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chain wallet lookup: decode response: %w", err)
	}
	return out.Address, nil
}

// readErrorBody returns a short snippet of an error response body.
func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(b) == 0 {
		return "<empty body>"
	}
	return strings.TrimSpace(string(b))
}
