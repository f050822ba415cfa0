package bitcoin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EsploraClient polls a public esplora-compatible HTTP API (mempool.space
// and blockstream.info both implement it) for an address's funding status.
type EsploraClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewEsploraClient builds a client against baseURL (e.g.
// "https://mempool.space/api").
func NewEsploraClient(baseURL string) *EsploraClient {
	return &EsploraClient{BaseURL: baseURL, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

type esploraAddressResponse struct {
	ChainStats struct {
		FundedTxoSum uint64 `json:"funded_txo_sum"`
		SpentTxoSum  uint64 `json:"spent_txo_sum"`
	} `json:"chain_stats"`
	MempoolStats struct {
		FundedTxoSum uint64 `json:"funded_txo_sum"`
		SpentTxoSum  uint64 `json:"spent_txo_sum"`
	} `json:"mempool_stats"`
}

func (c *EsploraClient) CheckAddress(ctx context.Context, address string) (AddressStatus, error) {
	url := fmt.Sprintf("%s/address/%s", c.BaseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return AddressStatus{}, fmt.Errorf("bitcoin: build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return AddressStatus{}, fmt.Errorf("bitcoin: query %s: %w", address, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return AddressStatus{}, fmt.Errorf("bitcoin: %s returned status %d", address, resp.StatusCode)
	}
	var body esploraAddressResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return AddressStatus{}, fmt.Errorf("bitcoin: decode response for %s: %w", address, err)
	}
	funded := body.ChainStats.FundedTxoSum + body.MempoolStats.FundedTxoSum
	spent := body.ChainStats.SpentTxoSum + body.MempoolStats.SpentTxoSum
	return AddressStatus{
		Address:       address,
		FundedSatoshi: funded,
		SpentSatoshi:  spent,
		Paid:          funded > 0,
	}, nil
}

func (c *EsploraClient) MempoolLink(address string) string {
	return fmt.Sprintf("https://mempool.space/address/%s", address)
}
