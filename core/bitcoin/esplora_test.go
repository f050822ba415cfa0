package bitcoin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEsploraClientCheckAddressFunded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := esploraAddressResponse{}
		resp.ChainStats.FundedTxoSum = 1000
		resp.ChainStats.SpentTxoSum = 0
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewEsploraClient(srv.URL)
	status, err := c.CheckAddress(context.Background(), "bc1qexample")
	if err != nil {
		t.Fatalf("CheckAddress: %v", err)
	}
	if !status.Paid || status.FundedSatoshi != 1000 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestEsploraClientCheckAddressUnfunded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(esploraAddressResponse{})
	}))
	defer srv.Close()

	c := NewEsploraClient(srv.URL)
	status, err := c.CheckAddress(context.Background(), "bc1qexample")
	if err != nil {
		t.Fatalf("CheckAddress: %v", err)
	}
	if status.Paid {
		t.Fatalf("expected unfunded address to report unpaid")
	}
}
