package treasuryApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finank/carteira_bot/config"
	"github.com/shopspring/decimal"
)

func newTestApi(t *testing.T, handler http.HandlerFunc) *TreasuryApi {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{API: config.API{
		Timeout:     5 * time.Second,
		TreasuryApi: config.TreasuryApi{Url: srv.URL},
	}}
	return New(cfg)
}

func TestGetBondPrices(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/br/com/b3/tesourodireto/service/api/treasurybondsinfo.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"TrsrBdTradgList":[
			{"TrsrBd":{"nm":"Tesouro Selic 2029","untrRedVal":15012.34,"untrInvstmtVal":15020.0}},
			{"TrsrBd":{"nm":"Tesouro IPCA+ 2045","untrRedVal":0,"untrInvstmtVal":1234.56}},
			{"TrsrBd":{"nm":"","untrRedVal":100,"untrInvstmtVal":100}},
			{"TrsrBd":{"nm":"Tesouro Prefixado 2027","untrRedVal":0,"untrInvstmtVal":0}}
		]}}`))
	})

	prices, err := api.GetBondPrices(context.Background())
	if err != nil {
		t.Fatalf("GetBondPrices: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 usable bonds, got %d", len(prices))
	}

	// names are uppercased, redemption value preferred
	if !prices["TESOURO SELIC 2029"].Equal(decimal.RequireFromString("15012.34")) {
		t.Errorf("SELIC 2029: got %s", prices["TESOURO SELIC 2029"])
	}

	// investment value is the fallback when not redeemable
	if !prices["TESOURO IPCA+ 2045"].Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("IPCA+ 2045: got %s", prices["TESOURO IPCA+ 2045"])
	}
}

func TestGetBondPrices_BadPayload(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	})

	if _, err := api.GetBondPrices(context.Background()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
