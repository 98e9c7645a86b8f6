package csvledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/finank/carteira_bot/config"
	"github.com/finank/carteira_bot/internal/model"
	"github.com/shopspring/decimal"
)

func newTestLedger(t *testing.T) *CSVLedger {
	t.Helper()
	cfg := &config.Config{
		Ledger: config.Ledger{FilePath: filepath.Join(t.TempDir(), "carteira.csv")},
	}
	return New(cfg)
}

func TestGetTransactions_CreatesFileWithHeader(t *testing.T) {
	ledger := newTestLedger(t)

	txs, err := ledger.GetTransactions(context.Background())
	if err != nil {
		t.Fatalf("GetTransactions: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("expected empty ledger, got %d rows", len(txs))
	}

	raw, err := os.ReadFile(ledger.path)
	if err != nil {
		t.Fatalf("ledger file not created: %v", err)
	}
	if !strings.HasPrefix(string(raw), "Data,Ativo,Tipo,Operacao,Quantidade,Preco,Taxa") {
		t.Errorf("unexpected header: %q", string(raw))
	}
}

func TestAppendAndReadRoundtrip(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	want := model.Transaction{
		Date:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Symbol:   "TESOURO SELIC 2029",
		Class:    model.ClassTesouroDireto,
		Action:   model.ActionBuy,
		Quantity: decimal.RequireFromString("0.37"),
		Price:    decimal.RequireFromString("14532.11"),
		Rate:     decimal.RequireFromString("11.25"),
	}

	if err := ledger.AppendTransaction(ctx, want); err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	txs, err := ledger.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("GetTransactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(txs))
	}

	got := txs[0]
	if !got.Date.Equal(want.Date) {
		t.Errorf("Date: expected %s, got %s", want.Date, got.Date)
	}
	if got.Symbol != want.Symbol || got.Class != want.Class || got.Action != want.Action {
		t.Errorf("identity fields differ: %+v", got)
	}
	if !got.Quantity.Equal(want.Quantity) || !got.Price.Equal(want.Price) || !got.Rate.Equal(want.Rate) {
		t.Errorf("numeric fields differ: %+v", got)
	}
}

func TestAppendKeepsExistingRows(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	for i, symbol := range []string{"PETR4", "WEGE3", "ITSA4"} {
		tx := model.Transaction{
			Date:     time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC),
			Symbol:   symbol,
			Class:    model.ClassAcao,
			Action:   model.ActionBuy,
			Quantity: decimal.NewFromInt(10),
			Price:    decimal.NewFromInt(30),
		}
		if err := ledger.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("AppendTransaction(%s): %v", symbol, err)
		}
	}

	txs, err := ledger.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("GetTransactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(txs))
	}
	if txs[0].Symbol != "PETR4" || txs[2].Symbol != "ITSA4" {
		t.Errorf("rows out of ledger order: %+v", txs)
	}
}

func TestGetTransactions_LegacySixColumnRow(t *testing.T) {
	ledger := newTestLedger(t)

	content := "Data,Ativo,Tipo,Operacao,Quantidade,Preco\n" +
		"2023-05-02,MXRF11,FII,Compra,100,10.05\n"
	if err := os.WriteFile(ledger.path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	txs, err := ledger.GetTransactions(context.Background())
	if err != nil {
		t.Fatalf("GetTransactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(txs))
	}
	if !txs[0].Rate.IsZero() {
		t.Errorf("missing Taxa column must default to zero, got %s", txs[0].Rate)
	}
	if !txs[0].Quantity.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Quantity: expected 100, got %s", txs[0].Quantity)
	}
}

func TestGetTransactions_SkipsMalformedRows(t *testing.T) {
	ledger := newTestLedger(t)

	content := "Data,Ativo,Tipo,Operacao,Quantidade,Preco,Taxa\n" +
		"2023-05-02,PETR4,Ação,Compra,10,30.55,0\n" +
		"garbage,row\n" +
		"2023-06-02,PETR4,Ação,Venda,5,32.10,0\n"
	if err := os.WriteFile(ledger.path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	txs, err := ledger.GetTransactions(context.Background())
	if err != nil {
		t.Fatalf("GetTransactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected the 2 well-formed rows, got %d", len(txs))
	}
}

func TestReset(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	tx := model.Transaction{
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Symbol:   "BTC",
		Class:    model.ClassCripto,
		Action:   model.ActionBuy,
		Quantity: decimal.RequireFromString("0.1"),
		Price:    decimal.NewFromInt(300000),
	}
	if err := ledger.AppendTransaction(ctx, tx); err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	if err := ledger.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := os.Stat(ledger.path); !os.IsNotExist(err) {
		t.Error("expected ledger file to be removed")
	}

	txs, err := ledger.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("GetTransactions after reset: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("expected empty ledger after reset, got %d rows", len(txs))
	}
}

func TestReset_MissingFileIsNoop(t *testing.T) {
	ledger := newTestLedger(t)

	if err := ledger.Reset(context.Background()); err != nil {
		t.Fatalf("Reset on missing file: %v", err)
	}
}
