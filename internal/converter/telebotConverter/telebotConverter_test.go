package telebotConverter

import (
	"strings"
	"testing"
	"time"

	"github.com/finank/carteira_bot/internal/model"
	"github.com/shopspring/decimal"
)

func TestPortfolioResponse(t *testing.T) {
	valuation := model.PortfolioValuation{
		Positions: []model.PricedPosition{{
			Position: model.Position{
				Class:        model.ClassAcao,
				Symbol:       "PETR4",
				NetQuantity:  decimal.NewFromInt(100),
				AveragePrice: decimal.NewFromInt(30),
			},
			CurrentPrice:    decimal.NewFromInt(36),
			CurrentValue:    decimal.NewFromInt(3600),
			Profit:          decimal.NewFromInt(600),
			PercentChange:   decimal.NewFromInt(20),
			PercentChangeOK: true,
			Source:          model.SourceQuote,
			Status:          model.StatusPositive,
		}},
		TotalInvested:  decimal.NewFromInt(3000),
		CurrentBalance: decimal.NewFromInt(3600),
		TotalProfit:    decimal.NewFromInt(600),
		AssetsCount:    1,
		ClassTotals:    map[model.AssetClass]decimal.Decimal{model.ClassAcao: decimal.NewFromInt(3600)},
	}

	text, markup := PortfolioResponse(valuation)

	for _, want := range []string{
		"R$ 3000.00",
		"R$ 3600.00",
		"PETR4",
		model.StatusPositive,
		"20.00%",
		string(model.SourceQuote),
	} {
		if !strings.Contains(text, want) {
			t.Errorf("dashboard text missing %q:\n%s", want, text)
		}
	}

	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 2 {
		t.Errorf("expected one row with two buttons, got %v", markup.InlineKeyboard)
	}
}

func TestPortfolioResponse_FlaggedPosition(t *testing.T) {
	valuation := model.PortfolioValuation{
		Positions: []model.PricedPosition{{
			Position: model.Position{Class: model.ClassAcao, Symbol: "XPTO3"},
			Status:   model.StatusNoReference,
		}},
		AssetsCount: 1,
		ClassTotals: map[model.AssetClass]decimal.Decimal{},
	}

	text, _ := PortfolioResponse(valuation)
	if !strings.Contains(text, "indisponível") {
		t.Errorf("expected the variation to be marked unavailable:\n%s", text)
	}
}

func TestHistoryResponse(t *testing.T) {
	if text := HistoryResponse(nil); !strings.Contains(text, "/lancar") {
		t.Errorf("empty history must point at the order command, got %q", text)
	}

	txs := []model.Transaction{{
		Date:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Symbol:   "PETR4",
		Class:    model.ClassAcao,
		Action:   model.ActionSell,
		Quantity: decimal.NewFromInt(50),
		Price:    decimal.RequireFromString("32.10"),
	}}

	text := HistoryResponse(txs)
	for _, want := range []string{"2024-03-15", "Venda", "PETR4", "R$ 32.10"} {
		if !strings.Contains(text, want) {
			t.Errorf("history text missing %q:\n%s", want, text)
		}
	}
}

func TestAssetClassKeyboard(t *testing.T) {
	markup := AssetClassKeyboard()

	buttons := 0
	for _, row := range markup.InlineKeyboard {
		if len(row) > 2 {
			t.Errorf("expected at most 2 buttons per row, got %d", len(row))
		}
		buttons += len(row)
	}
	if buttons != len(model.AssetClasses) {
		t.Errorf("expected %d class buttons, got %d", len(model.AssetClasses), buttons)
	}
}

func TestQuantityPrompt(t *testing.T) {
	if text := QuantityPrompt(model.ClassAcao); !strings.Contains(text, "inteiro") {
		t.Errorf("stock quantities are whole numbers, got %q", text)
	}
	if text := QuantityPrompt(model.ClassCripto); !strings.Contains(text, "frações") {
		t.Errorf("crypto quantities are fractional, got %q", text)
	}
}
