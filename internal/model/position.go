package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a derived net holding. It is recomputed from the full ledger on
// every read and never mutated incrementally, so late or out-of-order entries
// can't desync it.
type Position struct {
	Class        AssetClass
	Symbol       string
	NetQuantity  decimal.Decimal
	TotalCost    decimal.Decimal // signed sum of quantity*price, sells negative
	AverageRate  decimal.Decimal // mean of the contracted rate over all ledger rows
	AveragePrice decimal.Decimal // TotalCost / NetQuantity (blended, not per-lot)
	FirstDate    time.Time
}

// PriceSource tells which tier of the resolution chain produced the price.
type PriceSource string

const (
	SourceBond  PriceSource = "tesouro"
	SourceQuote PriceSource = "cotação"
	SourceRate  PriceSource = "taxa contratada"
	SourceFlat  PriceSource = "preço médio"
)

// Status labels shown in the profitability monitor. The cutpoints are fixed
// UI categories and must not change between releases.
const (
	StatusStrongGain  = "🚀 Lucro Forte"
	StatusPositive    = "🟢 No Azul"
	StatusFlat        = "⚪ Estável"
	StatusMildLoss    = "🟡 Queda Leve"
	StatusDeepLoss    = "🔴 Desconto"
	StatusNoReference = "⚠️ Sem Referência"
)

type PricedPosition struct {
	Position
	CurrentPrice decimal.Decimal
	CurrentValue decimal.Decimal // NetQuantity * CurrentPrice
	Profit       decimal.Decimal // CurrentValue - TotalCost
	// PercentChange is only meaningful when PercentChangeOK is true; a
	// position with a non-positive average price is a data-entry error and
	// is flagged instead of divided.
	PercentChange   decimal.Decimal
	PercentChangeOK bool
	Source          PriceSource
	Status          string
}

// PortfolioValuation is the full dashboard snapshot: one priced position per
// open holding plus portfolio-level aggregates.
type PortfolioValuation struct {
	Positions      []PricedPosition
	TotalInvested  decimal.Decimal
	CurrentBalance decimal.Decimal
	TotalProfit    decimal.Decimal
	AssetsCount    int
	ClassTotals    map[AssetClass]decimal.Decimal // allocation by class, current value
}
