package portfolioService

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/finank/carteira_bot/internal/model"
	"github.com/shopspring/decimal"
)

const daysPerYear = 365.25

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// PriceSnapshot is the market data fetched for one recompute cycle. Either
// map may be empty when its source was unavailable; resolution degrades to
// the next tier instead of failing.
type PriceSnapshot struct {
	Quotes     map[string]decimal.Decimal // latest close by normalized ticker
	BondPrices map[string]decimal.Decimal // Tesouro Direto official name -> unit price
}

type groupKey struct {
	class  model.AssetClass
	symbol string
}

// aggregatePositions collapses the ledger into net holdings per asset. The
// average price is a blended money-weighted cost basis: sells reduce the
// total cost at the blended average, never against specific lots. Groups with
// net quantity <= 0 (fully or over-sold) are dropped silently.
func aggregatePositions(txs []model.Transaction) []model.Position {
	type group struct {
		netQuantity decimal.Decimal
		totalCost   decimal.Decimal
		rateSum     decimal.Decimal
		rows        int64
		firstDate   time.Time
	}

	groups := map[groupKey]*group{}
	for _, tx := range txs {
		signedQty := tx.Quantity
		if tx.Action == model.ActionSell {
			signedQty = signedQty.Neg()
		}

		key := groupKey{class: tx.Class, symbol: tx.Symbol}
		g, ok := groups[key]
		if !ok {
			g = &group{firstDate: tx.Date}
			groups[key] = g
		}

		g.netQuantity = g.netQuantity.Add(signedQty)
		g.totalCost = g.totalCost.Add(signedQty.Mul(tx.Price))
		g.rateSum = g.rateSum.Add(tx.Rate)
		g.rows++
		if tx.Date.Before(g.firstDate) {
			g.firstDate = tx.Date
		}
	}

	positions := make([]model.Position, 0, len(groups))
	for key, g := range groups {
		if !g.netQuantity.IsPositive() {
			continue
		}
		positions = append(positions, model.Position{
			Class:        key.class,
			Symbol:       key.symbol,
			NetQuantity:  g.netQuantity,
			TotalCost:    g.totalCost,
			AverageRate:  g.rateSum.Div(decimal.NewFromInt(g.rows)),
			AveragePrice: g.totalCost.Div(g.netQuantity),
			FirstDate:    g.firstDate,
		})
	}

	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Class != positions[j].Class {
			return positions[i].Class < positions[j].Class
		}
		return positions[i].Symbol < positions[j].Symbol
	})

	return positions
}

// normalizeTicker maps a user-entered symbol to the quote provider's naming.
// A digit in the symbol marks a B3 listing (.SA suffix); plain letters pass
// through as a foreign listing. Crypto symbols get the -USD pair suffix.
// Classes priced outside the quote provider return "".
func normalizeTicker(class model.AssetClass, symbol string) string {
	switch class {
	case model.ClassAcao, model.ClassFII, model.ClassETF, model.ClassBDR:
		if strings.Contains(symbol, ".") {
			return symbol
		}
		if strings.ContainsAny(symbol, "0123456789") {
			return symbol + ".SA"
		}
		return symbol
	case model.ClassCripto:
		if strings.Contains(symbol, "-") {
			return symbol
		}
		return symbol + "-USD"
	}
	return ""
}

// lookupBondPrice finds a Tesouro Direto price by exact official name, then
// by substring: official names rarely match user shorthand ("SELIC 2029" vs
// "TESOURO SELIC 2029"). Among several containing names the longest wins,
// ties broken lexicographically, so the match is deterministic.
func lookupBondPrice(bondPrices map[string]decimal.Decimal, symbol string) (decimal.Decimal, bool) {
	if price, ok := bondPrices[symbol]; ok {
		return price, true
	}

	bestName := ""
	var bestPrice decimal.Decimal
	for name, price := range bondPrices {
		if !strings.Contains(name, symbol) {
			continue
		}
		if len(name) > len(bestName) || (len(name) == len(bestName) && name < bestName) {
			bestName = name
			bestPrice = price
		}
	}

	if bestName == "" {
		return decimal.Decimal{}, false
	}
	return bestPrice, true
}

// resolvePrice runs the four-tier chain for one position: bond table, quote
// provider, contracted-rate projection, flat average price. First match wins,
// no blending.
func resolvePrice(pos model.Position, snap PriceSnapshot, now time.Time) (decimal.Decimal, model.PriceSource) {
	if pos.Class == model.ClassTesouroDireto {
		if price, ok := lookupBondPrice(snap.BondPrices, pos.Symbol); ok {
			return price, model.SourceBond
		}
	}

	if ticker := normalizeTicker(pos.Class, pos.Symbol); ticker != "" {
		if price, ok := snap.Quotes[ticker]; ok {
			return price, model.SourceQuote
		}
	}

	if pos.AverageRate.IsPositive() {
		elapsedYears := now.Sub(pos.FirstDate).Hours() / 24 / daysPerYear
		if elapsedYears > 0 {
			factor := math.Pow(1+pos.AverageRate.InexactFloat64()/100, elapsedYears)
			return pos.AveragePrice.Mul(decimal.NewFromFloat(factor)), model.SourceRate
		}
	}

	return pos.AveragePrice, model.SourceFlat
}

// statusFor maps a percent variation to its monitor label. The cutpoints are
// fixed; the -0.01 floor keeps rounding noise around zero labeled as flat.
func statusFor(percentChange float64) string {
	switch {
	case percentChange > 20:
		return model.StatusStrongGain
	case percentChange > 5:
		return model.StatusPositive
	case percentChange >= -0.01:
		return model.StatusFlat
	case percentChange > -15:
		return model.StatusMildLoss
	default:
		return model.StatusDeepLoss
	}
}

// buildValuation is the pure recompute step: (ledger snapshot, price
// snapshot, clock) in, full dashboard out. It holds no state and can be
// called idempotently.
func buildValuation(txs []model.Transaction, snap PriceSnapshot, now time.Time) model.PortfolioValuation {
	positions := aggregatePositions(txs)

	valuation := model.PortfolioValuation{
		Positions:   make([]model.PricedPosition, 0, len(positions)),
		ClassTotals: make(map[model.AssetClass]decimal.Decimal),
	}

	for _, pos := range positions {
		price, source := resolvePrice(pos, snap, now)

		priced := model.PricedPosition{
			Position:     pos,
			CurrentPrice: price,
			CurrentValue: pos.NetQuantity.Mul(price),
			Source:       source,
		}
		priced.Profit = priced.CurrentValue.Sub(pos.TotalCost)

		if pos.AveragePrice.IsPositive() {
			priced.PercentChange = price.Div(pos.AveragePrice).Sub(one).Mul(hundred)
			priced.PercentChangeOK = true
			priced.Status = statusFor(priced.PercentChange.InexactFloat64())
		} else {
			priced.Status = model.StatusNoReference
		}

		valuation.TotalInvested = valuation.TotalInvested.Add(pos.TotalCost)
		valuation.CurrentBalance = valuation.CurrentBalance.Add(priced.CurrentValue)
		valuation.TotalProfit = valuation.TotalProfit.Add(priced.Profit)
		valuation.ClassTotals[pos.Class] = valuation.ClassTotals[pos.Class].Add(priced.CurrentValue)
		valuation.Positions = append(valuation.Positions, priced)
	}

	valuation.AssetsCount = len(valuation.Positions)

	// monitor order: best performer first, flagged positions at the bottom
	sort.SliceStable(valuation.Positions, func(i, j int) bool {
		a, b := valuation.Positions[i], valuation.Positions[j]
		if a.PercentChangeOK != b.PercentChangeOK {
			return a.PercentChangeOK
		}
		return a.PercentChange.GreaterThan(b.PercentChange)
	})

	return valuation
}
