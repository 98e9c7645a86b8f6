package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetClass string

const (
	ClassAcao          AssetClass = "Ação"
	ClassFII           AssetClass = "FII"
	ClassCripto        AssetClass = "Cripto"
	ClassTesouroDireto AssetClass = "Tesouro Direto"
	ClassRendaFixa     AssetClass = "Renda Fixa"
	ClassETF           AssetClass = "ETF"
	ClassBDR           AssetClass = "BDR"
)

// AssetClasses lists every supported class in presentation order.
var AssetClasses = []AssetClass{
	ClassAcao,
	ClassFII,
	ClassCripto,
	ClassTesouroDireto,
	ClassRendaFixa,
	ClassETF,
	ClassBDR,
}

func (c AssetClass) Valid() bool {
	for _, class := range AssetClasses {
		if c == class {
			return true
		}
	}
	return false
}

// UsesQuoteProvider reports whether the class is priced through the batch
// quote provider (as opposed to the bond feed or the contracted rate).
func (c AssetClass) UsesQuoteProvider() bool {
	switch c {
	case ClassAcao, ClassFII, ClassETF, ClassBDR, ClassCripto:
		return true
	}
	return false
}

// InputSchema describes how the order-entry form behaves for one asset class.
type InputSchema struct {
	SymbolLabel       string
	SymbolPlaceholder string
	FractionalQty     bool // crypto and bonds trade in fractions
	HasRate           bool // contracted annual rate applies
}

func (c AssetClass) InputSchema() InputSchema {
	switch c {
	case ClassFII:
		return InputSchema{SymbolLabel: "Código", SymbolPlaceholder: "Ex: MXRF11"}
	case ClassETF:
		return InputSchema{SymbolLabel: "Código", SymbolPlaceholder: "Ex: BOVA11"}
	case ClassBDR:
		return InputSchema{SymbolLabel: "Código", SymbolPlaceholder: "Ex: AAPL34"}
	case ClassCripto:
		return InputSchema{SymbolLabel: "Símbolo", SymbolPlaceholder: "Ex: BTC", FractionalQty: true}
	case ClassTesouroDireto:
		return InputSchema{SymbolLabel: "Nome do título", SymbolPlaceholder: "Ex: Tesouro IPCA+ 2045", FractionalQty: true, HasRate: true}
	case ClassRendaFixa:
		return InputSchema{SymbolLabel: "Nome do produto", SymbolPlaceholder: "Ex: CDB Banco Inter", FractionalQty: true, HasRate: true}
	default:
		return InputSchema{SymbolLabel: "Código", SymbolPlaceholder: "Ex: WEGE3"}
	}
}

type Action string

const (
	ActionBuy  Action = "Compra"
	ActionSell Action = "Venda"
)

func (a Action) Valid() bool {
	return a == ActionBuy || a == ActionSell
}

// Transaction is one immutable ledger row. Rows are only ever appended; the
// single destructive operation is a full ledger reset.
type Transaction struct {
	Date     time.Time
	Symbol   string
	Class    AssetClass
	Action   Action
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Rate     decimal.Decimal // contracted annual rate in % p.a., 0 for market-priced assets
}
