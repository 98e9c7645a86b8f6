package model

type state int

const (
	DefaultState state = iota
	ExpectingSymbol
	ExpectingQuantity
	ExpectingPrice
	ExpectingRate
)

// OrderDraft accumulates the multi-step order entry flow. Numeric fields stay
// as raw user input until the whole order is validated and appended.
type OrderDraft struct {
	Class    AssetClass
	Action   Action
	Symbol   string
	Quantity string
	Price    string
	Rate     string
}

type Session struct {
	State state
	Draft *OrderDraft
}
