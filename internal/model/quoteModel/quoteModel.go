package quoteModel

import "github.com/shopspring/decimal"

// RawQuoteResponse mirrors the Yahoo Finance v7 batch quote payload, reduced
// to the fields we read.
type RawQuoteResponse struct {
	QuoteResponse QuoteResponse `json:"quoteResponse"`
}

type QuoteResponse struct {
	Result []RawQuote `json:"result"`
	Error  any        `json:"error"`
}

type RawQuote struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	Currency           string  `json:"currency"`
	MarketState        string  `json:"marketState"`
}

// Quote is the parsed latest close for one normalized ticker.
type Quote struct {
	Symbol   string
	Price    decimal.Decimal
	Currency string
}
