package tesouroModel

// RawBondsInfo mirrors the Tesouro Direto treasurybondsinfo payload. The
// interesting data sits a few levels down, the rest is ignored.
type RawBondsInfo struct {
	Response Response `json:"response"`
}

type Response struct {
	TrsrBdTradgList []TradeEntry `json:"TrsrBdTradgList"`
}

type TradeEntry struct {
	TrsrBd Bond `json:"TrsrBd"`
}

type Bond struct {
	Name            string  `json:"nm"`
	RedemptionValue float64 `json:"untrRedVal"`
	InvestmentValue float64 `json:"untrInvstmtVal"`
}
