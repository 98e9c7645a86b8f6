package tgCallback

// Callback button uniques. Payloads (asset class, action) travel in the
// callback data part, separated by telebot's "|".
const (
	NewOrder         string = "new_order"
	RefreshPortfolio string = "refresh_portfolio"
	OrderClass       string = "order_class"
	OrderAction      string = "order_action"
	ConfirmReset     string = "confirm_reset"
	CancelReset      string = "cancel_reset"
)
