package telebotConverter

import (
	"fmt"
	"strings"

	"github.com/finank/carteira_bot/internal/model"
	"github.com/finank/carteira_bot/internal/model/tgCallback"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) string {
	return fmt.Sprintf("R$ %.2f", d.InexactFloat64())
}

// PortfolioResponse renders the dashboard message: KPIs, allocation by class
// and the profitability monitor (best performer first).
func PortfolioResponse(valuation model.PortfolioValuation) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString("💰 Gestão de Patrimônio\n\n")
	sb.WriteString(fmt.Sprintf("💵 Valor investido: %s\n", money(valuation.TotalInvested)))
	sb.WriteString(fmt.Sprintf("📈 Saldo atual: %s\n", money(valuation.CurrentBalance)))
	sb.WriteString(fmt.Sprintf("💸 Lucro: %s\n", money(valuation.TotalProfit)))
	sb.WriteString(fmt.Sprintf("📦 Ativos: %d\n\n", valuation.AssetsCount))

	if len(valuation.ClassTotals) > 0 {
		sb.WriteString("🎨 Alocação:\n")
		for _, class := range model.AssetClasses {
			total, ok := valuation.ClassTotals[class]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf(" ▸ %s: %s\n", class, money(total)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("🚀 Monitor de Rentabilidade:\n\n")
	for _, pos := range valuation.Positions {
		sb.WriteString(fmt.Sprintf("%s  %s (%s)\n", pos.Status, pos.Symbol, pos.Class))
		sb.WriteString(fmt.Sprintf("   ▸ Qtd: %s | PM: %s\n", pos.NetQuantity.String(), money(pos.AveragePrice)))
		sb.WriteString(fmt.Sprintf("   ▸ Valor hoje: %s (%s)\n", money(pos.CurrentPrice), pos.Source))
		if pos.PercentChangeOK {
			sb.WriteString(fmt.Sprintf("   ▸ Var: %.2f%% | Lucro: %s\n\n", pos.PercentChange.InexactFloat64(), money(pos.Profit)))
		} else {
			sb.WriteString(fmt.Sprintf("   ▸ Var: indisponível | Saldo: %s\n\n", money(pos.CurrentValue)))
		}
	}

	newOrderBtn := markup.Data("➕ Lançar ordem", tgCallback.NewOrder)
	refreshBtn := markup.Data("🔄 Atualizar", tgCallback.RefreshPortfolio)
	markup.Inline(
		markup.Row(newOrderBtn, refreshBtn),
	)

	return sb.String(), markup
}

func HistoryResponse(txs []model.Transaction) string {
	if len(txs) == 0 {
		return "👋 Nenhum lançamento ainda. Use /lancar para registrar a primeira operação!"
	}

	var sb strings.Builder
	sb.WriteString("📋 Extrato de Lançamentos:\n\n")
	for _, tx := range txs {
		emoji := "🟢"
		if tx.Action == model.ActionSell {
			emoji = "🔴"
		}
		sb.WriteString(fmt.Sprintf(
			"%s %s | %s %s | %s x %s\n",
			emoji, tx.Date.Format(dateLayout), tx.Action, tx.Symbol, tx.Quantity.String(), money(tx.Price),
		))
	}
	return sb.String()
}

func BondNamesResponse(names []string) string {
	if len(names) == 0 {
		return "API do Tesouro indisponível. Tente um nome como: TESOURO SELIC 2029"
	}

	var sb strings.Builder
	sb.WriteString("🔍 Nomes oficiais do Tesouro Direto:\n\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf(" ▸ %s\n", name))
	}
	return sb.String()
}

// AssetClassKeyboard offers one button per supported class, two per row.
func AssetClassKeyboard() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	rows := make([]tele.Row, 0, (len(model.AssetClasses)+1)/2)
	btns := make([]tele.Btn, 0, 2)
	for _, class := range model.AssetClasses {
		btns = append(btns, markup.Data(string(class), tgCallback.OrderClass, string(class)))
		if len(btns) == 2 {
			rows = append(rows, markup.Row(btns...))
			btns = make([]tele.Btn, 0, 2)
		}
	}
	if len(btns) > 0 {
		rows = append(rows, markup.Row(btns...))
	}

	markup.Inline(rows...)
	return markup
}

func ActionKeyboard() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("🟢 Compra", tgCallback.OrderAction, string(model.ActionBuy)),
		markup.Data("🔴 Venda", tgCallback.OrderAction, string(model.ActionSell)),
	))
	return markup
}

func ResetConfirmKeyboard() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("🗑️ Apagar tudo", tgCallback.ConfirmReset),
		markup.Data("Cancelar", tgCallback.CancelReset),
	))
	return markup
}

func SymbolPrompt(class model.AssetClass) string {
	schema := class.InputSchema()
	return fmt.Sprintf("%s (%s):", schema.SymbolLabel, schema.SymbolPlaceholder)
}

func QuantityPrompt(class model.AssetClass) string {
	if class.InputSchema().FractionalQty {
		return "Quantidade (frações permitidas, ex: 0.5):"
	}
	return "Quantidade (número inteiro, ex: 100):"
}

func PricePrompt(class model.AssetClass) string {
	if class.InputSchema().HasRate {
		return "Aporte por unidade (PU), ex: 1000.00:"
	}
	return "Preço (R$), ex: 10.00:"
}

func RatePrompt() string {
	return "Rentabilidade contratada (% a.a.), ex: 12.5 (ou 0 se não houver):"
}

func OrderSavedResponse(tx model.Transaction) string {
	return fmt.Sprintf(
		"✅ Operação salva: %s %s %s x %s\n\nUse /carteira para ver a posição atualizada.",
		tx.Action, tx.Symbol, tx.Quantity.String(), money(tx.Price),
	)
}
