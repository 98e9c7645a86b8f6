package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/finank/carteira_bot/data/session"
	"github.com/finank/carteira_bot/internal/converter/telebotConverter"
	"github.com/finank/carteira_bot/internal/model"
	"github.com/finank/carteira_bot/internal/service"
	"github.com/finank/carteira_bot/utils"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const internalErrMsg = "😵 Algo deu errado... tente novamente."

const startMsg = `👋 Bem-vindo ao FINANK!

Comandos:
/carteira - posição atual com preços de mercado
/lancar - registrar compra ou venda
/extrato - histórico de lançamentos
/titulos - nomes oficiais do Tesouro Direto
/relatorio - exportar planilha .xlsx
/zerar - apagar todo o histórico`

type PortfolioService interface {
	AddTransaction(ctx context.Context, tx model.Transaction) error
	GetPortfolio(ctx context.Context) (model.PortfolioValuation, error)
	GetHistory(ctx context.Context) ([]model.Transaction, error)
	ResetLedger(ctx context.Context) error
	GetBondNames(ctx context.Context) ([]string, error)
	GenerateReport(ctx context.Context) (fileBytes []byte, fileExtension string, err error)
}

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, chatSession model.Session) error
}

type Controller struct {
	portfolioService PortfolioService
	session          Session
}

func NewController(portfolioService PortfolioService, session Session) *Controller {
	return &Controller{
		portfolioService: portfolioService,
		session:          session,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Send(startMsg)
}

func (ctrl *Controller) Portfolio(c tele.Context) error {
	return ctrl.sendPortfolio(c, c.Send)
}

// RefreshPortfolio re-renders the dashboard in place of the message whose
// button was pressed.
func (ctrl *Controller) RefreshPortfolio(c tele.Context) error {
	return ctrl.sendPortfolio(c, c.Edit)
}

func (ctrl *Controller) sendPortfolio(c tele.Context, reply func(what any, opts ...any) error) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	valuation, err := ctrl.portfolioService.GetPortfolio(ctx)
	if err != nil {
		slog.Error("got error from portfolioService.GetPortfolio", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	if valuation.AssetsCount == 0 {
		return reply("👋 Saldo zerado. Lance sua primeira operação com /lancar!")
	}

	text, markup := telebotConverter.PortfolioResponse(valuation)
	return reply(text, markup)
}

func (ctrl *Controller) getSessionFromTeleCtxOrStorage(ctx context.Context, c tele.Context) (model.Session, error) {
	chatSession, ok := c.Get("session").(model.Session)
	if ok {
		return chatSession, nil
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	chatSession, err := ctrl.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return model.Session{}, nil
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}
	return chatSession, nil
}

func (ctrl *Controller) saveSession(ctx context.Context, c tele.Context, chatSession model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	err := ctrl.session.SetSession(ctx, strconv.FormatInt(c.Chat().ID, 10), chatSession)
	if err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
	return err
}

// InitOrder starts the order entry flow: pick an asset class first, the rest
// of the prompts depend on it.
func (ctrl *Controller) InitOrder(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession.State = model.DefaultState
	chatSession.Draft = nil
	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send("📝 Categoria do ativo:", telebotConverter.AssetClassKeyboard())
}

func (ctrl *Controller) ProcessClassSelection(c tele.Context, payload string) error {
	ctx := utils.CreateCtxWithRqID(c)

	class := model.AssetClass(payload)
	if !class.Valid() {
		return c.Send(internalErrMsg)
	}

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	chatSession.Draft = &model.OrderDraft{Class: class}
	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Edit(fmt.Sprintf("%s, qual a operação?", class), telebotConverter.ActionKeyboard())
}

func (ctrl *Controller) ProcessActionSelection(c tele.Context, payload string) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil || chatSession.Draft == nil {
		return c.Send("Use /lancar para iniciar um lançamento.")
	}

	orderAction := model.Action(payload)
	if !orderAction.Valid() {
		return c.Send(internalErrMsg)
	}

	chatSession.Draft.Action = orderAction
	chatSession.State = model.ExpectingSymbol
	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Edit(telebotConverter.SymbolPrompt(chatSession.Draft.Class))
}

func (ctrl *Controller) ProcessSymbolInput(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil || chatSession.Draft == nil {
		return c.Send("Use /lancar para iniciar um lançamento.")
	}

	symbol := strings.ToUpper(strings.TrimSpace(c.Message().Text))
	if symbol == "" {
		return c.Send("Preencha o ativo!")
	}

	chatSession.Draft.Symbol = symbol
	chatSession.State = model.ExpectingQuantity
	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.QuantityPrompt(chatSession.Draft.Class))
}

func (ctrl *Controller) ProcessQuantityInput(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil || chatSession.Draft == nil {
		return c.Send("Use /lancar para iniciar um lançamento.")
	}

	raw := strings.TrimSpace(c.Message().Text)
	qty, err := decimal.NewFromString(raw)
	if err != nil || !qty.IsPositive() {
		return c.Send("Quantidade inválida, tente de novo:")
	}
	if !chatSession.Draft.Class.InputSchema().FractionalQty && !qty.IsInteger() {
		return c.Send("Essa categoria usa quantidade inteira, tente de novo:")
	}

	chatSession.Draft.Quantity = raw
	chatSession.State = model.ExpectingPrice
	if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.PricePrompt(chatSession.Draft.Class))
}

func (ctrl *Controller) ProcessPriceInput(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil || chatSession.Draft == nil {
		return c.Send("Use /lancar para iniciar um lançamento.")
	}

	raw := strings.TrimSpace(c.Message().Text)
	price, err := decimal.NewFromString(raw)
	if err != nil || !price.IsPositive() {
		return c.Send("Preço inválido, tente de novo:")
	}

	chatSession.Draft.Price = raw

	if chatSession.Draft.Class.InputSchema().HasRate {
		chatSession.State = model.ExpectingRate
		if err := ctrl.saveSession(ctx, c, chatSession); err != nil {
			return c.Send(internalErrMsg)
		}
		return c.Send(telebotConverter.RatePrompt())
	}

	chatSession.Draft.Rate = "0"
	return ctrl.finalizeOrder(ctx, c, chatSession)
}

func (ctrl *Controller) ProcessRateInput(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil || chatSession.Draft == nil {
		return c.Send("Use /lancar para iniciar um lançamento.")
	}

	raw := strings.TrimSpace(c.Message().Text)
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		return c.Send("Taxa inválida, tente de novo:")
	}

	chatSession.Draft.Rate = raw
	return ctrl.finalizeOrder(ctx, c, chatSession)
}

func (ctrl *Controller) finalizeOrder(ctx context.Context, c tele.Context, chatSession model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	draft := chatSession.Draft

	qty, _ := decimal.NewFromString(draft.Quantity)
	price, _ := decimal.NewFromString(draft.Price)
	rate, _ := decimal.NewFromString(draft.Rate)

	tx := model.Transaction{
		Date:     time.Now(),
		Symbol:   draft.Symbol,
		Class:    draft.Class,
		Action:   draft.Action,
		Quantity: qty,
		Price:    price,
		Rate:     rate,
	}

	chatSession.State = model.DefaultState
	chatSession.Draft = nil
	_ = ctrl.saveSession(ctx, c, chatSession)

	err := ctrl.portfolioService.AddTransaction(ctx, tx)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTransaction) {
			return c.Send("Lançamento inválido. Use /lancar para recomeçar.")
		}
		slog.Error("got error from portfolioService.AddTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.OrderSavedResponse(tx))
}

func (ctrl *Controller) History(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	txs, err := ctrl.portfolioService.GetHistory(ctx)
	if err != nil {
		slog.Error("got error from portfolioService.GetHistory", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.HistoryResponse(txs))
}

func (ctrl *Controller) BondNames(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	names, err := ctrl.portfolioService.GetBondNames(ctx)
	if err != nil {
		slog.Warn("bond names unavailable", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(telebotConverter.BondNamesResponse(nil))
	}

	return c.Send(telebotConverter.BondNamesResponse(names))
}

func (ctrl *Controller) Report(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	fileBytes, fileExtension, err := ctrl.portfolioService.GenerateReport(ctx)
	if err != nil {
		if errors.Is(err, service.ErrEmptyPortfolio) {
			return c.Send("Saldo zerado, nada para exportar.")
		}
		slog.Error("got error from portfolioService.GenerateReport", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(fileBytes)),
		FileName: "carteira" + fileExtension,
	}
	return c.Send(doc)
}

func (ctrl *Controller) InitReset(c tele.Context) error {
	return c.Send("⚠️ Isso apaga TODO o histórico de lançamentos. Confirma?", telebotConverter.ResetConfirmKeyboard())
}

func (ctrl *Controller) ConfirmReset(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := ctrl.portfolioService.ResetLedger(ctx)
	if err != nil {
		slog.Error("got error from portfolioService.ResetLedger", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Edit("🗑️ Histórico apagado.")
}

func (ctrl *Controller) CancelReset(c tele.Context) error {
	return c.Edit("Cancelado.")
}
