package tgbot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/finank/carteira_bot/config"
	"github.com/finank/carteira_bot/internal/model"
	"github.com/finank/carteira_bot/internal/model/tgCallback"
	"github.com/finank/carteira_bot/internal/transport/telegram"
	customMW "github.com/finank/carteira_bot/internal/transport/telegram/middleware"
	"github.com/finank/carteira_bot/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, chatSession model.Session) error
}

type TGBot struct {
	bot     *tele.Bot
	ctrl    *telegram.Controller
	session Session
}

func New(cfg *config.Config, ctrl *telegram.Controller, session Session) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, ctrl: ctrl, session: session}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover(), customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/carteira", b.ctrl.Portfolio)
	b.bot.Handle("/lancar", b.ctrl.InitOrder)
	b.bot.Handle("/extrato", b.ctrl.History)
	b.bot.Handle("/titulos", b.ctrl.BondNames)
	b.bot.Handle("/relatorio", b.ctrl.Report)
	b.bot.Handle("/zerar", b.ctrl.InitReset)

	// free text is routed by the order entry state machine
	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		ctx := utils.CreateCtxWithRqID(c)
		rqID := utils.GetRequestIDFromCtx(ctx)

		chatSession, err := b.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
		if err != nil {
			slog.Warn("no session for text message", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send("Comece com um dos comandos, ex: /carteira ou /lancar")
		}

		c.Set("session", chatSession)

		switch chatSession.State {
		case model.ExpectingSymbol:
			return b.ctrl.ProcessSymbolInput(c)
		case model.ExpectingQuantity:
			return b.ctrl.ProcessQuantityInput(c)
		case model.ExpectingPrice:
			return b.ctrl.ProcessPriceInput(c)
		case model.ExpectingRate:
			return b.ctrl.ProcessRateInput(c)
		default:
			return c.Send("Comece com um dos comandos, ex: /carteira ou /lancar")
		}
	})

	b.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		unique, payload := parseCallbackData(c.Callback().Data)

		switch unique {
		case tgCallback.NewOrder:
			return b.ctrl.InitOrder(c)
		case tgCallback.RefreshPortfolio:
			return b.ctrl.RefreshPortfolio(c)
		case tgCallback.OrderClass:
			return b.ctrl.ProcessClassSelection(c, payload)
		case tgCallback.OrderAction:
			return b.ctrl.ProcessActionSelection(c, payload)
		case tgCallback.ConfirmReset:
			return b.ctrl.ConfirmReset(c)
		case tgCallback.CancelReset:
			return b.ctrl.CancelReset(c)
		default:
			slog.Warn("unexpected callback", slog.String("data", c.Callback().Data))
			return c.Respond()
		}
	})
}

// parseCallbackData splits telebot's "\f<unique>|<payload>" callback format.
func parseCallbackData(data string) (unique, payload string) {
	data = strings.TrimPrefix(data, "\f")
	unique, payload, _ = strings.Cut(data, "|")
	return unique, payload
}
