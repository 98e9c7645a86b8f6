package treasuryApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/finank/carteira_bot/config"
	"github.com/finank/carteira_bot/internal/model/tesouroModel"
	"github.com/finank/carteira_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// TreasuryApi fetches the official Tesouro Direto price table: bond name
// (uppercased) to unit price. The redemption value is preferred; the
// investment value is the fallback for bonds not currently redeemable.
type TreasuryApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *TreasuryApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.TreasuryApi.Url)
	return &TreasuryApi{client: client}
}

func (a *TreasuryApi) GetBondPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/json/br/com/b3/tesourodireto/service/api/treasurybondsinfo.json"

	slog.Debug("start TreasuryApi.GetBondPrices request", slog.String("rqID", rqID))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		slog.Error("error while dialing TreasuryApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	rawBondsInfo := tesouroModel.RawBondsInfo{}
	err = json.Unmarshal(resp.Body(), &rawBondsInfo)
	if err != nil {
		slog.Error("can't unmarshal response into tesouroModel.RawBondsInfo", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	prices := make(map[string]decimal.Decimal, len(rawBondsInfo.Response.TrsrBdTradgList))
	for _, entry := range rawBondsInfo.Response.TrsrBdTradgList {
		bond := entry.TrsrBd
		price := bond.RedemptionValue
		if price <= 0 {
			price = bond.InvestmentValue
		}
		if bond.Name == "" || price <= 0 {
			continue
		}
		prices[strings.ToUpper(bond.Name)] = decimal.NewFromFloat(price)
	}

	slog.Debug("TreasuryApi.GetBondPrices request complete", slog.String("rqID", rqID), slog.Int("bonds", len(prices)))

	return prices, nil
}
