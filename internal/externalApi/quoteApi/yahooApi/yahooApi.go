package yahooApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/finank/carteira_bot/config"
	"github.com/finank/carteira_bot/internal/model/quoteModel"
	"github.com/finank/carteira_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// YahooApi fetches the latest close for a batch of tickers through the Yahoo
// Finance v7 quote endpoint. Partial results are expected: unknown symbols
// are simply absent from the response.
type YahooApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url).
		SetHeader("User-Agent", "carteira_bot/1.0")
	return &YahooApi{client: client}
}

// GetQuotes returns a price per resolved symbol, keyed exactly as requested.
func (a *YahooApi) GetQuotes(ctx context.Context, symbols []string) (map[string]quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/v7/finance/quote"

	if len(symbols) == 0 {
		return map[string]quoteModel.Quote{}, nil
	}

	slog.Debug("start YahooApi.GetQuotes request", slog.String("rqID", rqID), slog.Any("symbols", symbols))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("symbols", strings.Join(symbols, ",")).
		Get(url)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	rawResponse := quoteModel.RawQuoteResponse{}
	err = json.Unmarshal(resp.Body(), &rawResponse)
	if err != nil {
		slog.Error("can't unmarshal response into quoteModel.RawQuoteResponse", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	quotes := make(map[string]quoteModel.Quote, len(rawResponse.QuoteResponse.Result))
	for _, raw := range rawResponse.QuoteResponse.Result {
		if raw.Symbol == "" || raw.RegularMarketPrice <= 0 {
			continue
		}
		quotes[raw.Symbol] = quoteModel.Quote{
			Symbol:   raw.Symbol,
			Price:    decimal.NewFromFloat(raw.RegularMarketPrice),
			Currency: raw.Currency,
		}
	}

	slog.Debug("YahooApi.GetQuotes request complete", slog.String("rqID", rqID), slog.Int("resolved", len(quotes)))

	return quotes, nil
}
