package portfolioService

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/finank/carteira_bot/internal/model"
	"github.com/finank/carteira_bot/internal/model/quoteModel"
	"github.com/finank/carteira_bot/internal/service"
	"github.com/finank/carteira_bot/utils"
	"github.com/shopspring/decimal"
)

type Repository interface {
	GetTransactions(ctx context.Context) ([]model.Transaction, error)
	AppendTransaction(ctx context.Context, tx model.Transaction) error
	Reset(ctx context.Context) error
}

type Cache interface {
	GetQuotes(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
	SetQuotes(ctx context.Context, quotes map[string]decimal.Decimal) error
	GetBondPrices(ctx context.Context) (map[string]decimal.Decimal, error)
	SetBondPrices(ctx context.Context, prices map[string]decimal.Decimal) error
}

type QuoteApi interface {
	GetQuotes(ctx context.Context, symbols []string) (map[string]quoteModel.Quote, error)
}

type TreasuryApi interface {
	GetBondPrices(ctx context.Context) (map[string]decimal.Decimal, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, valuation model.PortfolioValuation, history []model.Transaction) (fileBytes []byte, fileExtension string, err error)
}

type PortfolioService struct {
	repo        Repository
	cache       Cache
	quoteApi    QuoteApi
	treasuryApi TreasuryApi
	reportGen   ReportGenerator
}

func New(repo Repository, cache Cache, quoteApi QuoteApi, treasuryApi TreasuryApi, reportGen ReportGenerator) *PortfolioService {
	return &PortfolioService{
		repo:        repo,
		cache:       cache,
		quoteApi:    quoteApi,
		treasuryApi: treasuryApi,
		reportGen:   reportGen,
	}
}

func (s *PortfolioService) AddTransaction(ctx context.Context, tx model.Transaction) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddTransaction"

	slog.Debug("AddTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", tx.Symbol))
	defer func() {
		slog.Debug("AddTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", tx.Symbol))
	}()

	if err := validateTransaction(tx); err != nil {
		slog.Warn("transaction rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err := s.repo.AppendTransaction(ctx, tx)
	if err != nil {
		slog.Error("got error from repo.AppendTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func validateTransaction(tx model.Transaction) error {
	if tx.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", service.ErrInvalidTransaction)
	}
	if !tx.Class.Valid() {
		return fmt.Errorf("%w: unknown asset class %q", service.ErrInvalidTransaction, tx.Class)
	}
	if !tx.Action.Valid() {
		return fmt.Errorf("%w: unknown action %q", service.ErrInvalidTransaction, tx.Action)
	}
	if !tx.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", service.ErrInvalidTransaction)
	}
	if !tx.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", service.ErrInvalidTransaction)
	}
	if tx.Rate.IsNegative() {
		return fmt.Errorf("%w: rate must not be negative", service.ErrInvalidTransaction)
	}
	return nil
}

// GetPortfolio runs one full recompute cycle: ledger snapshot, price
// snapshot, valuation. A failed price source degrades to an empty map and
// the resolution chain falls through; it never aborts the cycle.
func (s *PortfolioService) GetPortfolio(ctx context.Context) (model.PortfolioValuation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetPortfolio finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	txs, err := s.repo.GetTransactions(ctx)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioValuation{}, err
	}

	positions := aggregatePositions(txs)
	snap := s.fetchPriceSnapshot(ctx, positions)

	return buildValuation(txs, snap, time.Now()), nil
}

// fetchPriceSnapshot gathers market data for the open positions, each source
// isolated: cache first, API on miss, empty map when both fail.
func (s *PortfolioService) fetchPriceSnapshot(ctx context.Context, positions []model.Position) PriceSnapshot {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.fetchPriceSnapshot"

	snap := PriceSnapshot{
		Quotes:     map[string]decimal.Decimal{},
		BondPrices: map[string]decimal.Decimal{},
	}

	holdsBonds := false
	symbolSet := map[string]struct{}{}
	for _, pos := range positions {
		if pos.Class == model.ClassTesouroDireto {
			holdsBonds = true
		}
		if ticker := normalizeTicker(pos.Class, pos.Symbol); ticker != "" {
			symbolSet[ticker] = struct{}{}
		}
	}

	if holdsBonds {
		bonds, err := s.getBondPrices(ctx)
		if err != nil {
			slog.Warn("bond prices unavailable this cycle", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			snap.BondPrices = bonds
		}
	}

	if len(symbolSet) == 0 {
		return snap
	}

	symbols := make([]string, 0, len(symbolSet))
	for symbol := range symbolSet {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	quotes, err := s.cache.GetQuotes(ctx, symbols)
	if err == nil {
		snap.Quotes = quotes
		return snap
	}

	slog.Warn("can't get quotes from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	apiQuotes, err := s.quoteApi.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Warn("quotes unavailable this cycle", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return snap
	}

	for symbol, quote := range apiQuotes {
		snap.Quotes[symbol] = quote.Price
	}

	go s.cache.SetQuotes(context.WithoutCancel(ctx), snap.Quotes)

	return snap
}

func (s *PortfolioService) getBondPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getBondPrices"

	bonds, err := s.cache.GetBondPrices(ctx)
	if err == nil {
		return bonds, nil
	}

	slog.Warn("can't get bond prices from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	bonds, err = s.treasuryApi.GetBondPrices(ctx)
	if err != nil {
		return nil, err
	}

	go s.cache.SetBondPrices(context.WithoutCancel(ctx), bonds)

	return bonds, nil
}

// GetHistory returns the full ledger, newest entries first.
func (s *PortfolioService) GetHistory(ctx context.Context) ([]model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetHistory"

	slog.Debug("GetHistory start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetHistory finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	txs, err := s.repo.GetTransactions(ctx)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})

	return txs, nil
}

func (s *PortfolioService) ResetLedger(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ResetLedger"

	slog.Debug("ResetLedger start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ResetLedger finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	err := s.repo.Reset(ctx)
	if err != nil {
		slog.Error("got error from repo.Reset", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// GetBondNames lists the official Tesouro Direto names, so the user can enter
// a shorthand that actually matches.
func (s *PortfolioService) GetBondNames(ctx context.Context) ([]string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetBondNames"

	slog.Debug("GetBondNames start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetBondNames finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	bonds, err := s.getBondPrices(ctx)
	if err != nil {
		slog.Error("got error from getBondPrices", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	names := make([]string, 0, len(bonds))
	for name := range bonds {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// RefreshBondPrices is the hourly scheduler job keeping the bond table warm.
func (s *PortfolioService) RefreshBondPrices(ctx context.Context) error {
	bonds, err := s.treasuryApi.GetBondPrices(ctx)
	if err != nil {
		return err
	}
	return s.cache.SetBondPrices(ctx, bonds)
}

// WarmQuoteCache prefetches quotes for every symbol currently held, so the
// first dashboard view after cache expiry doesn't pay the batch fetch.
func (s *PortfolioService) WarmQuoteCache(ctx context.Context) error {
	txs, err := s.repo.GetTransactions(ctx)
	if err != nil {
		return err
	}

	symbolSet := map[string]struct{}{}
	for _, pos := range aggregatePositions(txs) {
		if ticker := normalizeTicker(pos.Class, pos.Symbol); ticker != "" {
			symbolSet[ticker] = struct{}{}
		}
	}
	if len(symbolSet) == 0 {
		return nil
	}

	symbols := make([]string, 0, len(symbolSet))
	for symbol := range symbolSet {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	apiQuotes, err := s.quoteApi.GetQuotes(ctx, symbols)
	if err != nil {
		return err
	}

	quotes := make(map[string]decimal.Decimal, len(apiQuotes))
	for symbol, quote := range apiQuotes {
		quotes[symbol] = quote.Price
	}

	return s.cache.SetQuotes(ctx, quotes)
}

func (s *PortfolioService) GenerateReport(ctx context.Context) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GenerateReport"

	slog.Debug("GenerateReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GenerateReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	valuation, err := s.GetPortfolio(ctx)
	if err != nil {
		return nil, "", err
	}

	if valuation.AssetsCount == 0 {
		return nil, "", service.ErrEmptyPortfolio
	}

	history, err := s.GetHistory(ctx)
	if err != nil {
		return nil, "", err
	}

	fileBytes, fileExtension, err = s.reportGen.Generate(ctx, valuation, history)
	if err != nil {
		slog.Error("got error from reportGen.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return fileBytes, fileExtension, nil
}
