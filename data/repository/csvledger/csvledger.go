package csvledger

import (
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/finank/carteira_bot/config"
	"github.com/finank/carteira_bot/internal/model"
	"github.com/finank/carteira_bot/utils"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var header = []string{"Data", "Ativo", "Tipo", "Operacao", "Quantidade", "Preco", "Taxa"}

// CSVLedger persists the transaction ledger as a flat CSV file with a fixed
// header. Rows are append-only; the only destructive operation is Reset.
type CSVLedger struct {
	path string
	cfg  *config.Config
}

func New(cfg *config.Config) *CSVLedger {
	return &CSVLedger{path: cfg.Ledger.FilePath, cfg: cfg}
}

// ensureFile creates the ledger with its header row when absent.
func (l *CSVLedger) ensureFile() error {
	_, err := os.Stat(l.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	f, err := os.Create(l.path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (l *CSVLedger) GetTransactions(ctx context.Context) (txs []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("path", l.path))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID), slog.Int("rows", len(txs)))
		}
	}()

	if err = l.ensureFile(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // older ledgers may miss the Taxa column
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	txs = make([]model.Transaction, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 6 {
			slog.Warn("skipping malformed ledger row", slog.String("rqID", rqID), slog.Any("row", row))
			continue
		}
		txs = append(txs, parseRow(row))
	}

	return txs, nil
}

// parseRow is lenient: unparseable numeric fields default to zero instead of
// aborting the whole ledger read.
func parseRow(row []string) model.Transaction {
	tx := model.Transaction{
		Symbol: row[1],
		Class:  model.AssetClass(row[2]),
		Action: model.Action(row[3]),
	}

	if dt, err := time.Parse(dateLayout, row[0]); err == nil {
		tx.Date = dt
	}
	if qty, err := decimal.NewFromString(row[4]); err == nil {
		tx.Quantity = qty
	}
	if price, err := decimal.NewFromString(row[5]); err == nil {
		tx.Price = price
	}
	if len(row) > 6 {
		if rate, err := decimal.NewFromString(row[6]); err == nil {
			tx.Rate = rate
		}
	}

	return tx
}

func (l *CSVLedger) AppendTransaction(ctx context.Context, tx model.Transaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("AppendTransaction start", slog.String("rqID", rqID), slog.String("symbol", tx.Symbol))
	defer func() {
		if err != nil {
			slog.Error("AppendTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("AppendTransaction completed", slog.String("rqID", rqID))
		}
	}()

	if err = l.ensureFile(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	err = w.Write([]string{
		tx.Date.Format(dateLayout),
		tx.Symbol,
		string(tx.Class),
		string(tx.Action),
		tx.Quantity.String(),
		tx.Price.String(),
		tx.Rate.String(),
	})
	if err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// Reset deletes the ledger file. The next read recreates it empty.
func (l *CSVLedger) Reset(ctx context.Context) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("Reset start", slog.String("rqID", rqID), slog.String("path", l.path))
	defer func() {
		if err != nil {
			slog.Error("Reset failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("Reset completed", slog.String("rqID", rqID))
		}
	}()

	err = os.Remove(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
