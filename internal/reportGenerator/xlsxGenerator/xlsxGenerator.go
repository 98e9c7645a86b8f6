package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finank/carteira_bot/internal/model"
	"github.com/finank/carteira_bot/utils"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "2006-01-02"

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate builds the portfolio workbook: one sheet with the priced
// positions and totals, one with the raw ledger history.
func (g *XLSXGenerator) Generate(ctx context.Context, valuation model.PortfolioValuation, history []model.Transaction) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if valuation.AssetsCount == 0 {
		return nil, "", errors.New("empty portfolio")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillPortfolioSheet(f, valuation); err != nil {
		return nil, "", err
	}

	if err := g.fillHistorySheet(f, history); err != nil {
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func sectionStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}

func (g *XLSXGenerator) fillPortfolioSheet(f *excelize.File, valuation model.PortfolioValuation) error {
	sheetName := "Carteira"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	// posição
	if err := f.MergeCell(sheetName, "A1", "C1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", "Posição")

	styleID, err := sectionStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "A2", "tipo")
	_ = f.SetCellStr(sheetName, "B2", "ativo")
	_ = f.SetCellStr(sheetName, "C2", "quantidade")

	// cotação
	if err := f.MergeCell(sheetName, "D1", "F1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "D1", "Cotação")

	styleID, err = sectionStyle(f, "#d9ead3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "D1", "D1", styleID); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "D2", "taxa % a.a.")
	_ = f.SetCellStr(sheetName, "E2", "preço médio")
	_ = f.SetCellStr(sheetName, "F2", "preço atual")

	// resultado
	if err := f.MergeCell(sheetName, "G1", "K1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "G1", "Resultado")

	styleID, err = sectionStyle(f, "#f9cb9c")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "G1", "G1", styleID); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "G2", "status")
	_ = f.SetCellStr(sheetName, "H2", "variação %")
	_ = f.SetCellStr(sheetName, "I2", "lucro R$")
	_ = f.SetCellStr(sheetName, "J2", "saldo R$")
	_ = f.SetCellStr(sheetName, "K2", "fonte do preço")

	for i, pos := range valuation.Positions {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), string(pos.Class))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), pos.Symbol)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), pos.NetQuantity.InexactFloat64())

		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), pos.AverageRate.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), pos.AveragePrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), pos.CurrentPrice.InexactFloat64())

		_ = f.SetCellStr(sheetName, fmt.Sprintf("G%d", row), pos.Status)
		if pos.PercentChangeOK {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), pos.PercentChange.InexactFloat64())
		} else {
			_ = f.SetCellStr(sheetName, fmt.Sprintf("H%d", row), "-")
		}
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), pos.Profit.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), pos.CurrentValue.InexactFloat64())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("K%d", row), string(pos.Source))
	}

	// totais
	rowNum := len(valuation.Positions) + 4
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "valor investido")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), valuation.TotalInvested.InexactFloat64())
	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "saldo atual")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), valuation.CurrentBalance.InexactFloat64())
	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "lucro total")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), valuation.TotalProfit.InexactFloat64())
	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "ativos")
	_ = f.SetCellInt(sheetName, fmt.Sprintf("B%d", rowNum), int64(valuation.AssetsCount))

	return nil
}

func (g *XLSXGenerator) fillHistorySheet(f *excelize.File, history []model.Transaction) error {
	sheetName := "Extrato"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "G1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", "Histórico de lançamentos")

	styleID, err := sectionStyle(f, "#cccccc")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "A2", "data")
	_ = f.SetCellStr(sheetName, "B2", "ativo")
	_ = f.SetCellStr(sheetName, "C2", "tipo")
	_ = f.SetCellStr(sheetName, "D2", "operação")
	_ = f.SetCellStr(sheetName, "E2", "quantidade")
	_ = f.SetCellStr(sheetName, "F2", "preço")
	_ = f.SetCellStr(sheetName, "G2", "taxa")

	for i, tx := range history {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), tx.Date.Format(dateLayout))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), tx.Symbol)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", row), string(tx.Class))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", row), string(tx.Action))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), tx.Quantity.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), tx.Price.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), tx.Rate.InexactFloat64())
	}

	return nil
}
