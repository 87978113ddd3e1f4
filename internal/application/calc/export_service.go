package calc

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/domain/shared"
	"github.com/emgea/siscalculo/internal/infrastructure/printing"
)

const (
	detailSheet  = "Detalhamento"
	summarySheet = "Resumo"
)

// ReportHeader carries the fixed letterhead fields of exported documents.
type ReportHeader struct {
	Department string
	Division   string
	City       string
}

// ExportService materialises persisted runs as XLSX workbooks and PDF
// proposal letters.
type ExportService struct {
	results  *ResultsService
	renderer printing.PDFRenderer
	header   ReportHeader
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService creates a new ExportService. A nil renderer disables
// PDF export.
func NewExportService(results *ResultsService, renderer printing.PDFRenderer, header ReportHeader, logger *zap.Logger) *ExportService {
	return &ExportService{
		results:  results,
		renderer: renderer,
		header:   header,
		logger:   logger,
		now:      time.Now,
	}
}

// ExportXLSX builds a two-sheet workbook for one persisted run: Detalhamento
// with one row per line and Resumo with the aggregated totals. The sheet sums
// match the run totals exactly.
func (s *ExportService) ExportXLSX(ctx context.Context, property string, referenceDate time.Time, indexID int, honorariosRate *decimal.Decimal) ([]byte, error) {
	view, err := s.results.GetResults(ctx, property, referenceDate, indexID, honorariosRate)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", detailSheet); err != nil {
		return nil, err
	}

	headers := []string{
		"IMÓVEL", "DATA VENCIMENTO", "VALOR COTA", "MESES ATRASO",
		"% ATUALIZAÇÃO", "ATUALIZAÇÃO MONETÁRIA", "JUROS", "MULTA",
		"DESCONTO", "TOTAL", "ÍNDICE",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(detailSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, line := range view.Lines {
		row := i + 2
		values := []any{
			line.Property,
			line.DueDate.Format("02/01/2006"),
			line.Cota.InexactFloat64(),
			line.MonthsOverdue,
			line.IndexFactor.Mul(decimal.NewFromInt(100)).InexactFloat64(),
			line.MonetaryUpdate.InexactFloat64(),
			line.Interest.InexactFloat64(),
			line.Fine.InexactFloat64(),
			line.Discount.InexactFloat64(),
			line.Total.InexactFloat64(),
			view.IndexName,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(detailSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	summary := [][]any{
		{"Imóvel", view.Property},
		{"Condomínio", view.CondominiumName},
		{"Data de Atualização", view.ReferenceDate.Format("02/01/2006")},
		{"Índice", view.IndexName},
		{"Quantidade de Parcelas", view.Totals.Count},
		{"Soma das Cotas", view.Totals.SumCota.InexactFloat64()},
		{"Atualização Monetária", view.Totals.SumUpdate.InexactFloat64()},
		{"Juros", view.Totals.SumInterest.InexactFloat64()},
		{"Multa", view.Totals.SumFine.InexactFloat64()},
		{"Desconto", view.Totals.SumDiscount.InexactFloat64()},
		{"Subtotal", view.Totals.SubTotal.InexactFloat64()},
		{fmt.Sprintf("Honorários (%s%%)", view.HonorariosRate.StringFixed(2)), view.Totals.Honorarios.InexactFloat64()},
		{"Total Geral", view.Totals.GrandTotal.InexactFloat64()},
	}
	for i, pair := range summary {
		for col, v := range pair {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	s.logger.Info("xlsx export produced",
		zap.String("property", property),
		zap.Int("index_id", indexID),
		zap.Int("lines", len(view.Lines)),
		zap.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

// ExportPDF renders the proposal letter of one persisted run.
func (s *ExportService) ExportPDF(ctx context.Context, property string, referenceDate time.Time, indexID int, honorariosRate *decimal.Decimal) ([]byte, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("pdf rendering is disabled: %w", shared.ErrDomainRuleViolation)
	}

	view, err := s.results.GetResults(ctx, property, referenceDate, indexID, honorariosRate)
	if err != nil {
		return nil, err
	}
	if len(view.Lines) == 0 {
		return nil, fmt.Errorf("no persisted calculation for %s: %w", property, shared.ErrNotFound)
	}

	html, err := printing.BuildLetterHTML(s.letterData(view))
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:  html,
		Title: fmt.Sprintf("Proposta Negocial %s", property),
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

func (s *ExportService) letterData(view *ResultsView) printing.LetterData {
	data := printing.LetterData{
		Department:     s.header.Department,
		Division:       s.header.Division,
		Reclamante:     view.Reclamante,
		Address:        view.Address,
		Property:       view.Property,
		ReferenceDate:  view.ReferenceDate.Format("02/01/2006"),
		IssuedAt:       fmt.Sprintf("%s, %s", s.header.City, indices.NextBusinessDay(s.now()).Format("02/01/2006")),
		IndexName:      view.IndexName,
		SumCota:        printing.FormatBRL(view.Totals.SumCota),
		SumUpdate:      printing.FormatBRL(view.Totals.SumUpdate),
		SumInterest:    printing.FormatBRL(view.Totals.SumInterest),
		SumFine:        printing.FormatBRL(view.Totals.SumFine),
		SumDiscount:    printing.FormatBRL(view.Totals.SumDiscount),
		SubTotal:       printing.FormatBRL(view.Totals.SubTotal),
		HonorariosRate: view.HonorariosRate.StringFixed(2),
		Honorarios:     printing.FormatBRL(view.Totals.Honorarios),
		GrandTotal:     printing.FormatBRL(view.Totals.GrandTotal),
		Count:          view.Totals.Count,
	}
	if view.Reclamante == "" {
		data.Reclamante = view.CondominiumName
	}
	if len(view.Prescribed) > 0 {
		data.PrescriptionNote = view.Prescribed[0].PeriodLabel
	}
	for _, line := range view.Lines {
		data.Lines = append(data.Lines, printing.LetterLine{
			DueDate:       line.DueDate.Format("02/01/2006"),
			MonthsOverdue: line.MonthsOverdue,
			Cota:          printing.FormatBRL(line.Cota),
			UpdatePercent: printing.FormatFactorPercent(line.IndexFactor),
			Update:        printing.FormatBRL(line.MonetaryUpdate),
			Interest:      printing.FormatBRL(line.Interest),
			Fine:          printing.FormatBRL(line.Fine),
			Discount:      printing.FormatBRL(line.Discount),
			Total:         printing.FormatBRL(line.Total),
		})
	}
	return data
}
