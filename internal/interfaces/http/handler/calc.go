package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcalc "github.com/emgea/siscalculo/internal/application/calc"
	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/interfaces/http/dto"
	"github.com/emgea/siscalculo/internal/interfaces/http/middleware"
)

const (
	// Maximum worksheet upload size (10MB)
	maxUploadSize = 10 * 1024 * 1024

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// CalcHandler handles calculation-related API endpoints
type CalcHandler struct {
	BaseHandler
	process        *appcalc.ProcessService
	results        *appcalc.ResultsService
	compare        *appcalc.CompareService
	export         *appcalc.ExportService
	honorariosRate decimal.Decimal
	logger         *zap.Logger
}

// NewCalcHandler creates a new CalcHandler. honorariosDefault is the percent
// applied when a process request names no honorarios_rate.
func NewCalcHandler(
	process *appcalc.ProcessService,
	results *appcalc.ResultsService,
	compare *appcalc.CompareService,
	export *appcalc.ExportService,
	honorariosDefault decimal.Decimal,
	logger *zap.Logger,
) *CalcHandler {
	return &CalcHandler{
		process:        process,
		results:        results,
		compare:        compare,
		export:         export,
		honorariosRate: honorariosDefault,
		logger:         logger,
	}
}

// RegisterRoutes registers all calculation routes
func (h *CalcHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sis := rg.Group("/siscalculo")
	{
		sis.POST("/process", h.Process)
		sis.GET("/results", h.Results)
		sis.GET("/results/history", h.History)
		sis.GET("/indices", h.Indices)
		sis.GET("/compare", h.Compare)
		sis.GET("/export/xlsx", h.ExportXLSX)
		sis.GET("/export/pdf", h.ExportPDF)
	}
}

// Process receives the installment worksheet and runs a calculation.
func (h *CalcHandler) Process(c *gin.Context) {
	referenceDate, err := parseDateParam(c.PostForm("reference_date"))
	if err != nil {
		h.BadRequest(c, "reference_date must be YYYY-MM-DD or DD/MM/YYYY")
		return
	}
	indexID, err := parseIntParam(c.PostForm("index_id"))
	if err != nil {
		h.BadRequest(c, "index_id must be an integer")
		return
	}
	honorariosRate := h.honorariosRate
	if raw := c.PostForm("honorarios_rate"); raw != "" {
		honorariosRate, err = decimal.NewFromString(raw)
		if err != nil || honorariosRate.IsNegative() {
			h.BadRequest(c, "honorarios_rate must be a non-negative number")
			return
		}
	}

	window, err := parseWindowParams(c.PostForm("prescription_start"), c.PostForm("prescription_end"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()
	if header.Size > maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "file exceeds maximum size of 10MB")
		return
	}

	result, err := h.process.Process(c.Request.Context(), appcalc.ProcessInput{
		File:           file,
		ReferenceDate:  referenceDate,
		IndexID:        indexID,
		HonorariosRate: honorariosRate,
		Prescription:   window,
		ActingUser:     middleware.GetActingUser(c),
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Results returns the persisted statement of one run.
func (h *CalcHandler) Results(c *gin.Context) {
	property, referenceDate, indexID, rate, ok := h.resultsParams(c)
	if !ok {
		return
	}

	view, err := h.results.GetResults(c.Request.Context(), property, referenceDate, indexID, rate)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, view)
}

// History lists persisted runs.
func (h *CalcHandler) History(c *gin.Context) {
	entries, err := h.results.History(c.Request.Context(), c.Query("contract"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, entries)
}

// Indices returns the accepted economic index catalog.
func (h *CalcHandler) Indices(c *gin.Context) {
	h.Success(c, h.results.Indices(c.Request.Context()))
}

// Compare aggregates one reference date across indices.
func (h *CalcHandler) Compare(c *gin.Context) {
	referenceDate, err := parseDateParam(c.Query("reference_date"))
	if err != nil {
		h.BadRequest(c, "reference_date must be YYYY-MM-DD or DD/MM/YYYY")
		return
	}

	cmp, err := h.compare.Compare(c.Request.Context(), referenceDate, c.Query("property"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, cmp)
}

// ExportXLSX streams the run workbook.
func (h *CalcHandler) ExportXLSX(c *gin.Context) {
	property, referenceDate, indexID, rate, ok := h.resultsParams(c)
	if !ok {
		return
	}

	data, err := h.export.ExportXLSX(c.Request.Context(), property, referenceDate, indexID, rate)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	filename := fmt.Sprintf("siscalculo_%s_%s.xlsx", property, referenceDate.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportPDF streams the proposal letter.
func (h *CalcHandler) ExportPDF(c *gin.Context) {
	property, referenceDate, indexID, rate, ok := h.resultsParams(c)
	if !ok {
		return
	}

	data, err := h.export.ExportPDF(c.Request.Context(), property, referenceDate, indexID, rate)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	filename := fmt.Sprintf("proposta_%s_%s.pdf", property, referenceDate.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *CalcHandler) resultsParams(c *gin.Context) (string, time.Time, int, *decimal.Decimal, bool) {
	property := c.Query("property")
	if property == "" {
		h.BadRequest(c, "property is required")
		return "", time.Time{}, 0, nil, false
	}
	referenceDate, err := parseDateParam(c.Query("reference_date"))
	if err != nil {
		h.BadRequest(c, "reference_date must be YYYY-MM-DD or DD/MM/YYYY")
		return "", time.Time{}, 0, nil, false
	}
	indexID, err := parseIntParam(c.Query("index_id"))
	if err != nil {
		h.BadRequest(c, "index_id must be an integer")
		return "", time.Time{}, 0, nil, false
	}

	var rate *decimal.Decimal
	if raw := c.Query("honorarios_rate"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			h.BadRequest(c, "honorarios_rate must be a non-negative number")
			return "", time.Time{}, 0, nil, false
		}
		rate = &d
	}
	return property, referenceDate, indexID, rate, true
}

func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func parseIntParam(raw string) (int, error) {
	return strconv.Atoi(raw)
}

// parseWindowParams builds the prescription window from MM/YYYY bounds.
// Both or neither must be present.
func parseWindowParams(start, end string) (*calc.Window, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, fmt.Errorf("prescription window needs both prescription_start and prescription_end")
	}
	from, err := parseMonthParam(start)
	if err != nil {
		return nil, fmt.Errorf("prescription_start must be MM/YYYY")
	}
	to, err := parseMonthParam(end)
	if err != nil {
		return nil, fmt.Errorf("prescription_end must be MM/YYYY")
	}
	return &calc.Window{Start: from, End: to}, nil
}

func parseMonthParam(raw string) (indices.Month, error) {
	for _, layout := range []string{"01/2006", "2006-01"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return indices.MonthOf(t), nil
		}
	}
	return indices.Month{}, fmt.Errorf("unparseable month %q", raw)
}
