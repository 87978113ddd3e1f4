package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appcalc "github.com/emgea/siscalculo/internal/application/calc"
	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/infrastructure/audit"
	"github.com/emgea/siscalculo/internal/infrastructure/persistence"
	"github.com/emgea/siscalculo/internal/infrastructure/persistence/models"
	"github.com/emgea/siscalculo/internal/infrastructure/spreadsheet"
	"github.com/emgea/siscalculo/internal/interfaces/http/middleware"
	"github.com/emgea/siscalculo/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixedFactors struct{ rate decimal.Decimal }

func (f fixedFactors) FactorBetween(ctx context.Context, idx indices.Index, from, to indices.Month) (indices.Factor, error) {
	return indices.Factor{Rate: f.rate}, nil
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.InstallmentModel{},
		&models.PrescribedModel{},
		&models.LineModel{},
		&models.IndexPointModel{},
		&models.LedgerModel{},
		&models.PropertyModel{},
	))
	db := persistence.Wrap(gdb)

	staged := persistence.NewGormInstallmentRepository(db)
	prescribed := persistence.NewGormPrescribedRepository(db)
	lines := persistence.NewGormLineRepository(db)
	ledger := persistence.NewGormLedgerRepository(db)
	properties := persistence.NewGormPropertyRepository(db)

	logger := zap.NewNop()
	engine := calc.NewEngine(fixedFactors{rate: decimal.RequireFromString("0.05")}, calc.DefaultPolicy())
	process := appcalc.NewProcessService(spreadsheet.NewParser(), engine, staged, prescribed, lines, db, audit.NopSink{}, logger)
	results := appcalc.NewResultsService(lines, prescribed, properties, decimal.NewFromInt(10))
	compare := appcalc.NewCompareService(lines)
	prejudice := appcalc.NewPrejudiceService(lines, ledger, db, appcalc.DefaultLedgerPolicy(), audit.NopSink{}, logger)
	export := appcalc.NewExportService(results, nil, appcalc.ReportHeader{Department: "GEACO"}, logger)

	g := gin.New()
	g.Use(middleware.RequestID(), middleware.Identity())
	router.NewRouter(g).
		Register(NewCalcHandler(process, results, compare, export, decimal.NewFromInt(10), logger)).
		Register(NewPrejudiceHandler(prejudice)).
		Register(NewSystemHandler(db)).
		Setup()
	return g
}

func workbookBytes(t *testing.T, property string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "B1", property))
	require.NoError(t, f.SetCellValue(sheet, "B2", "COND. TESTE"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "DATA VENCIMENTO"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "VALOR COTA"))
	require.NoError(t, f.SetCellValue(sheet, "C3", "TIPO DA PARCELA"))
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+4)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func multipartProcess(t *testing.T, workbook []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", "parcelas.xlsx")
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(workbook))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func doProcess(t *testing.T, g *gin.Engine, property string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartProcess(t, workbookBytes(t, property, [][]any{
		{"10/06/2023", "350,00", "1"},
	}), map[string]string{
		"reference_date":  "2024-06-30",
		"index_id":        "5",
		"honorarios_rate": "10",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/siscalculo/process", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-Name", "maria.silva")
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestProcessEndpoint(t *testing.T) {
	g := newTestServer(t)

	rec := doProcess(t, g, "148")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	payload := decodeResponse(t, rec)
	assert.Equal(t, true, payload["success"])
	data := payload["data"].(map[string]any)
	assert.Equal(t, "148", data["property"])
	assert.EqualValues(t, 1, data["inserted"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestProcessEndpointDefaultsHonorariosRate(t *testing.T) {
	g := newTestServer(t)

	// no honorarios_rate in the form: the configured default of 10% applies
	body, contentType := multipartProcess(t, workbookBytes(t, "148", [][]any{{"10/06/2023", "350,00", "1"}}),
		map[string]string{"reference_date": "2024-06-30", "index_id": "5"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/siscalculo/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeResponse(t, rec)["data"].(map[string]any)
	assert.Equal(t, "422.63", data["subTotal"])
	assert.Equal(t, "464.89", data["grandTotal"])
}

func TestProcessEndpointRejectsBadIndex(t *testing.T) {
	g := newTestServer(t)

	body, contentType := multipartProcess(t, workbookBytes(t, "148", [][]any{{"10/06/2023", "350,00", "1"}}),
		map[string]string{"reference_date": "2024-06-30", "index_id": "3"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/siscalculo/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeResponse(t, rec)
	errInfo := payload["error"].(map[string]any)
	assert.Equal(t, "ERR_UNSUPPORTED_INDEX", errInfo["code"])
}

func TestProcessEndpointRequiresFile(t *testing.T) {
	g := newTestServer(t)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("reference_date", "2024-06-30"))
	require.NoError(t, w.WriteField("index_id", "5"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/siscalculo/process", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultsEndpoint(t *testing.T) {
	g := newTestServer(t)
	require.Equal(t, http.StatusOK, doProcess(t, g, "148").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/siscalculo/results?property=148&reference_date=2024-06-30&index_id=5", nil)
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	payload := decodeResponse(t, rec)
	data := payload["data"].(map[string]any)
	assert.Equal(t, "INPC", data["indexName"])
	require.Len(t, data["lines"], 1)

	// lines and totals keep the API's camelCase key convention
	line := data["lines"].([]any)[0].(map[string]any)
	assert.Contains(t, line, "monthsOverdue")
	assert.Contains(t, line, "monetaryUpdate")
	assert.NotContains(t, line, "MonthsOverdue")
	totals := data["totals"].(map[string]any)
	assert.Equal(t, "422.63", totals["subTotal"])
	assert.Equal(t, "464.89", totals["grandTotal"])
}

func TestResultsEndpointRequiresProperty(t *testing.T) {
	g := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/siscalculo/results?reference_date=2024-06-30&index_id=5", nil)
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndicesEndpoint(t *testing.T) {
	g := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/siscalculo/indices", nil)
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeResponse(t, rec)
	assert.Len(t, payload["data"], 4)
}

func TestCompareEndpoint(t *testing.T) {
	g := newTestServer(t)
	require.Equal(t, http.StatusOK, doProcess(t, g, "148").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/siscalculo/compare?reference_date=2024-06-30&property=148", nil)
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	payload := decodeResponse(t, rec)
	data := payload["data"].(map[string]any)
	rows := data["rows"].([]any)
	require.Len(t, rows, 1)
	first := rows[0].(map[string]any)
	assert.Equal(t, true, first["best"])
	assert.Equal(t, true, first["worst"])
}

func TestExportXLSXEndpoint(t *testing.T) {
	g := newTestServer(t)
	require.Equal(t, http.StatusOK, doProcess(t, g, "148").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/siscalculo/export/xlsx?property=148&reference_date=2024-06-30&index_id=5", nil)
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "siscalculo_148_20240630.xlsx")

	_, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	assert.NoError(t, err, "response must be a readable workbook")
}

func TestPrejudiceEndpoints(t *testing.T) {
	g := newTestServer(t)
	require.Equal(t, http.StatusOK, doProcess(t, g, "148").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/siscalculo/prejudice/contracts", nil)
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeResponse(t, rec)
	assert.Equal(t, []any{"148"}, payload["data"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/siscalculo/prejudice/contracts/148/dates", nil)
	rec = httptest.NewRecorder()
	g.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	payload = decodeResponse(t, rec)
	assert.Len(t, payload["data"], 1)

	// only one run persisted: compute lacks its counterpart
	body, err := json.Marshal(ComputeRequest{
		Contract:    "148",
		LaterDate:   "2024-06-30",
		EarlierDate: "2024-01-31",
	})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/siscalculo/prejudice/compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	g.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	payload = decodeResponse(t, rec)
	assert.Equal(t, "ERR_PREJUDICE_PRECONDITION", payload["error"].(map[string]any)["code"])

	saveBody, err := json.Marshal(SaveRequest{Contract: "148", Value: decimal.RequireFromString("120.55")})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/siscalculo/prejudice/save", bytes.NewReader(saveBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Name", "maria.silva")
	rec = httptest.NewRecorder()
	g.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	payload = decodeResponse(t, rec)
	assert.EqualValues(t, 1, payload["data"].(map[string]any)["ledger_id"])
}

func TestHealthEndpoint(t *testing.T) {
	g := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/siscalculo/healthz", nil)
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeResponse(t, rec)
	data := payload["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
}

func TestParseDateParam(t *testing.T) {
	d, err := parseDateParam("2024-06-30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDateParam("30/06/2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), d)

	_, err = parseDateParam("06-30-2024")
	assert.Error(t, err)
}

func TestParseWindowParams(t *testing.T) {
	w, err := parseWindowParams("01/2015", "12/2018")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "01/2015 - 12/2018", w.Label())

	w, err = parseWindowParams("", "")
	require.NoError(t, err)
	assert.Nil(t, w)

	_, err = parseWindowParams("01/2015", "")
	assert.Error(t, err)
}
