package printing

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a monetary value as Brazilian currency ("R$ 1.234,56").
// The digits come straight from the decimal; the value never passes through
// a float.
func FormatBRL(v decimal.Decimal) string {
	s := v.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")
	n, _ := strconv.ParseInt(intPart, 10, 64)
	out := ptBR.Sprintf("R$ %d,%s", n, fracPart)
	if neg {
		return "-" + out
	}
	return out
}

// FormatFactorPercent renders an index factor (a fraction) as a percentage
// with four decimals ("12,3456%").
func FormatFactorPercent(v decimal.Decimal) string {
	s := v.Mul(decimal.NewFromInt(100)).StringFixed(4)
	return strings.Replace(s, ".", ",", 1) + "%"
}

// LetterLine is one installment row of the proposal letter.
type LetterLine struct {
	DueDate       string
	MonthsOverdue int
	Cota          string
	UpdatePercent string
	Update        string
	Interest      string
	Fine          string
	Discount      string
	Total         string
}

// LetterData feeds the proposal letter template.
type LetterData struct {
	Department       string
	Division         string
	Reclamante       string
	Address          string
	Property         string
	ReferenceDate    string
	IssuedAt         string
	IndexName        string
	PrescriptionNote string
	Lines            []LetterLine
	SumCota          string
	SumUpdate        string
	SumInterest      string
	SumFine          string
	SumDiscount      string
	SubTotal         string
	HonorariosRate   string
	Honorarios       string
	GrandTotal       string
	Count            int
}

// BuildLetterHTML renders the proposal letter to a standalone HTML document.
func BuildLetterHTML(data LetterData) (string, error) {
	var buf bytes.Buffer
	if err := letterTemplate.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "letter template execution failed", err)
	}
	return buf.String(), nil
}

var letterTemplate = template.Must(template.New("letter").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Proposta Negocial</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 9pt; color: #000; }
  h1 { font-size: 16pt; color: #198754; margin: 0 0 2mm 0; }
  .subtitle { font-size: 8pt; color: #6c757d; margin-bottom: 4mm; }
  .info { margin-bottom: 1mm; }
  .alert { background: #fff3cd; color: #856404; padding: 2mm; margin: 2mm 0; }
  table.lines { border-collapse: collapse; width: 100%; margin-top: 4mm; }
  table.lines th { background: #4a5568; color: #fff; font-size: 7pt; padding: 1mm; border: 0.5pt solid #000; }
  table.lines td { font-size: 8pt; padding: 1mm; border: 0.5pt solid #000; text-align: right; }
  table.lines td.c { text-align: center; }
  table.lines tr.sum td { background: #e2e8f0; font-weight: bold; font-size: 9pt; }
  table.totals { border-collapse: collapse; margin-top: 3mm; width: 100%; }
  table.totals td { padding: 4px 5px; border: 0.5pt solid #000; text-align: right; font-weight: bold; }
  table.totals tr.fee td { background: #bee3f8; font-size: 10pt; }
  table.totals tr.grand td { background: #c6f6d5; font-size: 12pt; }
  .criteria { margin-top: 5mm; font-size: 8pt; }
  .criteria h2 { font-size: 11pt; margin: 0 0 2mm 0; }
</style>
</head>
<body>
<h1>Proposta Negocial - {{.Department}}</h1>
<div class="subtitle">Quitação de todos os débitos exigíveis, mediante aceitação dos encargos, inclusive honorários, conforme critérios no rodapé - {{.Division}}</div>
{{if .Reclamante}}<div class="info"><b>Reclamante:</b> {{.Reclamante}}</div>{{end}}
{{if .Address}}<div class="info"><b>Endereço do Imóvel:</b> {{.Address}}</div>{{end}}
<div class="info"><b>Imóvel:</b> {{.Property}} | <b>Data de Atualização:</b> {{.ReferenceDate}}{{if .IndexName}} | <b>Índice:</b> {{.IndexName}}{{end}}</div>
{{if .IssuedAt}}<div class="info"><b>Emissão:</b> {{.IssuedAt}}</div>{{end}}
{{if .PrescriptionNote}}
<div class="alert"><b>Atenção:</b> Foi aplicado filtro de prescrição no período <b>{{.PrescriptionNote}}</b>. Parcelas dentro deste período foram excluídas do cálculo.</div>
{{end}}
<table class="lines">
<tr>
  <th>Data de<br>Vencimento</th>
  <th>Tempo de<br>Atraso em Meses</th>
  <th>Valor da<br>Cota</th>
  <th>Percentual de<br>Atualização</th>
  <th>Atualização<br>Monetária</th>
  <th>Juros</th>
  <th>Multa</th>
  <th>Desconto</th>
  <th>Soma</th>
</tr>
{{range .Lines}}
<tr>
  <td class="c">{{.DueDate}}</td>
  <td class="c">{{.MonthsOverdue}}</td>
  <td>{{.Cota}}</td>
  <td>{{.UpdatePercent}}</td>
  <td>{{.Update}}</td>
  <td>{{.Interest}}</td>
  <td>{{.Fine}}</td>
  <td>{{.Discount}}</td>
  <td>{{.Total}}</td>
</tr>
{{end}}
<tr class="sum">
  <td class="c">Soma</td>
  <td></td>
  <td>{{.SumCota}}</td>
  <td></td>
  <td>{{.SumUpdate}}</td>
  <td>{{.SumInterest}}</td>
  <td>{{.SumFine}}</td>
  <td>{{.SumDiscount}}</td>
  <td>{{.SubTotal}}</td>
</tr>
</table>
<table class="totals">
<tr class="fee"><td>Honorários Advocatícios: {{.HonorariosRate}}%</td><td>{{.Honorarios}}</td></tr>
<tr class="grand"><td>TOTAL:</td><td>{{.GrandTotal}}</td></tr>
</table>
<div class="criteria">
<h2>Informações do Cálculo</h2>
<div><b>Critérios Utilizados:</b></div>
<ul>
  <li><b>Correção Monetária:</b> {{.IndexName}} (Juros Compostos)</li>
  <li><b>Valor Atualizado:</b> Valor da Cota × Fator Acumulado dos Índices</li>
  <li><b>Juros de Mora:</b> Valor Atualizado × 1% × Meses de Atraso (Juros Simples)</li>
  <li><b>Multa:</b> Valor Atualizado × 2% (após 10/01/2003) ou 10% (antes)</li>
  <li><b>Honorários:</b> {{.HonorariosRate}}% sobre o total</li>
</ul>
<div><b>Resumo:</b></div>
<ul>
  <li><b>Total de Parcelas:</b> {{.Count}}</li>
  <li><b>Valor Original:</b> {{.SumCota}}</li>
  <li><b>Total sem Honorários:</b> {{.SubTotal}}</li>
  <li><b>Honorários:</b> {{.Honorarios}}</li>
  <li><b>Total com Honorários:</b> {{.GrandTotal}}</li>
</ul>
</div>
</body>
</html>
`))
