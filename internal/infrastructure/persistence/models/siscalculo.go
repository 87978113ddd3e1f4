package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emgea/siscalculo/internal/domain/calc"
	"github.com/emgea/siscalculo/internal/domain/indices"
)

// InstallmentModel is the persistence model for staged worksheet rows.
// The most recent run for (property, reference_date) owns the partition.
type InstallmentModel struct {
	Property        string          `gorm:"type:varchar(30);primaryKey"`
	DueDate         time.Time       `gorm:"primaryKey"`
	ReferenceDate   time.Time       `gorm:"primaryKey"`
	CondominiumName string          `gorm:"type:varchar(200)"`
	Cota            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Kind            int             `gorm:"not null;default:1"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "siscalculo_installments"
}

// ToDomain converts the persistence model to a domain Installment.
func (m *InstallmentModel) ToDomain() calc.Installment {
	return calc.Installment{
		Property:        m.Property,
		CondominiumName: m.CondominiumName,
		DueDate:         m.DueDate,
		ReferenceDate:   m.ReferenceDate,
		Cota:            m.Cota,
		Kind:            m.Kind,
	}
}

// FromDomain populates the persistence model from a domain Installment.
func (m *InstallmentModel) FromDomain(inst calc.Installment) {
	m.Property = inst.Property
	m.CondominiumName = inst.CondominiumName
	m.DueDate = inst.DueDate
	m.ReferenceDate = inst.ReferenceDate
	m.Cota = inst.Cota
	m.Kind = inst.Kind
}

// PrescribedModel is the persistence model for installments excluded under a
// prescription window. Rows survive reruns of other partitions as the
// history of the exclusion.
type PrescribedModel struct {
	Property        string          `gorm:"type:varchar(30);primaryKey"`
	DueDate         time.Time       `gorm:"primaryKey"`
	ReferenceDate   time.Time       `gorm:"primaryKey"`
	IndexID         int             `gorm:"primaryKey"`
	CondominiumName string          `gorm:"type:varchar(200)"`
	Cota            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Kind            int             `gorm:"not null;default:1"`
	PeriodLabel     string          `gorm:"type:varchar(40);not null"`
	PrescribedBy    string          `gorm:"type:varchar(100);not null"`
	PrescribedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PrescribedModel) TableName() string {
	return "siscalculo_prescribed"
}

// ToDomain converts the persistence model to a domain PrescribedInstallment.
func (m *PrescribedModel) ToDomain() calc.PrescribedInstallment {
	return calc.PrescribedInstallment{
		Property:        m.Property,
		CondominiumName: m.CondominiumName,
		DueDate:         m.DueDate,
		ReferenceDate:   m.ReferenceDate,
		Index:           indices.Index(m.IndexID),
		Cota:            m.Cota,
		Kind:            m.Kind,
		PeriodLabel:     m.PeriodLabel,
		PrescribedBy:    m.PrescribedBy,
		PrescribedAt:    m.PrescribedAt,
	}
}

// FromDomain populates the persistence model from a domain PrescribedInstallment.
func (m *PrescribedModel) FromDomain(p calc.PrescribedInstallment) {
	m.Property = p.Property
	m.CondominiumName = p.CondominiumName
	m.DueDate = p.DueDate
	m.ReferenceDate = p.ReferenceDate
	m.IndexID = int(p.Index)
	m.Cota = p.Cota
	m.Kind = p.Kind
	m.PeriodLabel = p.PeriodLabel
	m.PrescribedBy = p.PrescribedBy
	m.PrescribedAt = p.PrescribedAt
}

// LineModel is the persistence model for computed statement lines. Lines
// partition by (property, reference_date, index_id); reruns replace the
// partition wholesale.
type LineModel struct {
	ReferenceDate  time.Time       `gorm:"primaryKey"`
	IndexID        int             `gorm:"primaryKey"`
	Property       string          `gorm:"type:varchar(30);primaryKey"`
	DueDate        time.Time       `gorm:"primaryKey"`
	Kind           int             `gorm:"not null;default:1"`
	Cota           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	MonthsOverdue  int             `gorm:"not null"`
	IndexFactor    decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	MonetaryUpdate decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Interest       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Fine           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	HonorariosRate decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	Approximated   bool            `gorm:"not null;default:false"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineModel) TableName() string {
	return "siscalculo_lines"
}

// ToDomain converts the persistence model to a domain Line.
func (m *LineModel) ToDomain() calc.Line {
	return calc.Line{
		Property:       m.Property,
		DueDate:        m.DueDate,
		ReferenceDate:  m.ReferenceDate,
		Index:          indices.Index(m.IndexID),
		Kind:           m.Kind,
		Cota:           m.Cota,
		MonthsOverdue:  m.MonthsOverdue,
		IndexFactor:    m.IndexFactor,
		MonetaryUpdate: m.MonetaryUpdate,
		Interest:       m.Interest,
		Fine:           m.Fine,
		Discount:       m.Discount,
		Total:          m.Total,
		HonorariosRate: m.HonorariosRate,
		Approximated:   m.Approximated,
	}
}

// FromDomain populates the persistence model from a domain Line.
func (m *LineModel) FromDomain(l calc.Line) {
	m.ReferenceDate = l.ReferenceDate
	m.IndexID = int(l.Index)
	m.Property = l.Property
	m.DueDate = l.DueDate
	m.Kind = l.Kind
	m.Cota = l.Cota
	m.MonthsOverdue = l.MonthsOverdue
	m.IndexFactor = l.IndexFactor
	m.MonetaryUpdate = l.MonetaryUpdate
	m.Interest = l.Interest
	m.Fine = l.Fine
	m.Discount = l.Discount
	m.Total = l.Total
	m.HonorariosRate = l.HonorariosRate
	m.Approximated = l.Approximated
}

// IndexPointModel is the persistence model for monthly index observations.
// Read-only reference data maintained by an external loader.
type IndexPointModel struct {
	IndexID     int             `gorm:"primaryKey"`
	StartMonth  time.Time       `gorm:"primaryKey"`
	RatePercent decimal.Decimal `gorm:"type:decimal(10,4);not null"`
}

// TableName returns the table name for GORM
func (IndexPointModel) TableName() string {
	return "economic_index_points"
}

// ToDomain converts the persistence model to a domain Point.
func (m *IndexPointModel) ToDomain() indices.Point {
	return indices.Point{
		Index:       indices.Index(m.IndexID),
		StartMonth:  indices.MonthOf(m.StartMonth),
		RatePercent: m.RatePercent,
	}
}

// LedgerModel is the persistence model for receivables-ledger appends made
// by the prejudice operation.
type LedgerModel struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	Contract     string          `gorm:"type:varchar(30);not null;index"`
	Creditor     string          `gorm:"type:varchar(60);not null"`
	CarteiraID   int             `gorm:"not null"`
	OcorrenciaID int             `gorm:"not null"`
	StatusID     int             `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RecordedBy   string          `gorm:"type:varchar(100);not null"`
	RecordedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerModel) TableName() string {
	return "receivables_ledger"
}

// FromDomain populates the persistence model from a domain LedgerEntry.
func (m *LedgerModel) FromDomain(e calc.LedgerEntry) {
	m.Contract = e.Contract
	m.Creditor = e.Creditor
	m.CarteiraID = e.CarteiraID
	m.OcorrenciaID = e.OcorrenciaID
	m.StatusID = e.StatusID
	m.Amount = e.Amount
	m.RecordedBy = e.RecordedBy
	m.RecordedAt = e.RecordedAt
}

// PropertyModel is the persistence model for the property directory shown on
// statement headers.
type PropertyModel struct {
	Property        string `gorm:"type:varchar(30);primaryKey"`
	CondominiumName string `gorm:"type:varchar(200)"`
	Address         string `gorm:"type:varchar(300)"`
	Reclamante      string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "property_directory"
}

// ToDomain converts the persistence model to a domain PropertyInfo.
func (m *PropertyModel) ToDomain() *calc.PropertyInfo {
	return &calc.PropertyInfo{
		Property:        m.Property,
		CondominiumName: m.CondominiumName,
		Address:         m.Address,
		Reclamante:      m.Reclamante,
	}
}
