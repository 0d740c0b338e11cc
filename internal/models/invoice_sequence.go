package models

// InvoiceSequence keeps the highest invoice suffix issued for one YYMMDD prefix.
type InvoiceSequence struct {
	Prefix  string `gorm:"primaryKey;size:6"`
	LastSeq int    `gorm:"not null"`
}
