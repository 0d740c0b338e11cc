package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/pos-ledger/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	invoicePrefixLayout = "060102"
	invoiceSuffixDigits = 3
	maxInvoiceSuffix    = 999
)

var orderDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseOrderDate reads a business date as sent by clients. Values without a
// zone are taken to be in loc.
func ParseOrderDate(s string, loc *time.Location) (time.Time, error) {
	t, ok := parseClientTime(s, loc)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidOrderDate, strings.TrimSpace(s))
	}
	return t, nil
}

// ParseDate reads an entry timestamp or range bound in the same layouts as
// ParseOrderDate, failing with ErrInvalidDate.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, ok := parseClientTime(s, loc)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, strings.TrimSpace(s))
	}
	return t, nil
}

func parseClientTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range orderDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InvoicePrefix returns the YYMMDD part of an invoice number.
func InvoicePrefix(orderDate time.Time, loc *time.Location) string {
	return orderDate.In(loc).Format(invoicePrefixLayout)
}

// NextInvoiceNumber returns the next YYMMDDnnn number for the order date's
// calendar day and records it as issued. The suffix is one past the highest of
// the numbers stored under the prefix and the prefix's high-water mark, so a
// deleted or re-dated sale never frees its number. It must run inside the
// transaction that inserts the sale.
func NextInvoiceNumber(tx *gorm.DB, orderDate time.Time, loc *time.Location) (string, error) {
	if tx == nil {
		return "", ErrNotInitialized
	}
	prefix := InvoicePrefix(orderDate, loc)

	var numbers []string
	err := tx.Model(&models.Sale{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return "", fmt.Errorf("read invoice numbers: %w", err)
	}
	var mark models.InvoiceSequence
	if err := tx.Where("prefix = ?", prefix).Limit(1).Find(&mark).Error; err != nil {
		return "", fmt.Errorf("read invoice sequence: %w", err)
	}

	highest := mark.LastSeq
	for _, n := range numbers {
		if len(n) != len(prefix)+invoiceSuffixDigits {
			continue
		}
		seq, err := strconv.Atoi(n[len(n)-invoiceSuffixDigits:])
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	if highest >= maxInvoiceSuffix {
		return "", fmt.Errorf("%w: %s", ErrInvoiceSequenceExhausted, prefix)
	}

	next := highest + 1
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "prefix"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seq"}),
	}).Create(&models.InvoiceSequence{Prefix: prefix, LastSeq: next}).Error
	if err != nil {
		return "", fmt.Errorf("record invoice sequence: %w", err)
	}
	return fmt.Sprintf("%s%0*d", prefix, invoiceSuffixDigits, next), nil
}
