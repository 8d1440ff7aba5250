package printing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders money, dates and enum labels for one locale
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	printer *message.Printer
	caser   cases.Caser
	loc     *time.Location
}

// NewFormatter builds a formatter for a BCP 47 locale ("en-US") and an ISO 4217
// currency ("USD"). A nil location means UTC.
func NewFormatter(locale, currencyCode string, loc *time.Location) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "invalid receipt locale "+locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "invalid receipt currency "+currencyCode, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{
		tag:     tag,
		unit:    unit,
		printer: message.NewPrinter(tag),
		caser:   cases.Title(tag),
		loc:     loc,
	}, nil
}

// Money formats an amount with the currency symbol and locale grouping
func (f *Formatter) Money(amount decimal.Decimal) string {
	value, _ := amount.Round(2).Float64()
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(value)))
}

// Number formats a plain integer with locale grouping
func (f *Formatter) Number(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Date formats t as a calendar date in the shop's time zone
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.loc).Format("2006-01-02")
}

// DateTime formats t with minutes in the shop's time zone
func (f *Formatter) DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.loc).Format("2006-01-02 15:04")
}

// Label turns an enum value such as BANK_TRANSFER into "Bank Transfer"
func (f *Formatter) Label(value string) string {
	return f.caser.String(strings.ReplaceAll(strings.ToLower(value), "_", " "))
}
