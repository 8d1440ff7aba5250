package printing

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names
const (
	TemplateSaleReceipt  = "sale_receipt.html"
	TemplateRepairTicket = "repair_ticket.html"
)

// Shop is the header printed on every document
type Shop struct {
	Name    string
	Address string
	Phone   string
}

// Party is a customer as printed on a document
type Party struct {
	Name    string
	Phone   string
	Address string
}

// ReceiptLine is one sold item
type ReceiptLine struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	// WarrantyMonths is printed when the item carries a warranty
	WarrantyMonths int
}

// ReceiptPayment is one tender
type ReceiptPayment struct {
	Method    string
	Amount    decimal.Decimal
	Reference string
}

// SaleReceipt is the data bound to the sale receipt template
type SaleReceipt struct {
	Shop          Shop
	Number        string
	IssuedAt      time.Time
	Cashier       string
	Customer      Party
	Lines         []ReceiptLine
	Payments      []ReceiptPayment
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	AmountPaid    decimal.Decimal
	ChangeDue     decimal.Decimal
	BalanceDue    decimal.Decimal
	Voided        bool
	VoidReason    string
	Notes         string
}

// TicketPart is one part used on a repair
type TicketPart struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// RepairTicket is the data bound to the repair ticket template
type RepairTicket struct {
	Shop           Shop
	Number         string
	Status         string
	ReceivedAt     time.Time
	CompletedAt    time.Time
	Customer       Party
	Device         string
	SerialNumber   string
	Accessories    string
	Condition      string
	Problem        string
	Technician     string
	TechnicianNote string
	EstimatedCost  decimal.Decimal
	Parts          []TicketPart
	PartsTotal     decimal.Decimal
	LaborCost      decimal.Decimal
	TotalCost      decimal.Decimal
	AdvancePayment decimal.Decimal
	AmountPaid     decimal.Decimal
	BalanceDue     decimal.Decimal
	PaymentStatus  string
	WarrantyClaim  bool
}

// TemplateEngine renders the built-in receipt templates with html/template
type TemplateEngine struct {
	templates *template.Template
	format    *Formatter
}

// NewTemplateEngine parses the embedded templates with the formatter's helpers
func NewTemplateEngine(format *Formatter) (*TemplateEngine, error) {
	funcMap := template.FuncMap{
		"money":    format.Money,
		"number":   format.Number,
		"date":     format.Date,
		"datetime": format.DateTime,
		"label":    format.Label,
		"positive": func(d decimal.Decimal) bool { return d.IsPositive() },
	}
	tmpl, err := template.New("receipts").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse receipt templates", err)
	}
	return &TemplateEngine{templates: tmpl, format: format}, nil
}

// Render executes the named template against data and returns the HTML
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	if e.templates.Lookup(name) == nil {
		return "", NewRenderError(ErrCodeTemplateMissing, "template not found: "+name, nil)
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}
