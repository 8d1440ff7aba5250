// Package receipt renders printable sale receipts and repair tickets.
package receipt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/repair"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// ContentTypePDF is the media type of every rendered document
const ContentTypePDF = "application/pdf"

// Archive keeps rendered documents and hands out download links
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string) (string, time.Time, error)
}

// Document is a rendered PDF, with a download link when it was archived
type Document struct {
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Data        []byte     `json:"-"`
	URL         string     `json:"url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Layout describes the printer the documents are laid out for
type Layout struct {
	Shop         printing.Shop
	PaperWidthMM float64
	MarginMM     float64
	Timeout      time.Duration
}

// ReceiptService renders receipts for sales and tickets for repair jobs
type ReceiptService struct {
	saleRepo sales.SaleRepository
	jobRepo  repair.JobRepository
	userRepo identity.UserRepository
	engine   *printing.TemplateEngine
	renderer printing.PDFRenderer
	archive  Archive
	layout   Layout
	logger   *zap.Logger
}

// NewReceiptService creates a receipt service. archive may be nil, in which
// case documents are only returned inline.
func NewReceiptService(
	saleRepo sales.SaleRepository,
	jobRepo repair.JobRepository,
	userRepo identity.UserRepository,
	engine *printing.TemplateEngine,
	renderer printing.PDFRenderer,
	archive Archive,
	layout Layout,
	logger *zap.Logger,
) *ReceiptService {
	if layout.PaperWidthMM == 0 {
		layout.PaperWidthMM = 80
	}
	return &ReceiptService{
		saleRepo: saleRepo,
		jobRepo:  jobRepo,
		userRepo: userRepo,
		engine:   engine,
		renderer: renderer,
		archive:  archive,
		layout:   layout,
		logger:   logger,
	}
}

// SaleReceipt renders the receipt of a sale. Voided sales print with a VOID stamp.
func (s *ReceiptService) SaleReceipt(ctx context.Context, saleID uuid.UUID) (*Document, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	view := printing.SaleReceipt{
		Shop:          s.layout.Shop,
		Number:        sale.SaleNumber,
		IssuedAt:      sale.CreatedAt,
		Cashier:       s.displayName(ctx, &sale.CashierID),
		Customer:      party(sale.Customer),
		Subtotal:      sale.Subtotal,
		DiscountTotal: sale.DiscountTotal,
		TaxTotal:      sale.TaxTotal,
		GrandTotal:    sale.GrandTotal,
		AmountPaid:    sale.AmountPaid,
		ChangeDue:     sale.ChangeDue,
		BalanceDue:    sale.BalanceDue(),
		Voided:        sale.IsVoided(),
		VoidReason:    sale.VoidReason,
		Notes:         sale.Notes,
	}
	if sale.CompletedAt != nil {
		view.IssuedAt = *sale.CompletedAt
	}
	for _, item := range sale.Items {
		view.Lines = append(view.Lines, printing.ReceiptLine{
			Name:           item.ProductName,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Discount:       item.Discount,
			Tax:            item.TaxAmount,
			Total:          item.Total,
			WarrantyMonths: item.WarrantyMonths,
		})
	}
	for _, p := range sale.Payments {
		view.Payments = append(view.Payments, printing.ReceiptPayment{
			Method:    string(p.Method),
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}

	return s.produce(ctx, printing.TemplateSaleReceipt, "sales/"+sale.SaleNumber+".pdf", sale.SaleNumber, view)
}

// RepairTicket renders the intake/collection ticket of a repair job
func (s *ReceiptService) RepairTicket(ctx context.Context, jobID uuid.UUID) (*Document, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	view := printing.RepairTicket{
		Shop:           s.layout.Shop,
		Number:         job.JobNumber,
		Status:         string(job.Status),
		ReceivedAt:     job.CreatedAt,
		Customer:       party(job.Customer),
		Device:         deviceLabel(job.Device),
		SerialNumber:   job.Device.SerialNumber,
		Accessories:    job.Device.Accessories,
		Condition:      job.Device.Condition,
		Problem:        job.ProblemDescription,
		Technician:     s.displayName(ctx, job.AssignedTo),
		TechnicianNote: job.TechnicianNotes,
		EstimatedCost:  job.EstimatedCost,
		PartsTotal:     job.PartsTotal,
		LaborCost:      job.LaborCost,
		TotalCost:      job.TotalCost,
		AdvancePayment: job.AdvancePayment,
		AmountPaid:     job.AmountPaid(),
		BalanceDue:     job.BalanceDue(),
		PaymentStatus:  string(job.PaymentStatus()),
		WarrantyClaim:  job.WarrantyClaimID != nil,
	}
	if job.PickupDate != nil {
		view.CompletedAt = *job.PickupDate
	}
	for _, p := range job.Parts {
		view.Parts = append(view.Parts, printing.TicketPart{
			Name:      p.ProductName,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
			Total:     p.Total,
		})
	}

	return s.produce(ctx, printing.TemplateRepairTicket, "repairs/"+job.JobNumber+".pdf", job.JobNumber, view)
}

func (s *ReceiptService) produce(ctx context.Context, template, key, title string, view any) (*Document, error) {
	html, err := s.engine.Render(template, view)
	if err != nil {
		return nil, err
	}
	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:         html,
		PaperWidthMM: s.layout.PaperWidthMM,
		MarginMM:     s.layout.MarginMM,
		Title:        title,
		Timeout:      s.layout.Timeout,
	})
	if err != nil {
		return nil, err
	}

	doc := &Document{
		FileName:    title + ".pdf",
		ContentType: ContentTypePDF,
		Data:        result.PDFData,
	}
	if s.archive == nil {
		return doc, nil
	}

	// The PDF is still returned inline when archiving fails
	if err := s.archive.Put(ctx, key, result.PDFData, ContentTypePDF); err != nil {
		s.logger.Warn("Failed to archive document", zap.String("key", key), zap.Error(err))
		return doc, nil
	}
	url, expiresAt, err := s.archive.DownloadURL(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to presign document", zap.String("key", key), zap.Error(err))
		return doc, nil
	}
	doc.URL = url
	doc.ExpiresAt = &expiresAt
	s.logger.Info("Document archived", zap.String("key", key), zap.Int("bytes", len(result.PDFData)))
	return doc, nil
}

// displayName resolves a user for printing; unknown users print blank
func (s *ReceiptService) displayName(ctx context.Context, id *uuid.UUID) string {
	if id == nil || *id == uuid.Nil {
		return ""
	}
	user, err := s.userRepo.FindByID(ctx, *id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load user for receipt", zap.String("user_id", id.String()), zap.Error(err))
		}
		return ""
	}
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Username
}

func party(c shared.CustomerSnapshot) printing.Party {
	return printing.Party{Name: c.Name, Phone: c.Phone, Address: c.Address}
}

func deviceLabel(d repair.Device) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.Type, d.Brand, d.Model} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
