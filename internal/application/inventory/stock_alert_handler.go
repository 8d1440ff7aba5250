package inventory

import (
	"context"
	"fmt"

	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Alert types
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
)

// StockAlert is raised when a product drops to or below its minimum level
type StockAlert struct {
	ProductID       string `json:"product_id"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	CurrentQuantity int    `json:"current_quantity"`
	MinimumQuantity int    `json:"minimum_quantity"`
	AlertType       string `json:"alert_type"`
	Reference       string `json:"reference,omitempty"`
}

// StockAlertNotifier delivers stock alerts.
// Implementations can support different channels (log, email, chat).
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlertHandler watches StockAdjusted events and alerts once when a
// reduction carries a product across its minimum level
type StockAlertHandler struct {
	logger   *zap.Logger
	products catalog.ProductCatalog
	notifier StockAlertNotifier
}

// NewStockAlertHandler creates a new handler for stock adjusted events
func NewStockAlertHandler(products catalog.ProductCatalog, logger *zap.Logger) *StockAlertHandler {
	return &StockAlertHandler{
		logger:   logger,
		products: products,
		notifier: NewLoggingStockAlertNotifier(logger),
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockAlertHandler) WithNotifier(notifier StockAlertNotifier) *StockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockAdjusted}
}

// Handle processes a StockAdjustedEvent
func (h *StockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	adjusted, ok := event.(*inventory.StockAdjustedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockAdjusted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockAdjusted, event.EventType())
	}
	if adjusted.Delta >= 0 {
		return nil
	}

	product, err := h.products.FindByID(ctx, adjusted.ProductID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return nil
	}
	// alert on the crossing only, not on every sale below the line
	if adjusted.NewQuantity > product.MinStockLevel || adjusted.PreviousQuantity <= product.MinStockLevel {
		return nil
	}

	alertType := AlertTypeLowStock
	if adjusted.NewQuantity == 0 {
		alertType = AlertTypeOutOfStock
	}
	alert := StockAlert{
		ProductID:       product.ID.String(),
		SKU:             product.SKU,
		Name:            product.Name,
		CurrentQuantity: adjusted.NewQuantity,
		MinimumQuantity: product.MinStockLevel,
		AlertType:       alertType,
		Reference:       adjusted.ReferenceNumber,
	}

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// notification failure shouldn't fail the event handling
			h.logger.Error("failed to send stock alert notification",
				zap.String("product_id", alert.ProductID),
				zap.Error(err),
			)
		}
	}
	return nil
}

var _ shared.EventHandler = (*StockAlertHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_id", alert.ProductID),
		zap.String("sku", alert.SKU),
		zap.Int("current_qty", alert.CurrentQuantity),
		zap.Int("minimum_qty", alert.MinimumQuantity),
		zap.String("reference", alert.Reference),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
