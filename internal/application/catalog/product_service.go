package catalog

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	scope       appshared.TransactionScope
	productRepo catalog.ProductRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	scope appshared.TransactionScope,
	productRepo catalog.ProductRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		scope:       scope,
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*ProductResponse, error) {
	product, err := catalog.NewProduct(input.SKU, input.attributes())
	if err != nil {
		return nil, err
	}

	var recorder appshared.EventRecorder
	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		exists, err := repos.Products().ExistsBySKU(ctx, product.SKU)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("SKU_EXISTS", "Product with this SKU already exists")
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		recorder.Collect(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("sku", product.SKU))
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID returns a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetBySKU returns a product by SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (shared.Paginated[ProductResponse], error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()
	products, total, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		Filter:   f,
		Category: filter.Category,
		IsActive: filter.IsActive,
	})
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	items := make([]ProductResponse, len(products))
	for i, p := range products {
		items[i] = ToProductResponse(p)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// Update replaces a product's editable fields
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductResponse, error) {
	product, err := s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.Update(input.attributes())
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Product updated", zap.String("product_id", id.String()))
	resp := ToProductResponse(product)
	return &resp, nil
}

// Activate makes a product sellable again
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.Activate()
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Deactivate removes a product from sale. Stock and history are kept.
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.Deactivate()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Product deactivated", zap.String("product_id", id.String()))
	resp := ToProductResponse(product)
	return &resp, nil
}

func (s *ProductService) mutate(ctx context.Context, id uuid.UUID, fn func(p *catalog.Product) error) (*catalog.Product, error) {
	var (
		recorder appshared.EventRecorder
		result   *catalog.Product
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			product, err := repos.Products().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if err := fn(product); err != nil {
				return err
			}
			if err := repos.Products().Save(ctx, product); err != nil {
				return err
			}
			recorder.Collect(product)
			result = product
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)
	return result, nil
}
