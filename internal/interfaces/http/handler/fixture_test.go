package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopdesk/backend/internal/application/catalog"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
	inventoryapp "github.com/shopdesk/backend/internal/application/inventory"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
	"github.com/shopdesk/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type apiFixture struct {
	db        *gorm.DB
	scope     *persistence.GormTransactionScope
	publisher *testutil.RecordingPublisher
	user      *identity.User
	products  *catalogapp.ProductService
	stock     *inventoryapp.StockService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	publisher := &testutil.RecordingPublisher{}

	user, err := identity.NewUser("clerk", "Front Desk", "password123")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(db).Save(context.Background(), user))

	return &apiFixture{
		db:        db,
		scope:     scope,
		publisher: publisher,
		user:      user,
		products:  catalogapp.NewProductService(scope, persistence.NewGormProductRepository(db), publisher, zap.NewNop()),
		stock: inventoryapp.NewStockService(
			scope,
			persistence.NewGormStockRecordRepository(db),
			persistence.NewGormStockAdjustmentRepository(db),
			persistence.NewGormProductRepository(db),
			publisher,
			zap.NewNop(),
		),
	}
}

func (f *apiFixture) principal() *identityapp.Principal {
	return &identityapp.Principal{User: f.user}
}

// product creates a product without warranty cover, optionally stocked
func (f *apiFixture) product(t *testing.T, sku string, price int64, stock int) *catalogapp.ProductResponse {
	t.Helper()
	ctx := context.Background()
	p, err := f.products.Create(ctx, catalogapp.CreateProductInput{
		SKU: sku,
		ProductInput: catalogapp.ProductInput{
			Name:         "Product " + sku,
			SellingPrice: decimal.NewFromInt(price),
			CostPrice:    decimal.NewFromInt(price / 2),
			WarrantyType: "NONE",
		},
	})
	require.NoError(t, err)
	if stock > 0 {
		_, err = f.stock.Adjust(ctx, f.user.ID, inventoryapp.AdjustStockInput{
			ProductID: p.ID,
			Type:      "PURCHASE",
			Quantity:  stock,
		})
		require.NoError(t, err)
	}
	return p
}

// newEngine returns a router that tags every request with a request id and,
// when principal is non-nil, authenticates it as that principal
func newEngine(principal *identityapp.Principal) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.RequestIDKey, "req-test")
		if principal != nil {
			c.Set(middleware.PrincipalKey, principal)
		}
		c.Next()
	})
	return r
}

func perform(t *testing.T, r http.Handler, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope is the decoded response envelope with data left raw
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *dto.ErrorInfo {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	return env.Error
}

func uuidPath(prefix string, id uuid.UUID, suffix string) string {
	return prefix + id.String() + suffix
}
