package handler

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

type MockProducts struct {
	mock.Mock
}

func (m *MockProducts) GetProductByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*catalog.Product, error) {
	args := m.Called(ctx, storeID, id, showHidden)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProducts) GetHomePageProducts(ctx context.Context, storeID uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProducts) SearchProducts(ctx context.Context, storeID uuid.UUID, req catalogapp.SearchProductsRequest) (shared.Paginated[catalogapp.ProductResponse], error) {
	args := m.Called(ctx, storeID, req)
	return args.Get(0).(shared.Paginated[catalogapp.ProductResponse]), args.Error(1)
}

type MockProductTransfer struct {
	mock.Mock
}

func (m *MockProductTransfer) ExportProductsToXlsx(ctx context.Context, storeID uuid.UUID, w io.Writer) (int, error) {
	args := m.Called(ctx, storeID, w)
	if data, ok := args.Get(2).([]byte); ok {
		_, _ = w.Write(data)
	}
	return args.Int(0), args.Error(1)
}

func (m *MockProductTransfer) ImportProductsFromXlsx(ctx context.Context, storeID uuid.UUID, r io.Reader) (*catalogapp.ImportResult, error) {
	args := m.Called(ctx, storeID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ImportResult), args.Error(1)
}

func TestCatalogHandler_SearchProducts(t *testing.T) {
	t.Run("maps the query and hides unpublished products", func(t *testing.T) {
		products := new(MockProducts)
		h := NewCatalogHandler(nil, nil, products, nil)
		categoryID := uuid.New()
		products.On("SearchProducts", mock.Anything, testStoreID, mock.MatchedBy(func(req catalogapp.SearchProductsRequest) bool {
			return req.Keywords == "shirt" && !req.ShowHidden &&
				len(req.CategoryIDs) == 1 && req.CategoryIDs[0] == categoryID &&
				req.PriceMin != nil && req.PriceMin.Equal(decimal.NewFromInt(10)) &&
				req.PriceMax == nil && req.OrderBy == "price_asc"
		})).Return(shared.NewPaginated([]catalogapp.ProductResponse{{Name: "Blue shirt"}}, 1, 1, 20), nil)

		c, w := newTestContext(http.MethodGet, "/api/v1/products?q=shirt&price_min=10&order_by=price_asc&category_id="+categoryID.String(), nil)
		h.SearchProducts(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var items []catalogapp.ProductResponse
		resp := decodeData(t, w, &items)
		require.Len(t, items, 1)
		require.NotNil(t, resp.Meta)
		assert.EqualValues(t, 1, resp.Meta.Total)
	})

	t.Run("unknown sort order", func(t *testing.T) {
		products := new(MockProducts)
		h := NewCatalogHandler(nil, nil, products, nil)

		c, w := newTestContext(http.MethodGet, "/api/v1/products?order_by=random", nil)
		h.SearchProducts(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		products.AssertNotCalled(t, "SearchProducts", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("short keywords are a domain error", func(t *testing.T) {
		products := new(MockProducts)
		h := NewCatalogHandler(nil, nil, products, nil)
		products.On("SearchProducts", mock.Anything, testStoreID, mock.Anything).
			Return(shared.Paginated[catalogapp.ProductResponse]{}, shared.NewDomainError("SEARCH_TERM_TOO_SHORT", "Search term minimum length is 3 characters"))

		c, w := newTestContext(http.MethodGet, "/api/v1/products?q=ab", nil)
		h.SearchProducts(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestCatalogAdminHandler_ExportProducts(t *testing.T) {
	transfer := new(MockProductTransfer)
	h := NewCatalogAdminHandler(nil, nil, nil, nil, transfer)
	workbook := []byte("PK\x03\x04workbook")
	transfer.On("ExportProductsToXlsx", mock.Anything, testStoreID, mock.Anything).Return(2, nil, workbook)

	c, w := newTestContext(http.MethodGet, "/api/v1/admin/export/products", nil)
	h.ExportProducts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), productExportFilename)
	assert.Equal(t, workbook, w.Body.Bytes())
}

func TestCatalogAdminHandler_ImportProducts(t *testing.T) {
	t.Run("imports the uploaded workbook", func(t *testing.T) {
		transfer := new(MockProductTransfer)
		h := NewCatalogAdminHandler(nil, nil, nil, nil, transfer)
		transfer.On("ImportProductsFromXlsx", mock.Anything, testStoreID, mock.Anything).
			Return(&catalogapp.ImportResult{Created: 3, Updated: 1}, nil)

		c, w := newUploadContext(t, "file", "products.xlsx", []byte("PK\x03\x04workbook"))
		h.ImportProducts(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var result catalogapp.ImportResult
		decodeData(t, w, &result)
		assert.Equal(t, 3, result.Created)
		assert.Equal(t, 1, result.Updated)
	})

	t.Run("missing file", func(t *testing.T) {
		transfer := new(MockProductTransfer)
		h := NewCatalogAdminHandler(nil, nil, nil, nil, transfer)

		c, w := newUploadContext(t, "upload", "products.xlsx", []byte("PK"))
		h.ImportProducts(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		transfer.AssertNotCalled(t, "ImportProductsFromXlsx", mock.Anything, mock.Anything, mock.Anything)
	})
}
