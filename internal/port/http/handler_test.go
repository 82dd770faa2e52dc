package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pagewise/bookstore/cart-service/internal/domain/entity"
	"github.com/pagewise/bookstore/cart-service/internal/platform/logger"
	"github.com/pagewise/bookstore/cart-service/internal/repository"
	"github.com/pagewise/bookstore/cart-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, userID string) (*service.CartView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID, productID string, quantity int, format entity.Format) (*service.CartView, error) {
	args := m.Called(ctx, userID, productID, quantity, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockCartService) UpdateItemQuantity(ctx context.Context, userID, productID string, format entity.Format, newQuantity int) (*service.CartView, error) {
	args := m.Called(ctx, userID, productID, format, newQuantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, productID string, format entity.Format) (*service.CartView, error) {
	args := m.Called(ctx, userID, productID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CartView), args.Error(1)
}

func (m *MockCartService) ValidateStock(ctx context.Context, userID string) ([]service.StockIssue, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.StockIssue), args.Error(1)
}

func (m *MockCartService) DeactivateCart(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCartService) ListCarts(ctx context.Context, userID string) ([]entity.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Cart), args.Error(1)
}

func newTestServer(svc service.CartService) *httptest.Server {
	handler := NewCartHandler(svc, logger.NoOp{})
	return httptest.NewServer(NewRouter(handler))
}

func TestHandleGetCart(t *testing.T) {
	svc := new(MockCartService)
	view := &service.CartView{ID: "cart-1", UserID: "user1", Active: true, Items: []service.CartItemView{}, Total: 0}
	svc.On("GetCart", mock.Anything, "user1").Return(view, nil).Once()

	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/users/user1/cart")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got service.CartView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "cart-1", got.ID)
	assert.Equal(t, "user1", got.UserID)

	svc.AssertExpectations(t)
}

func TestHandleAddItem(t *testing.T) {
	svc := new(MockCartService)
	view := &service.CartView{ID: "cart-1", UserID: "user1", Active: true, Total: 19.98,
		Items: []service.CartItemView{{ProductID: "book1", Quantity: 2, Format: entity.FormatPhysical, UnitPrice: 9.99, LineTotal: 19.98}}}
	svc.On("AddItem", mock.Anything, "user1", "book1", 2, entity.FormatPhysical).Return(view, nil).Once()

	ts := newTestServer(svc)
	defer ts.Close()

	body, _ := json.Marshal(cartItemRequest{ProductID: "book1", Quantity: 2, Format: "physical"})
	resp, err := http.Post(ts.URL+"/api/users/user1/cart/items", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestHandleAddItem_InvalidQuantity(t *testing.T) {
	svc := new(MockCartService)
	svc.On("AddItem", mock.Anything, "user1", "book1", 0, entity.FormatPhysical).
		Return(nil, entity.ErrInvalidQuantity).Once()

	ts := newTestServer(svc)
	defer ts.Close()

	body, _ := json.Marshal(cartItemRequest{ProductID: "book1", Quantity: 0, Format: "physical"})
	resp, err := http.Post(ts.URL+"/api/users/user1/cart/items", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleAddItem_MalformedBody(t *testing.T) {
	svc := new(MockCartService)

	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/users/user1/cart/items", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleUpdateItem_Conflict(t *testing.T) {
	svc := new(MockCartService)
	svc.On("UpdateItemQuantity", mock.Anything, "user1", "book1", entity.FormatPhysical, 3).
		Return(nil, repository.ErrConflict).Once()

	ts := newTestServer(svc)
	defer ts.Close()

	body, _ := json.Marshal(cartItemRequest{ProductID: "book1", Quantity: 3, Format: "physical"})
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/users/user1/cart/items", bytes.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleRemoveItem(t *testing.T) {
	svc := new(MockCartService)
	view := &service.CartView{ID: "cart-1", UserID: "user1", Active: true, Items: []service.CartItemView{}}
	svc.On("RemoveItem", mock.Anything, "user1", "book1", entity.FormatDigital).Return(view, nil).Once()

	ts := newTestServer(svc)
	defer ts.Close()

	body, _ := json.Marshal(cartItemRequest{ProductID: "book1", Format: "digital"})
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/users/user1/cart/items", bytes.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestHandleValidateStock(t *testing.T) {
	svc := new(MockCartService)
	issues := []service.StockIssue{
		{ProductID: "book1", Title: "Dune", Requested: 5, Available: 3, Message: `insufficient stock for "Dune": requested 5, available 3`},
	}
	svc.On("ValidateStock", mock.Anything, "user1").Return(issues, nil).Once()

	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/users/user1/cart/stock")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got []service.StockIssue
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Available)
	assert.Equal(t, 5, got[0].Requested)
}

func TestHandleDeactivateCart(t *testing.T) {
	svc := new(MockCartService)
	svc.On("DeactivateCart", mock.Anything, "user1").Return(nil).Once()

	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/users/user1/cart/deactivate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestHandleDeactivateCart_Unavailable(t *testing.T) {
	svc := new(MockCartService)
	svc.On("DeactivateCart", mock.Anything, "user1").Return(repository.ErrUnavailable).Once()

	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/users/user1/cart/deactivate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleListCarts(t *testing.T) {
	svc := new(MockCartService)
	old := *entity.NewCart("user1")
	old.ID = "cart-old"
	old.Active = false
	current := *entity.NewCart("user1")
	current.ID = "cart-new"
	svc.On("ListCarts", mock.Anything, "user1").Return([]entity.Cart{current, old}, nil).Once()

	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/users/user1/carts")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got []entity.Cart
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "cart-new", got[0].ID)
	assert.False(t, got[1].Active)
}
