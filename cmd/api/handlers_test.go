package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecomkit/storefront/internal/order"
	"github.com/ecomkit/storefront/internal/payment"
	"github.com/ecomkit/storefront/internal/product"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

//
// ---------- STUBS ----------
//

type stubCatalog struct {
	mu       sync.Mutex
	products map[string]*product.Product
	err      error // injected storage failure
}

func (s *stubCatalog) GetByID(ctx context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubCatalog) Create(ctx context.Context, p *product.Product) error { return nil }
func (s *stubCatalog) List(ctx context.Context, q product.Query) ([]product.Product, error) {
	return nil, nil
}
func (s *stubCatalog) Update(ctx context.Context, p *product.Product, updatePrice bool) error {
	return nil
}
func (s *stubCatalog) Delete(ctx context.Context, id string) (bool, error) { return false, nil }

type stubCategories struct {
	mu   sync.Mutex
	cats map[string]*product.Category
}

func newStubCategories() *stubCategories {
	return &stubCategories{cats: map[string]*product.Category{}}
}

func (s *stubCategories) CreateCategory(ctx context.Context, cat *product.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *cat
	s.cats[cat.ID] = &cp
	return nil
}

func (s *stubCategories) GetCategory(ctx context.Context, id string) (*product.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.cats[id]
	if !ok {
		return nil, product.ErrCategoryNotFound
	}
	cp := *cat
	return &cp, nil
}

func (s *stubCategories) ListCategories(ctx context.Context) ([]product.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []product.Category
	for _, cat := range s.cats {
		out = append(out, *cat)
	}
	return out, nil
}

func (s *stubCategories) UpdateCategory(ctx context.Context, cat *product.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[cat.ID]; !ok {
		return product.ErrCategoryNotFound
	}
	cp := *cat
	s.cats[cat.ID] = &cp
	return nil
}

func (s *stubCategories) DeleteCategory(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[id]; !ok {
		return false, nil
	}
	delete(s.cats, id)
	return true, nil
}

// stubOrders backs both the order repository and the payment workflow's
// order store.
type stubOrders struct {
	mu      sync.Mutex
	catalog *stubCatalog
	orders  map[string]*order.Order
	items   map[string][]order.Item
}

func newStubOrders(catalog *stubCatalog) *stubOrders {
	return &stubOrders{catalog: catalog, orders: map[string]*order.Order{}, items: map[string][]order.Item{}}
}

func (s *stubOrders) Create(ctx context.Context, o *order.Order, items []order.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog.mu.Lock()
	defer s.catalog.mu.Unlock()
	for _, it := range items {
		p, ok := s.catalog.products[it.ProductID]
		if !ok || p.Stock < it.Quantity {
			return order.ErrInsufficientStock
		}
	}
	for _, it := range items {
		p := s.catalog.products[it.ProductID]
		p.Stock -= it.Quantity
		p.SalesCount += it.Quantity
	}
	if o.OrderNumber == "" {
		o.OrderNumber = "SO" + uuid.NewString()[:8]
	}
	o.CreatedAt = time.Now()
	cp := *o
	s.orders[o.ID] = &cp
	s.items[o.ID] = items
	return nil
}

func (s *stubOrders) GetByID(ctx context.Context, id string) (*order.Order, []order.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil, order.ErrNotFound
	}
	cp := *o
	return &cp, s.items[id], nil
}

func (s *stubOrders) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, order.ErrNotFound
}

func (s *stubOrders) GetItems(ctx context.Context, orderID string) ([]order.Item, error) {
	return s.items[orderID], nil
}

func (s *stubOrders) ListByUser(ctx context.Context, userID string, limit, offset int) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrders) List(ctx context.Context, f order.Filter) ([]order.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (s *stubOrders) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != order.StatusPending {
		return order.ErrInvalidState
	}
	o.Status = order.StatusCancelled
	return nil
}

func (s *stubOrders) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	if o.Status != order.StatusPending && o.Status != order.StatusPendingPayment {
		return order.ErrInvalidState
	}
	o.Status = order.StatusPaid
	o.PaymentStatus = order.PaymentPaid
	o.PaidAt = &paidAt
	return nil
}

func (s *stubOrders) MarkRefunded(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = order.StatusRefunded
	return nil
}

func (s *stubOrders) SetTracking(ctx context.Context, id, trackingNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != order.StatusPaid {
		return order.ErrInvalidState
	}
	o.Status = order.StatusShipped
	o.TrackingNumber = trackingNumber
	return nil
}

func (s *stubOrders) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	if o.Status != order.StatusPending && o.Status != order.StatusPendingPayment {
		return order.ErrInvalidState
	}
	o.Status = status
	return nil
}

func (s *stubOrders) Stats(ctx context.Context) (*order.Stats, error) {
	return &order.Stats{Total: len(s.orders), Revenue: "0"}, nil
}

type stubPayments struct {
	mu       sync.Mutex
	payments map[string]*payment.PaymentLog
	refunds  map[string]*payment.RefundLog
}

func newStubPayments() *stubPayments {
	return &stubPayments{payments: map[string]*payment.PaymentLog{}, refunds: map[string]*payment.RefundLog{}}
}

func (s *stubPayments) CreatePaymentLog(ctx context.Context, l *payment.PaymentLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	cp.CreatedAt = time.Now()
	s.payments[l.ChargeID] = &cp
	return nil
}

func (s *stubPayments) GetPaymentLogByCharge(ctx context.Context, chargeID string) (*payment.PaymentLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.payments[chargeID]
	if !ok {
		return nil, payment.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *stubPayments) LatestPaymentLog(ctx context.Context, orderID string) (*payment.PaymentLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *payment.PaymentLog
	for _, l := range s.payments {
		if l.OrderID == orderID && (latest == nil || l.CreatedAt.After(latest.CreatedAt)) {
			latest = l
		}
	}
	if latest == nil {
		return nil, payment.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *stubPayments) SucceededPaymentLog(ctx context.Context, orderID string) (*payment.PaymentLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.payments {
		if l.OrderID == orderID && l.Status == payment.LogSucceeded {
			cp := *l
			return &cp, nil
		}
	}
	return nil, payment.ErrNotFound
}

func (s *stubPayments) MarkPaymentSucceeded(ctx context.Context, chargeID, eventID string, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.payments[chargeID]
	if !ok {
		return payment.ErrNotFound
	}
	if l.Status == payment.LogSucceeded {
		return nil
	}
	l.Status = payment.LogSucceeded
	if eventID != "" {
		l.EventID = eventID
	}
	l.PaidAt = &paidAt
	return nil
}

func (s *stubPayments) EventSeen(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.payments {
		if l.EventID == eventID {
			return true, nil
		}
	}
	for _, l := range s.refunds {
		if l.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubPayments) CreateRefundLog(ctx context.Context, l *payment.RefundLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.refunds[l.RefundID] = &cp
	return nil
}

func (s *stubPayments) GetRefundLog(ctx context.Context, refundID string) (*payment.RefundLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.refunds[refundID]
	if !ok {
		return nil, payment.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *stubPayments) MarkRefundSucceeded(ctx context.Context, refundID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.refunds[refundID]
	if !ok {
		return payment.ErrNotFound
	}
	l.Status = payment.LogSucceeded
	l.EventID = eventID
	return nil
}

type stubGateway struct {
	paid bool
}

func (s *stubGateway) CreateCharge(ctx context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	return &payment.Charge{
		ID:      "ch_" + uuid.NewString()[:8],
		OrderNo: req.OrderNo,
		Channel: req.Channel,
		Amount:  req.Amount,
		Paid:    s.paid,
	}, nil
}

func (s *stubGateway) RetrieveCharge(ctx context.Context, chargeID string) (*payment.Charge, error) {
	return &payment.Charge{ID: chargeID, Paid: s.paid}, nil
}

func (s *stubGateway) CreateRefund(ctx context.Context, chargeID string, req payment.RefundRequest) (*payment.Refund, error) {
	return &payment.Refund{ID: "re_1", ChargeID: chargeID, Amount: req.Amount}, nil
}

//
// ---------- HARNESS ----------
//

type testEnv struct {
	router     *gin.Engine
	catalog    *stubCatalog
	categories *stubCategories
	orders     *stubOrders
	payments   *stubPayments
}

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

func newTestEnv(t *testing.T, userID string, gw payment.Gateway) *testEnv {
	t.Helper()
	log := zap.NewNop()

	catalog := &stubCatalog{products: map[string]*product.Product{}}
	categories := newStubCategories()
	ordersRepo := newStubOrders(catalog)
	paymentsRepo := newStubPayments()

	orderSvc := order.NewService(ordersRepo, catalog, nil, nil, log)
	paySvc := payment.NewService(paymentsRepo, ordersRepo, gw,
		payment.NewVerifier(nil, log), payment.ChannelConfig{AppID: "app_test"}, log)

	r := gin.New()
	api := r.Group("/api", withUser(userID))
	api.GET("/products/:id", getProductHandler(catalog))
	api.GET("/categories", listCategoriesHandler(categories))
	api.POST("/categories", createCategoryHandler(categories))
	api.PUT("/categories/:id", updateCategoryHandler(categories))
	api.DELETE("/categories/:id", deleteCategoryHandler(categories))
	api.POST("/orders", createOrderHandler(orderSvc))
	api.GET("/orders/:id", getOrderHandler(orderSvc))
	api.POST("/orders/:id/cancel", cancelOrderHandler(orderSvc))
	api.POST("/payments/charges", createChargeHandler(paySvc))
	api.POST("/payments/refunds", createRefundHandler(paySvc))
	api.POST("/payments/webhook", webhookHandler(paySvc))
	api.GET("/payments/verify-by-order/:order_number", verifyPaymentHandler(paySvc))

	return &testEnv{router: r, catalog: catalog, categories: categories, orders: ordersRepo, payments: paymentsRepo}
}

func (e *testEnv) seedProduct(price string, stock int) *product.Product {
	p := &product.Product{ID: uuid.NewString(), Name: "Mug", Price: price, Stock: stock}
	e.catalog.mu.Lock()
	e.catalog.products[p.ID] = p
	e.catalog.mu.Unlock()
	return p
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

//
// ---------- TESTS ----------
//

func TestCreateOrderHandler(t *testing.T) {
	env := newTestEnv(t, "user-1", &stubGateway{})
	p := env.seedProduct("19.90", 5)

	w := env.do(t, http.MethodPost, "/api/orders", gin.H{
		"items":        []gin.H{{"product_id": p.ID, "quantity": 2}},
		"contact_info": gin.H{"name": "Ana", "phone": "13800138000"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var summary order.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "39.80", summary.TotalAmount)
	assert.Equal(t, order.StatusPending, summary.Status)
	assert.NotEmpty(t, summary.OrderNumber)
}

func TestCreateOrderHandler_InsufficientStock(t *testing.T) {
	env := newTestEnv(t, "user-1", &stubGateway{})
	p := env.seedProduct("19.90", 1)

	w := env.do(t, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product_id": p.ID, "quantity": 3}},
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestCreateOrderHandler_UnknownProduct(t *testing.T) {
	env := newTestEnv(t, "user-1", &stubGateway{})

	w := env.do(t, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product_id": uuid.NewString(), "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderHandler_BadJSON(t *testing.T) {
	env := newTestEnv(t, "user-1", &stubGateway{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{nope"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelOrderHandler_Conflict(t *testing.T) {
	env := newTestEnv(t, "user-1", &stubGateway{})
	p := env.seedProduct("19.90", 5)

	w := env.do(t, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product_id": p.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var summary order.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	require.NoError(t, env.orders.MarkPaid(context.Background(), summary.ID, time.Now()))

	w = env.do(t, http.MethodPost, "/api/orders/"+summary.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestCreateChargeHandler(t *testing.T) {
	env := newTestEnv(t, "user-1", &stubGateway{})
	p := env.seedProduct("100.00", 5)

	w := env.do(t, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product_id": p.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var summary order.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	w = env.do(t, http.MethodPost, "/api/payments/charges", gin.H{
		"order_id": summary.ID,
		"channel":  payment.ChannelAlipayWap,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ch payment.Charge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ch))
	assert.Equal(t, int64(10000), ch.Amount)
	assert.Equal(t, summary.OrderNumber, ch.OrderNo)
}

func TestCreateChargeHandler_GuestCheckout(t *testing.T) {
	// No session at all: the order is created without a user id and the
	// charge for it still goes through.
	env := newTestEnv(t, "", &stubGateway{})
	p := env.seedProduct("25.00", 5)

	w := env.do(t, http.MethodPost, "/api/orders", gin.H{
		"items":        []gin.H{{"product_id": p.ID, "quantity": 1}},
		"contact_info": gin.H{"name": "Walk-in", "phone": "13800138000"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var summary order.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	w = env.do(t, http.MethodPost, "/api/payments/charges", gin.H{
		"order_id": summary.ID,
		"channel":  payment.ChannelAlipayWap,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ch payment.Charge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ch))
	assert.Equal(t, int64(2500), ch.Amount)
}

func TestCreateChargeHandler_InvalidChannel(t *testing.T) {
	env := newTestEnv(t, "user-1", &stubGateway{})
	p := env.seedProduct("100.00", 5)

	w := env.do(t, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product_id": p.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var summary order.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	w = env.do(t, http.MethodPost, "/api/payments/charges", gin.H{
		"order_id": summary.ID,
		"channel":  "stripe",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookHandler_FullPaymentFlow(t *testing.T) {
	env := newTestEnv(t, "user-1", &stubGateway{})
	p := env.seedProduct("100.00", 5)

	w := env.do(t, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product_id": p.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var summary order.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	w = env.do(t, http.MethodPost, "/api/payments/charges", gin.H{
		"order_id": summary.ID,
		"channel":  payment.ChannelWxWap,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var ch payment.Charge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ch))

	obj, _ := json.Marshal(ch)
	w = env.do(t, http.MethodPost, "/api/payments/webhook", gin.H{
		"id":   "evt_1",
		"type": payment.EventChargeSucceeded,
		"data": gin.H{"object": json.RawMessage(obj)},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), payment.ResultSuccess)

	got, _, err := env.orders.GetByID(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, got.Status)

	// Replay acknowledges without touching the order again.
	w = env.do(t, http.MethodPost, "/api/payments/webhook", gin.H{
		"id":   "evt_1",
		"type": payment.EventChargeSucceeded,
		"data": gin.H{"object": json.RawMessage(obj)},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), payment.ResultAlreadyProcessed)
}

func TestWebhookHandler_UnknownChargeIs500(t *testing.T) {
	env := newTestEnv(t, "", &stubGateway{})

	obj, _ := json.Marshal(payment.Charge{ID: "ch_missing", Paid: true})
	w := env.do(t, http.MethodPost, "/api/payments/webhook", gin.H{
		"id":   "evt_x",
		"type": payment.EventChargeSucceeded,
		"data": gin.H{"object": json.RawMessage(obj)},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestVerifyPaymentHandler(t *testing.T) {
	env := newTestEnv(t, "user-1", &stubGateway{paid: true})
	p := env.seedProduct("50.00", 5)

	w := env.do(t, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product_id": p.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var summary order.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	w = env.do(t, http.MethodPost, "/api/payments/charges", gin.H{
		"order_id": summary.ID,
		"channel":  payment.ChannelAlipayPC,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Gateway says paid even though no webhook arrived; verify settles it.
	w = env.do(t, http.MethodGet, "/api/payments/verify-by-order/"+summary.OrderNumber, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var state payment.PaymentState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, order.StatusPaid, state.OrderStatus)
}

func TestGetProductHandler_NotFoundVsFailure(t *testing.T) {
	env := newTestEnv(t, "", &stubGateway{})

	w := env.do(t, http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A storage outage is not a missing product.
	env.catalog.err = errors.New("pool closed")
	w = env.do(t, http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
}

func TestCategoryHandlers_CRUD(t *testing.T) {
	env := newTestEnv(t, "admin-1", &stubGateway{})

	w := env.do(t, http.MethodPost, "/api/categories", gin.H{
		"name":       "Figurines",
		"sort_order": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cat product.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))
	assert.NotEmpty(t, cat.ID)

	w = env.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cats []product.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "Figurines", cats[0].Name)

	sort := 5
	w = env.do(t, http.MethodPut, "/api/categories/"+cat.ID, gin.H{
		"description": "Collectible figures",
		"sort_order":  sort,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated product.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Figurines", updated.Name, "empty name keeps the old one")
	assert.Equal(t, sort, updated.SortOrder)

	w = env.do(t, http.MethodDelete, "/api/categories/"+cat.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/api/categories/"+cat.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCategoryHandler_MissingName(t *testing.T) {
	env := newTestEnv(t, "admin-1", &stubGateway{})

	w := env.do(t, http.MethodPost, "/api/categories", gin.H{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRefundHandler_NoPayment(t *testing.T) {
	env := newTestEnv(t, "user-1", &stubGateway{})
	p := env.seedProduct("50.00", 5)

	w := env.do(t, http.MethodPost, "/api/orders", gin.H{
		"items": []gin.H{{"product_id": p.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var summary order.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	w = env.do(t, http.MethodPost, "/api/payments/refunds", gin.H{"order_id": summary.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}
