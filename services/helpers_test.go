package services

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"edpharma/logger"
	"edpharma/models"
	"edpharma/store"
	"edpharma/store/memstore"
)

const testSecret = "test-secret"

var (
	shopper = models.Principal{ID: "u1", FirstName: "John", LastName: "Doe", Email: "john@x.com", Role: models.RoleUser}
	other   = models.Principal{ID: "u2", FirstName: "Ann", LastName: "Lee", Email: "ann@x.com", Role: models.RoleUser}
	admin   = models.Principal{ID: "admin-1", Email: "admin@x.com", Role: models.RoleAdmin}
)

func testCatalog() *memstore.ProductRepository {
	return memstore.NewProductRepository(
		models.Product{ID: "p1", Name: "Paracetamol 500mg", Price: 10},
		models.Product{ID: "p2", Name: "Amoxicillin 250mg", Price: 25, RequiresPrescription: true},
		models.Product{ID: "p3", Name: "Vitamin D3", Price: 5, Pricing: []models.PriceTier{
			{Min: 1, Max: 4, Price: 5},
			{Min: 5, Max: 100, Price: 4},
		}},
	)
}

type testEnv struct {
	users    *memstore.UserRepository
	carts    *memstore.CartRepository
	orderDB  store.OrderRepository
	identity *Identity
	cart     *Cart
	orders   *Orders
	checkout *Checkout
	admin    *Admin
	notifier *recordingNotifier
}

func newTestEnv(orderDB store.OrderRepository) *testEnv {
	log := logger.NewNop()
	if orderDB == nil {
		orderDB = memstore.NewOrderRepository()
	}
	env := &testEnv{
		users:    memstore.NewUserRepository(),
		carts:    memstore.NewCartRepository(),
		orderDB:  orderDB,
		notifier: &recordingNotifier{},
	}
	pricing := DefaultPricing()
	env.identity = NewIdentity(env.users, memstore.NewTokenRevocationRepository(), testSecret, 7*24*time.Hour, []string{"Admin@x.com"}, log)
	env.cart = NewCart(env.carts, testCatalog(), pricing, log)
	env.orders = NewOrders(orderDB, env.notifier, log)
	env.checkout = NewCheckout(env.cart, env.orders, pricing, log)
	env.admin = NewAdmin(env.identity, env.orders, orderDB, ExcludeCancelled, log)

	seq := 0
	env.checkout.newID = func() string {
		seq++
		return fmt.Sprintf("ORD-%d", seq)
	}
	return env
}

var validCard = models.CardDetails{Number: "4111 1111 1111 1111", Holder: "John Doe", Expiry: "12/29", CVV: "123"}

// reachReview walks a draft through all steps with valid input.
func (env *testEnv) reachReview(p models.Principal, payment models.PaymentDetails) error {
	ctx := context.Background()
	if _, err := env.checkout.Begin(ctx, p); err != nil {
		return err
	}
	if _, err := env.checkout.UpdateContact(p, Contact{FirstName: "John", LastName: "Doe", Email: "john@x.com"}); err != nil {
		return err
	}
	if _, err := env.checkout.Advance(p); err != nil {
		return err
	}
	if _, err := env.checkout.UpdateShipping(p, models.Address{Address: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701"}); err != nil {
		return err
	}
	if _, err := env.checkout.Advance(p); err != nil {
		return err
	}
	if _, err := env.checkout.UpdatePayment(p, payment); err != nil {
		return err
	}
	_, err := env.checkout.Advance(p)
	return err
}

type recordingNotifier struct {
	created []models.Order
	changed []models.OrderStatus
}

func (n *recordingNotifier) OrderCreated(_ context.Context, o models.Order) error {
	n.created = append(n.created, o)
	return nil
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, o models.Order, from models.OrderStatus) error {
	n.changed = append(n.changed, o.Status)
	return nil
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) Get(ctx context.Context, id, ownerID string) (*models.Order, error) {
	args := m.Called(ctx, id, ownerID)
	if o, ok := args.Get(0).(*models.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, q store.OrderQuery) ([]models.Order, error) {
	args := m.Called(ctx, q)
	if o, ok := args.Get(0).([]models.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, to models.OrderStatus, at time.Time) (*models.Order, error) {
	args := m.Called(ctx, id, from, to, at)
	if o, ok := args.Get(0).(*models.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepository) Stats(ctx context.Context, excludeCancelled bool) (store.OrderStats, error) {
	args := m.Called(ctx, excludeCancelled)
	return args.Get(0).(store.OrderStats), args.Error(1)
}
