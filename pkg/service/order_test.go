package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"shopcore/pkg/database"
	"shopcore/pkg/model"
)

// memLedger mimics the per-item atomicity of the real ledger: the stock
// check and the decrement happen under one lock.
type memLedger struct {
	mu    sync.Mutex
	stock map[int]int

	reserveErr      map[int]error // forced transient failure per item
	releaseFailures int           // how many Release calls fail before succeeding
	reserveCalls    int
	releaseCalls    int
}

func newMemLedger(stock map[int]int) *memLedger {
	return &memLedger{stock: stock, reserveErr: make(map[int]error)}
}

func (m *memLedger) Reserve(ctx context.Context, itemID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reserveCalls++

	if err := m.reserveErr[itemID]; err != nil {
		return err
	}

	s, ok := m.stock[itemID]
	if !ok {
		return &model.NotFoundError{ItemID: itemID}
	}
	if s < quantity {
		return &model.InsufficientStockError{ItemID: itemID, Requested: quantity, Available: s}
	}

	m.stock[itemID] = s - quantity
	return nil
}

func (m *memLedger) Release(ctx context.Context, itemID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseCalls++

	if m.releaseFailures > 0 {
		m.releaseFailures--
		return errors.New("release failed")
	}

	if _, ok := m.stock[itemID]; !ok {
		return &model.NotFoundError{ItemID: itemID}
	}

	m.stock[itemID] += quantity
	return nil
}

func (m *memLedger) stockOf(itemID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[itemID]
}

type memOrders struct {
	mu     sync.Mutex
	orders []model.Order
	addErr error
}

func (m *memOrders) Add(ctx context.Context, orders ...model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.addErr != nil {
		return m.addErr
	}

	m.orders = append(m.orders, orders...)
	return nil
}

func (m *memOrders) GetPage(ctx context.Context, f database.OrderFilter) ([]model.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Order(nil), m.orders...), len(m.orders), nil
}

func (m *memOrders) committedQuantity(itemID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, o := range m.orders {
		if o.ItemID == itemID {
			total += o.Quantity
		}
	}
	return total
}

func newCoordinator(ledger *memLedger, orders *memOrders) *OrderGeneric {
	return &OrderGeneric{Ledger: ledger, OrderRepository: orders}
}

func TestPlaceOrder_Success(t *testing.T) {
	ledger := newMemLedger(map[int]int{1: 5, 2: 5})
	orders := &memOrders{}
	svc := newCoordinator(ledger, orders)

	userID := uuid.New()

	created, err := svc.PlaceOrder(context.Background(), userID, []model.OrderLine{
		{ItemID: 2, Quantity: 1},
		{ItemID: 1, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if len(created) != 2 {
		t.Fatalf("expected 2 order records, got %d", len(created))
	}

	// records follow the processing order: ascending item id
	if created[0].ItemID != 1 || created[1].ItemID != 2 {
		t.Errorf("expected records for items [1 2], got [%d %d]", created[0].ItemID, created[1].ItemID)
	}

	for _, o := range created {
		if o.ID == uuid.Nil {
			t.Error("expected non-empty order ID")
		}
		if o.OrderedBy != userID {
			t.Errorf("expected ordered_by %s, got %s", userID, o.OrderedBy)
		}
		if o.OrderedAt.IsZero() {
			t.Error("expected ordered_at to be set")
		}
	}

	if got := ledger.stockOf(1); got != 3 {
		t.Errorf("expected stock of item 1 to be 3, got %d", got)
	}
	if got := ledger.stockOf(2); got != 4 {
		t.Errorf("expected stock of item 2 to be 4, got %d", got)
	}

	if len(orders.orders) != 2 {
		t.Errorf("expected 2 stored orders, got %d", len(orders.orders))
	}
}

func TestPlaceOrder_Validation(t *testing.T) {
	ledger := newMemLedger(map[int]int{1: 5})
	svc := newCoordinator(ledger, &memOrders{})

	var validation *model.ValidationError

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), nil)
	if !errors.As(err, &validation) {
		t.Errorf("expected ValidationError for empty order, got: %v", err)
	}

	_, err = svc.PlaceOrder(context.Background(), uuid.New(), []model.OrderLine{{ItemID: 1, Quantity: 0}})
	if !errors.As(err, &validation) {
		t.Errorf("expected ValidationError for zero quantity, got: %v", err)
	}

	_, err = svc.PlaceOrder(context.Background(), uuid.New(), []model.OrderLine{{ItemID: 1, Quantity: -3}})
	if !errors.As(err, &validation) {
		t.Errorf("expected ValidationError for negative quantity, got: %v", err)
	}

	if ledger.reserveCalls != 0 {
		t.Errorf("expected ledger to stay untouched, got %d reserve calls", ledger.reserveCalls)
	}
}

func TestPlaceOrder_UnknownItem(t *testing.T) {
	ledger := newMemLedger(map[int]int{1: 5})
	orders := &memOrders{}
	svc := newCoordinator(ledger, orders)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), []model.OrderLine{
		{ItemID: 1, Quantity: 2},
		{ItemID: 99, Quantity: 1},
	})

	var notFound *model.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got: %v", err)
	}
	if notFound.ItemID != 99 {
		t.Errorf("expected failing item 99, got %d", notFound.ItemID)
	}

	if got := ledger.stockOf(1); got != 5 {
		t.Errorf("expected stock of item 1 restored to 5, got %d", got)
	}
	if len(orders.orders) != 0 {
		t.Errorf("expected no orders stored, got %d", len(orders.orders))
	}
}

func TestPlaceOrder_InsufficientStock_AllOrNothing(t *testing.T) {
	ledger := newMemLedger(map[int]int{1: 5, 2: 5})
	orders := &memOrders{}
	svc := newCoordinator(ledger, orders)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), []model.OrderLine{
		{ItemID: 1, Quantity: 2},
		{ItemID: 2, Quantity: 1000},
	})

	var insufficient *model.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got: %v", err)
	}
	if insufficient.ItemID != 2 || insufficient.Requested != 1000 || insufficient.Available != 5 {
		t.Errorf("unexpected failure details: %+v", insufficient)
	}

	if got := ledger.stockOf(1); got != 5 {
		t.Errorf("expected stock of item 1 restored to 5, got %d", got)
	}
	if got := ledger.stockOf(2); got != 5 {
		t.Errorf("expected stock of item 2 untouched at 5, got %d", got)
	}
	if len(orders.orders) != 0 {
		t.Errorf("expected no orders stored, got %d", len(orders.orders))
	}
}

func TestPlaceOrder_DuplicateLines(t *testing.T) {
	ledger := newMemLedger(map[int]int{1: 5})
	orders := &memOrders{}
	svc := newCoordinator(ledger, orders)

	created, err := svc.PlaceOrder(context.Background(), uuid.New(), []model.OrderLine{
		{ItemID: 1, Quantity: 2},
		{ItemID: 1, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 records, got %d", len(created))
	}

	if got := ledger.stockOf(1); got != 1 {
		t.Errorf("expected stock 1, got %d", got)
	}
}

func TestPlaceOrder_Concurrent_NoOversell(t *testing.T) {
	initialStock := 20
	totalRequests := 50

	ledger := newMemLedger(map[int]int{1: initialStock})
	orders := &memOrders{}
	svc := newCoordinator(ledger, orders)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.PlaceOrder(context.Background(), uuid.New(), []model.OrderLine{{ItemID: 1, Quantity: 1}})
			if err == nil {
				successCount.Add(1)
			} else if !errors.As(err, new(*model.InsufficientStockError)) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != int32(initialStock) {
		t.Errorf("expected %d successes, got %d", initialStock, successCount.Load())
	}
	if got := ledger.stockOf(1); got != 0 {
		t.Errorf("expected stock 0, got %d", got)
	}

	// conservation: everything taken from the ledger is accounted for by orders
	if got := orders.committedQuantity(1); got != initialStock {
		t.Errorf("expected %d committed units, got %d", initialStock, got)
	}
}

func TestPlaceOrder_Concurrent_TwoForThree(t *testing.T) {
	// item with stock 5, two concurrent requests for 3 units each:
	// exactly one can win
	ledger := newMemLedger(map[int]int{1: 5})
	orders := &memOrders{}
	svc := newCoordinator(ledger, orders)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if _, err := svc.PlaceOrder(context.Background(), uuid.New(), []model.OrderLine{{ItemID: 1, Quantity: 3}}); err == nil {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 success, got %d", successCount.Load())
	}
	if got := ledger.stockOf(1); got != 2 {
		t.Errorf("expected stock 2, got %d", got)
	}
}

func TestPlaceOrder_Concurrent_MultiItem_Conservation(t *testing.T) {
	initialStock := 30
	totalRequests := 40

	ledger := newMemLedger(map[int]int{1: initialStock, 2: initialStock})
	orders := &memOrders{}
	svc := newCoordinator(ledger, orders)

	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			// half the requests name the items in reverse order; the
			// coordinator must still acquire them in the same sequence
			lines := []model.OrderLine{{ItemID: 1, Quantity: 1}, {ItemID: 2, Quantity: 2}}
			if i%2 == 1 {
				lines = []model.OrderLine{{ItemID: 2, Quantity: 2}, {ItemID: 1, Quantity: 1}}
			}

			_, err := svc.PlaceOrder(context.Background(), uuid.New(), lines)
			if err != nil && !errors.As(err, new(*model.InsufficientStockError)) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()

	for _, itemID := range []int{1, 2} {
		remaining := ledger.stockOf(itemID)
		committed := orders.committedQuantity(itemID)

		if remaining < 0 {
			t.Errorf("stock of item %d went negative: %d", itemID, remaining)
		}
		if remaining+committed != initialStock {
			t.Errorf("item %d: %d remaining + %d committed != %d initial", itemID, remaining, committed, initialStock)
		}
	}

	// all-or-nothing: records always come in pairs
	orders.mu.Lock()
	defer orders.mu.Unlock()
	if len(orders.orders)%2 != 0 {
		t.Errorf("expected an even number of records, got %d", len(orders.orders))
	}
}

func TestPlaceOrder_CommitFailure_RetryableAndRepeatable(t *testing.T) {
	ledger := newMemLedger(map[int]int{1: 5, 2: 5})
	orders := &memOrders{addErr: errors.New("connection reset")}
	svc := newCoordinator(ledger, orders)

	userID := uuid.New()
	lines := []model.OrderLine{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}}

	_, err := svc.PlaceOrder(context.Background(), userID, lines)

	var retryable *model.RetryableError
	if !errors.As(err, &retryable) {
		t.Fatalf("expected RetryableError, got: %v", err)
	}

	if got := ledger.stockOf(1); got != 5 {
		t.Errorf("expected stock of item 1 restored to 5, got %d", got)
	}
	if got := ledger.stockOf(2); got != 5 {
		t.Errorf("expected stock of item 2 restored to 5, got %d", got)
	}
	if len(orders.orders) != 0 {
		t.Errorf("expected no orders stored, got %d", len(orders.orders))
	}

	// the failure was fully rolled back, so resubmitting behaves like a
	// fresh request
	orders.mu.Lock()
	orders.addErr = nil
	orders.mu.Unlock()

	created, err := svc.PlaceOrder(context.Background(), userID, lines)
	if err != nil {
		t.Fatalf("expected retry to succeed, got: %v", err)
	}
	if len(created) != 2 {
		t.Errorf("expected 2 records, got %d", len(created))
	}
	if got := ledger.stockOf(1); got != 3 {
		t.Errorf("expected stock of item 1 to be 3, got %d", got)
	}
}

func TestPlaceOrder_TransientReserveError(t *testing.T) {
	ledger := newMemLedger(map[int]int{1: 5, 2: 5})
	ledger.reserveErr[2] = errors.New("i/o timeout")
	orders := &memOrders{}
	svc := newCoordinator(ledger, orders)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), []model.OrderLine{
		{ItemID: 1, Quantity: 2},
		{ItemID: 2, Quantity: 1},
	})

	var retryable *model.RetryableError
	if !errors.As(err, &retryable) {
		t.Fatalf("expected RetryableError, got: %v", err)
	}

	if got := ledger.stockOf(1); got != 5 {
		t.Errorf("expected stock of item 1 restored to 5, got %d", got)
	}
	if len(orders.orders) != 0 {
		t.Errorf("expected no orders stored, got %d", len(orders.orders))
	}
}

func TestPlaceOrder_RollbackRetriesFailedRelease(t *testing.T) {
	ledger := newMemLedger(map[int]int{1: 5, 2: 5})
	ledger.releaseFailures = 1 // first release attempt fails, retry succeeds
	orders := &memOrders{}
	svc := newCoordinator(ledger, orders)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), []model.OrderLine{
		{ItemID: 1, Quantity: 2},
		{ItemID: 2, Quantity: 1000},
	})

	if !errors.As(err, new(*model.InsufficientStockError)) {
		t.Fatalf("expected InsufficientStockError, got: %v", err)
	}

	if got := ledger.stockOf(1); got != 5 {
		t.Errorf("expected stock of item 1 restored to 5 despite failed release attempt, got %d", got)
	}

	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	if ledger.releaseCalls < 2 {
		t.Errorf("expected the failed release to be retried, got %d calls", ledger.releaseCalls)
	}
}
