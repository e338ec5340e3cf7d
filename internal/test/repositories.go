package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/foodorder/internal/domain/errors"
	"github.com/polkiloo/foodorder/internal/domain/model"
	"github.com/polkiloo/foodorder/internal/domain/repository"
)

// OrderStore keeps orders in memory. The *Err fields inject failures into the
// matching operation.
type OrderStore struct {
	CountErr  error
	CreateErr error
	LinesErr  error
	StatusErr error
	DeleteErr error
	GetErr    error
	Now       func() time.Time

	mu      sync.Mutex
	orders  map[uuid.UUID]*model.Order
	Deleted []uuid.UUID
}

// NewOrderStore constructs an empty store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[uuid.UUID]*model.Order)}
}

func (s *OrderStore) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Put stores a fully built order, for test setup.
func (s *OrderStore) Put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orders == nil {
		s.orders = make(map[uuid.UUID]*model.Order)
	}
	o := order
	s.orders[o.ID] = &o
}

// Len reports how many orders are stored.
func (s *OrderStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *OrderStore) CountOrdersSince(ctx context.Context, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CountErr != nil {
		return 0, s.CountErr
	}
	n := 0
	for _, o := range s.orders {
		if !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *OrderStore) CountOrdersForPhone(ctx context.Context, phone string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CountErr != nil {
		return 0, s.CountErr
	}
	n := 0
	for _, o := range s.orders {
		if o.CustomerPhone == phone && !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *OrderStore) CreateOrder(ctx context.Context, order model.NewOrder) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if s.orders == nil {
		s.orders = make(map[uuid.UUID]*model.Order)
	}
	now := s.now()
	created := &model.Order{
		ID:            uuid.New(),
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Total:         order.Total,
		Status:        model.OrderStatusPending,
		DailyNumber:   order.DailyNumber,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.orders[created.ID] = created
	out := *created
	return &out, nil
}

func (s *OrderStore) CreateOrderLines(ctx context.Context, orderID uuid.UUID, lines []model.OrderLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LinesErr != nil {
		return s.LinesErr
	}
	o, ok := s.orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	for _, l := range lines {
		l.OrderID = orderID
		o.Lines = append(o.Lines, l)
	}
	return nil
}

func (s *OrderStore) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to model.OrderStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StatusErr != nil {
		return s.StatusErr
	}
	o, ok := s.orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if o.Status != from {
		return fmt.Errorf("%w: order is %s, not %s", domainErrors.ErrInvalidTransition, o.Status, from)
	}
	o.Status = to
	o.UpdatedAt = s.now()
	return nil
}

func (s *OrderStore) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, orderID)
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.orders[orderID]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.orders, orderID)
	return nil
}

func (s *OrderStore) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	o, ok := s.orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *o
	out.Lines = append([]model.OrderLine(nil), o.Lines...)
	return &out, nil
}

func (s *OrderStore) GetOrderHistory(ctx context.Context, phone string) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	var result []model.Order
	for _, o := range s.orders {
		if o.CustomerPhone == phone {
			out := *o
			out.Lines = append([]model.OrderLine(nil), o.Lines...)
			result = append(result, out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// NotificationStore keeps notification records in memory.
type NotificationStore struct {
	CreateErr   error
	CompleteErr error
	SelectErr   error
	Now         func() time.Time

	mu      sync.Mutex
	next    int64
	records []model.NotificationRecord
	// Completions counts CompleteNotification calls per record.
	Completions map[int64]int
}

// NewNotificationStore constructs an empty store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{Completions: make(map[int64]int)}
}

// Records returns a snapshot of stored records in insertion order.
func (s *NotificationStore) Records() []model.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.NotificationRecord(nil), s.records...)
}

// Put stores a record as is, for test setup.
func (s *NotificationStore) Put(rec model.NotificationRecord) model.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	rec.ID = s.next
	s.records = append(s.records, rec)
	return rec
}

func (s *NotificationStore) CreateNotification(ctx context.Context, rec model.NotificationRecord) (*model.NotificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.next++
	rec.ID = s.next
	rec.Status = model.DeliveryStatusPending
	if rec.Attempt < 1 {
		rec.Attempt = 1
	}
	if s.Now != nil {
		rec.CreatedAt = s.Now().UTC()
	} else {
		rec.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, rec)
	out := rec
	return &out, nil
}

func (s *NotificationStore) CompleteNotification(ctx context.Context, id int64, outcome model.DeliveryOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Completions == nil {
		s.Completions = make(map[int64]int)
	}
	s.Completions[id]++
	if s.CompleteErr != nil {
		return s.CompleteErr
	}
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if s.records[i].Status != model.DeliveryStatusPending {
			return domainErrors.ErrNotFound
		}
		s.records[i].Status = outcome.Status
		s.records[i].ProviderMessageID = outcome.ProviderMessageID
		s.records[i].ErrorCode = outcome.ErrorCode
		s.records[i].ErrorMessage = outcome.ErrorMessage
		s.records[i].SentAt = outcome.SentAt
		return nil
	}
	return domainErrors.ErrNotFound
}

func (s *NotificationStore) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.NotificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.NotificationRecord
	for _, r := range s.records {
		if r.OrderID != nil && *r.OrderID == orderID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *NotificationStore) SelectForRedelivery(ctx context.Context, maxAttempts int, since time.Time, limit int) ([]model.NotificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SelectErr != nil {
		return nil, s.SelectErr
	}
	retried := make(map[int64]bool)
	for _, r := range s.records {
		if r.RetryOf != nil {
			retried[*r.RetryOf] = true
		}
	}
	var result []model.NotificationRecord
	for _, r := range s.records {
		if len(result) >= limit {
			break
		}
		if r.Status == model.DeliveryStatusFailed && r.Attempt < maxAttempts && !r.CreatedAt.Before(since) && !retried[r.ID] {
			result = append(result, r)
		}
	}
	return result, nil
}

// StaffRepositoryStub stores staff accounts in memory.
type StaffRepositoryStub struct {
	Err error

	mu      sync.Mutex
	byLogin map[string]*model.Staff
	next    int64
}

// NewStaffRepositoryStub constructs an empty stub.
func NewStaffRepositoryStub() *StaffRepositoryStub {
	return &StaffRepositoryStub{byLogin: make(map[string]*model.Staff)}
}

// Create registers staff unless the login is taken or the stub has an explicit error.
func (s *StaffRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.byLogin == nil {
		s.byLogin = make(map[string]*model.Staff)
	}
	if _, exists := s.byLogin[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	s.next++
	staff := &model.Staff{ID: s.next, Login: login, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	s.byLogin[login] = staff
	return staff, nil
}

// GetByLogin fetches staff by login or returns not found.
func (s *StaffRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if staff, ok := s.byLogin[login]; ok {
		return staff, nil
	}
	return nil, domainErrors.ErrNotFound
}

var (
	_ repository.OrderRepository        = (*OrderStore)(nil)
	_ repository.NotificationRepository = (*NotificationStore)(nil)
	_ repository.StaffRepository        = (*StaffRepositoryStub)(nil)
)
