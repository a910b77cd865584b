package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/product"
)

// Publisher announces committed orders.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, o *Order) error
}

type Service struct {
	tx        Transactor
	orders    Repository
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

type ServiceOption func(*Service)

// WithPublisher enables OrderCreated events. Without it nothing is published.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(tx Transactor, orders Repository, m *metrics.Metrics, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		tx:      tx,
		orders:  orders,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder places an order in a single transaction: it reads fresh product
// snapshots, runs Place, writes the decremented stock and then the order.
// A rejection is returned as *InsufficientStockError and writes nothing.
func (s *Service) CreateOrder(ctx context.Context, items []Item) (*Order, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { s.metrics.PlacementDuration.Observe(time.Since(start).Seconds()) }()

	// postgres keeps microseconds
	placedAt := s.now().UTC().Truncate(time.Microsecond)

	var created Order
	err := s.tx.WithinTx(ctx, func(st Stores) error {
		snapshots, err := st.Products.FindActiveByIDs(ctx, productIDs(items))
		if err != nil {
			return fmt.Errorf("fetch products: %w", err)
		}

		catalog := make(map[int64]product.Product, len(snapshots))
		for _, p := range snapshots {
			catalog[p.ID] = p
		}

		placement, err := Place(items, catalog, placedAt)
		if err != nil {
			return err
		}

		for _, p := range placement.StockUpdates {
			if err := st.Products.UpdateStock(ctx, p); err != nil {
				return err
			}
		}

		o := placement.Order
		if err := st.Orders.Create(ctx, &o); err != nil {
			return err
		}
		created = o
		return nil
	})

	var stockErr *InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		s.metrics.OrdersRejected.Inc()
		logging.Info(ctx, s.logger, "order rejected", zap.Int("failed_lines", len(stockErr.Errors)))
		return nil, err
	case err != nil:
		s.metrics.OrderFailures.Inc()
		logging.Error(ctx, s.logger, "order placement failed", zap.Error(err))
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.metrics.OrdersCreated.Inc()
	logging.Info(ctx, s.logger, "order created",
		zap.Int64("order_id", created.ID),
		zap.String("total", created.Total.StringFixed(2)),
		zap.Int("lines", len(created.Lines)),
	)

	s.publishCreated(ctx, &created)
	return &created, nil
}

// publishCreated never fails the caller: the order is already committed.
func (s *Service) publishCreated(ctx context.Context, o *Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderCreated(ctx, o); err != nil {
		s.metrics.EventPublishFailures.Inc()
		logging.Warn(ctx, s.logger, "publish OrderCreated failed", zap.Int64("order_id", o.ID), zap.Error(err))
	}
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return o, nil
}

// productIDs returns the distinct product ids of items in request order.
func productIDs(items []Item) []int64 {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}
