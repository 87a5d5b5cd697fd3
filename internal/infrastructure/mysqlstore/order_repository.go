package mysqlstore

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"

	"gorm.io/gorm"
)

// OrderRepository stores orders and order_items rows. Each method is a single statement;
// multi-row consistency is the caller's job.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	rec, err := newOrderRecord(order)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) InsertItems(ctx context.Context, items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	recs := make([]*orderItemRecord, 0, len(items))
	for i, it := range items {
		recs = append(recs, newOrderItemRecord(it, i))
	}
	if err := r.db.WithContext(ctx).Create(&recs).Error; err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).Delete(&orderRecord{}).Error; err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (r *OrderRepository) DeleteItems(ctx context.Context, orderID string) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&orderItemRecord{}).Error; err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var rec orderRecord
	err := r.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&rec).Error
	if err != nil {
		return nil, lookupError(err)
	}
	return rec.toDomain()
}

// FindByGatewayOrderID returns the most recently updated order bound to the gateway order.
func (r *OrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	var rec orderRecord
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).
		Order("updated_at DESC").
		First(&rec).Error
	if err != nil {
		return nil, lookupError(err)
	}
	return rec.toDomain()
}

func (r *OrderRepository) Items(ctx context.Context, orderID string) ([]*domain.Item, error) {
	var recs []orderItemRecord
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("position ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	items := make([]*domain.Item, 0, len(recs))
	for i := range recs {
		items = append(items, recs[i].toDomain())
	}
	return items, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	rec, err := newOrderRecord(order)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", order.ID).Updates(map[string]any{
		"status":           rec.Status,
		"payment_status":   rec.PaymentStatus,
		"gateway_order_id": rec.GatewayOrderID,
		"meta":             rec.Meta,
		"placed_at":        rec.PlacedAt,
		"updated_at":       rec.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("update order: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows for a no-op write, so confirm the row exists.
	var count int64
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("find order: %w", err)
}
