package mysqlstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/catalog"
	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"

	"github.com/shopspring/decimal"
)

type orderRecord struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)"`
	OrderNumber     string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null;default:'pending'"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxTotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ShippingTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CustomerName    string          `gorm:"type:varchar(255)"`
	CustomerEmail   string          `gorm:"type:varchar(255)"`
	CustomerPhone   string          `gorm:"type:varchar(32)"`
	CustomerAddress string          `gorm:"type:text"`
	PaymentMethod   string          `gorm:"type:varchar(32)"`
	// GatewayOrderID mirrors meta.gateway_order_id so the webhook lookup can use an index.
	GatewayOrderID string `gorm:"type:varchar(64);index"`
	Meta           string `gorm:"type:json"`
	PlacedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"index"`
}

func (orderRecord) TableName() string {
	return "orders"
}

type orderItemRecord struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)"`
	OrderID      string          `gorm:"type:varchar(36);not null;index"`
	Position     int             `gorm:"not null"`
	ProductID    string          `gorm:"type:varchar(36);not null"`
	ProductTitle string          `gorm:"type:varchar(255)"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Qty          int             `gorm:"not null"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Meta         *string         `gorm:"type:json"`
}

func (orderItemRecord) TableName() string {
	return "order_items"
}

type productRecord struct {
	ID            string   `gorm:"primaryKey;type:varchar(36)"`
	Title         string   `gorm:"type:varchar(255);not null"`
	Price         float64  `gorm:"not null"`
	DiscountPrice *float64 `gorm:"column:discountprice"`
	Stock         int      `gorm:"not null;default:0"`
	IsActive      bool     `gorm:"column:isactive;not null;default:true"`
	UpdatedAt     time.Time
}

func (productRecord) TableName() string {
	return "products"
}

func newOrderRecord(o *domain.Order) (*orderRecord, error) {
	meta, err := json.Marshal(o.Meta)
	if err != nil {
		return nil, fmt.Errorf("encode order meta: %w", err)
	}
	return &orderRecord{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		Currency:        o.Currency,
		Subtotal:        o.Subtotal,
		DiscountTotal:   o.DiscountTotal,
		TaxTotal:        o.TaxTotal,
		ShippingTotal:   o.ShippingTotal,
		Total:           o.Total,
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		CustomerPhone:   o.Customer.Phone,
		CustomerAddress: string(o.Customer.Address),
		PaymentMethod:   o.PaymentMethod,
		GatewayOrderID:  o.Meta.GatewayOrderID,
		Meta:            string(meta),
		PlacedAt:        o.PlacedAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

func (r *orderRecord) toDomain() (*domain.Order, error) {
	var meta domain.Meta
	if r.Meta != "" {
		if err := json.Unmarshal([]byte(r.Meta), &meta); err != nil {
			return nil, fmt.Errorf("decode order meta: %w", err)
		}
	}
	o := &domain.Order{
		ID:            r.ID,
		OrderNumber:   r.OrderNumber,
		Status:        domain.Status(r.Status),
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		Currency:      r.Currency,
		Totals: domain.Totals{
			Subtotal:      r.Subtotal,
			DiscountTotal: r.DiscountTotal,
			TaxTotal:      r.TaxTotal,
			ShippingTotal: r.ShippingTotal,
			Total:         r.Total,
		},
		Customer: domain.Customer{
			Name:  r.CustomerName,
			Email: r.CustomerEmail,
			Phone: r.CustomerPhone,
		},
		PaymentMethod: r.PaymentMethod,
		Meta:          meta,
		PlacedAt:      r.PlacedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.CustomerAddress != "" {
		o.Customer.Address = json.RawMessage(r.CustomerAddress)
	}
	return o, nil
}

func newOrderItemRecord(it *domain.Item, position int) *orderItemRecord {
	rec := &orderItemRecord{
		ID:           it.ID,
		OrderID:      it.OrderID,
		Position:     position,
		ProductID:    it.ProductID,
		ProductTitle: it.ProductTitle,
		UnitPrice:    it.UnitPrice,
		Qty:          it.Qty,
		LineTotal:    it.LineTotal,
	}
	if len(it.Meta) > 0 {
		m := string(it.Meta)
		rec.Meta = &m
	}
	return rec
}

func (r *orderItemRecord) toDomain() *domain.Item {
	it := &domain.Item{
		ID:           r.ID,
		OrderID:      r.OrderID,
		ProductID:    r.ProductID,
		ProductTitle: r.ProductTitle,
		UnitPrice:    r.UnitPrice,
		Qty:          r.Qty,
		LineTotal:    r.LineTotal,
	}
	if r.Meta != nil {
		it.Meta = json.RawMessage(*r.Meta)
	}
	return it
}

func (r *productRecord) toDomain() catalog.Product {
	return catalog.Product{
		ID:            r.ID,
		Title:         r.Title,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		Stock:         r.Stock,
		IsActive:      r.IsActive,
	}
}
