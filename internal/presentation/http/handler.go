package httppresentation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/audit"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/checkout"
	appOrder "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/order"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/payment"
	domaudit "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/audit"
	domainOrder "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	componentHTTPHandler = "http_server"
	maxWebhookBody       = 1 << 20

	defaultSignatureHeader = "X-Razorpay-Signature"
	defaultEventIDHeader   = "X-Razorpay-Event-Id"
)

// UseCases are the operations the HTTP surface exposes.
type UseCases struct {
	Checkout      application.UseCase[checkout.CreateOrderInput, *checkout.CreateOrderResult]
	OpenGateway   application.UseCase[payment.OpenGatewayOrderInput, *payment.OpenGatewayOrderResult]
	VerifyPayment application.UseCase[payment.VerifyPaymentInput, *payment.VerifyPaymentResult]
	Webhook       application.UseCase[payment.HandleWebhookInput, *payment.HandleWebhookOutput]
	GetOrder      application.UseCase[appOrder.GetOrderInput, *appOrder.GetOrderResult]
	History       application.UseCase[audit.HistoryInput, []*domaudit.Entry]
}

type Options struct {
	SignatureHeader string
	EventIDHeader   string
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

type Handler struct {
	uc   UseCases
	opts Options
	log  observability.Logger
	tel  observability.Observability
}

func NewHandler(uc UseCases, opts Options, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	if opts.SignatureHeader == "" {
		opts.SignatureHeader = defaultSignatureHeader
	}
	if opts.EventIDHeader == "" {
		opts.EventIDHeader = defaultEventIDHeader
	}
	return &Handler{
		uc:   uc,
		opts: opts,
		log:  tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:  tel,
	}
}

// Router wires every route behind Trace → request logger → metrics → access log.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		withTrace(),
		withRequestLogger(h.log),
		withMetrics(h.tel),
		withAccessLog(h.log),
		withRecovery(h.log),
	)

	r.GET("/health", h.handleHealth)
	if h.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.opts.Metrics))
	}

	r.POST("/checkout", h.handleCheckout)

	payments := r.Group("/payments")
	{
		payments.POST("/create-order", h.handleCreateGatewayOrder)
		payments.POST("/verify", h.handleVerify)
		payments.POST("/webhook", h.handleWebhook)
	}

	orders := r.Group("/orders")
	{
		orders.GET("/:order_number", h.handleGetOrder)
		orders.GET("/:order_number/history", h.handleHistory)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})
	return r
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type checkoutItem struct {
	ProductID    string          `json:"product_id"`
	Qty          int             `json:"qty"`
	ProductTitle string          `json:"product_title"`
	Meta         json.RawMessage `json:"meta"`
}

// checkoutRequest ignores any client-sent prices; totals are computed from the catalog.
type checkoutRequest struct {
	Customer      domainOrder.Customer `json:"customer"`
	Currency      string               `json:"currency"`
	Items         []checkoutItem       `json:"items"`
	DiscountTotal decimal.Decimal      `json:"discount_total"`
	TaxTotal      decimal.Decimal      `json:"tax_total"`
	ShippingTotal decimal.Decimal      `json:"shipping_total"`
	PaymentMethod string               `json:"payment_method"`
	Cart          json.RawMessage      `json:"cart"`
	Meta          json.RawMessage      `json:"meta"`
}

func (h *Handler) handleCheckout(c *gin.Context) {
	var req checkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	lines := make([]checkout.Line, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, checkout.Line{
			ProductID:    it.ProductID,
			Qty:          it.Qty,
			ProductTitle: it.ProductTitle,
			Meta:         it.Meta,
		})
	}

	res, err := h.uc.Checkout.Execute(c.Request.Context(), checkout.CreateOrderInput{
		Customer:      req.Customer,
		Currency:      req.Currency,
		Items:         lines,
		DiscountTotal: req.DiscountTotal,
		TaxTotal:      req.TaxTotal,
		ShippingTotal: req.ShippingTotal,
		PaymentMethod: req.PaymentMethod,
		Cart:          req.Cart,
		ClientMeta:    req.Meta,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":           true,
		"order_id":     res.OrderID,
		"order_number": res.OrderNumber,
		"total":        json.Number(res.Total.StringFixed(2)),
	})
}

type createGatewayOrderRequest struct {
	OrderNumber string `json:"order_number"`
}

type gatewayOrderView struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createGatewayOrderResponse struct {
	Key         string           `json:"key"`
	OrderNumber string           `json:"orderNumber"`
	Gateway     gatewayOrderView `json:"rzp"`
}

func (h *Handler) handleCreateGatewayOrder(c *gin.Context) {
	var req createGatewayOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.uc.OpenGateway.Execute(c.Request.Context(), payment.OpenGatewayOrderInput{OrderNumber: req.OrderNumber})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, createGatewayOrderResponse{
		Key:         res.Key,
		OrderNumber: res.OrderNumber,
		Gateway: gatewayOrderView{
			OrderID:  res.GatewayOrderID,
			Amount:   res.Amount,
			Currency: res.Currency,
		},
	})
}

type verifyRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
}

func (h *Handler) handleVerify(c *gin.Context) {
	var req verifyRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.uc.VerifyPayment.Execute(c.Request.Context(), payment.VerifyPaymentInput{
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.GatewayPaymentID,
		Signature:      req.GatewaySignature,
	})
	switch {
	case errors.Is(err, payment.ErrSignatureMismatch):
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": payment.ErrSignatureMismatch.Error()})
	case err != nil:
		writeError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true, "order_number": res.OrderNumber})
	}
}

// handleWebhook reads the raw body because the signature covers the exact bytes sent.
func (h *Handler) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": codeInvalidBody})
		return
	}

	_, err = h.uc.Webhook.Execute(c.Request.Context(), payment.HandleWebhookInput{
		Body:      body,
		Signature: c.GetHeader(h.opts.SignatureHeader),
		EventID:   c.GetHeader(h.opts.EventIDHeader),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

type orderView struct {
	ID            string                    `json:"id"`
	OrderNumber   string                    `json:"order_number"`
	Status        domainOrder.Status        `json:"status"`
	PaymentStatus domainOrder.PaymentStatus `json:"payment_status"`
	Currency      string                    `json:"currency"`
	domainOrder.Totals
	Customer      domainOrder.Customer `json:"customer"`
	PaymentMethod string               `json:"payment_method,omitempty"`
	Meta          domainOrder.Meta     `json:"meta"`
	PlacedAt      *time.Time           `json:"placed_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func newOrderView(o *domainOrder.Order) orderView {
	return orderView{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Currency:      o.Currency,
		Totals:        o.Totals,
		Customer:      o.Customer,
		PaymentMethod: o.PaymentMethod,
		Meta:          o.Meta,
		PlacedAt:      o.PlacedAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (h *Handler) handleGetOrder(c *gin.Context) {
	res, err := h.uc.GetOrder.Execute(c.Request.Context(), appOrder.GetOrderInput{OrderNumber: c.Param("order_number")})
	if err != nil {
		writeError(c, err)
		return
	}

	items := res.Items
	if items == nil {
		items = []*domainOrder.Item{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "order": newOrderView(res.Order), "items": items})
}

type auditEntryView struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (h *Handler) handleHistory(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
			return
		}
		limit = n
	}

	number := c.Param("order_number")
	entries, err := h.uc.History.Execute(c.Request.Context(), audit.HistoryInput{OrderNumber: number, Limit: limit})
	if err != nil {
		writeError(c, err)
		return
	}

	views := make([]auditEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, auditEntryView{ID: e.ID, Action: e.Action, Data: e.Data, CreatedAt: e.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "order_number": number, "entries": views})
}

// bindJSON decodes the body and answers 400 invalid_body itself when it cannot.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": codeInvalidBody})
		return false
	}
	return true
}
