package checkout

import "errors"

// Stable error codes surfaced to API clients. Causes are attached with %w.
var (
	ErrMissingCustomer      = errors.New("missing_customer")
	ErrNoItems              = errors.New("no_items")
	ErrMissingProductID     = errors.New("missing_product_id")
	ErrSomeProductsNotFound = errors.New("some_products_not_found")
	ErrProductNotFound      = errors.New("product_not_found")
	ErrProductInactive      = errors.New("product_inactive")
	ErrInsufficientStock    = errors.New("insufficient_stock")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrCatalogLookupFailed  = errors.New("catalog_lookup_failed")
	ErrOrderInsertFailed    = errors.New("order_insert_failed")
	ErrItemsInsertFailed    = errors.New("items_insert_failed")
	ErrStockDecrementFailed = errors.New("stock_decrement_failed")
)
