package payment

import "errors"

// Stable error codes surfaced to API clients.
var (
	ErrMissingOrderNumber       = errors.New("missing_order_number")
	ErrOrderNotFound            = errors.New("order_not_found")
	ErrOrderLookupFailed        = errors.New("order_lookup_failed")
	ErrAlreadyPaid              = errors.New("already_paid")
	ErrInvalidAmount            = errors.New("invalid_amount")
	ErrGatewayCreateFailed      = errors.New("gateway_create_failed")
	ErrFailedToSaveGatewayOrder = errors.New("failed_to_save_gateway_order")

	ErrMissingFields     = errors.New("missing_fields")
	ErrSignatureMismatch = errors.New("signature_mismatch")
	ErrOrderUpdateFailed = errors.New("order_update_failed")

	ErrInvalidSignature = errors.New("invalid_signature")
)
