package httppresentation

import (
	"errors"
	"net/http"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/audit"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/checkout"
	appOrder "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/order"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application/payment"

	"github.com/gin-gonic/gin"
)

const (
	codeInternal    = "internal_error"
	codeInvalidBody = "invalid_body"
)

type errorMapping struct {
	err    error
	status int
}

// errorTable is checked in order; the first sentinel found in the chain decides the status
// and its message is the code returned to the client.
var errorTable = []errorMapping{
	{checkout.ErrMissingCustomer, http.StatusBadRequest},
	{checkout.ErrNoItems, http.StatusBadRequest},
	{checkout.ErrMissingProductID, http.StatusBadRequest},
	{checkout.ErrSomeProductsNotFound, http.StatusNotFound},
	{checkout.ErrProductNotFound, http.StatusNotFound},
	{checkout.ErrProductInactive, http.StatusBadRequest},
	{checkout.ErrInsufficientStock, http.StatusConflict},
	{checkout.ErrInvalidPrice, http.StatusBadRequest},
	{checkout.ErrCatalogLookupFailed, http.StatusInternalServerError},
	{checkout.ErrOrderInsertFailed, http.StatusInternalServerError},
	{checkout.ErrItemsInsertFailed, http.StatusInternalServerError},
	{checkout.ErrStockDecrementFailed, http.StatusInternalServerError},

	{payment.ErrMissingOrderNumber, http.StatusBadRequest},
	{payment.ErrOrderNotFound, http.StatusNotFound},
	{payment.ErrAlreadyPaid, http.StatusConflict},
	{payment.ErrInvalidAmount, http.StatusBadRequest},
	{payment.ErrGatewayCreateFailed, http.StatusBadGateway},
	{payment.ErrFailedToSaveGatewayOrder, http.StatusInternalServerError},
	{payment.ErrOrderLookupFailed, http.StatusInternalServerError},
	{payment.ErrMissingFields, http.StatusBadRequest},
	{payment.ErrOrderUpdateFailed, http.StatusInternalServerError},
	{payment.ErrInvalidSignature, http.StatusBadRequest},

	{appOrder.ErrMissingOrderNumber, http.StatusBadRequest},
	{appOrder.ErrOrderNotFound, http.StatusNotFound},
	{appOrder.ErrOrderLookupFailed, http.StatusInternalServerError},

	{audit.ErrMissingOrderNumber, http.StatusBadRequest},
	{audit.ErrHistoryUnavailable, http.StatusServiceUnavailable},
}

// statusAndCode resolves err against errorTable. Unknown errors never leak their text.
func statusAndCode(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.err.Error()
		}
	}
	return http.StatusInternalServerError, codeInternal
}

// writeError records err on the gin context for the access log and writes {error: code}.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, code := statusAndCode(err)
	c.JSON(status, gin.H{"error": code})
}
