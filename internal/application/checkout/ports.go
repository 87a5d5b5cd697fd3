package checkout

import "time"

// IDGenerator issues row ids and external-facing order numbers.
type IDGenerator interface {
	NewID() string
	NewOrderNumber(at time.Time) string
}
