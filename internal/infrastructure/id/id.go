package id

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const orderNumberPrefix = "SM"

// Generator issues row ids and customer-facing order numbers.
type Generator struct{}

func NewGenerator() Generator {
	return Generator{}
}

func (Generator) NewID() string {
	return uuid.NewString()
}

// NewOrderNumber formats SMyymmdd-XXXXXXXX with eight upper-case hex chars of a fresh UUID.
func (Generator) NewOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return orderNumberPrefix + at.UTC().Format("060102") + "-" + suffix
}
