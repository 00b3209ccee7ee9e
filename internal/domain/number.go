package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Human-readable reference numbers carry a 6-digit random suffix drawn from a
// UUID. The suffix alone does not guarantee uniqueness; repositories retry on
// the database unique constraint when a collision does happen.

// NewOrderNumber formats ORD-<year>-<6 digits>.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%06d", now.Year(), numberSuffix())
}

// NewPayoutNumber formats PAY-<year>-<6 digits>.
func NewPayoutNumber(now time.Time) string {
	return fmt.Sprintf("PAY-%d-%06d", now.Year(), numberSuffix())
}

func numberSuffix() uint32 {
	id := uuid.New()
	v := uint32(id[0])<<24 | uint32(id[1])<<16 | uint32(id[2])<<8 | uint32(id[3])
	return v % 1000000
}
