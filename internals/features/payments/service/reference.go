package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenReference mints a fresh transaction reference:
// <prefix>-<yyyymmdd-hhmmss>-<8 uppercase uuid chars>. The uuid fragment
// is crypto-random; a unique index on the column is the backstop.
func GenReference(prefix string) string {
	now := time.Now().Format("20060102-150405")
	u := uuid.New().String()
	if len(u) > 8 {
		u = u[:8]
	}
	return prefix + "-" + now + "-" + strings.ToUpper(u)
}

// ComputePayable applies the single fixed rounding rule: round-half-up
// on the percentage product, in whole naira. Fixed at initiation, never
// recomputed.
func ComputePayable(total int64, percent int) int64 {
	if total < 0 || percent < 0 {
		return 0
	}
	return (total*int64(percent) + 50) / 100
}
