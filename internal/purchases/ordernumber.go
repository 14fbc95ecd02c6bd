package purchases

import (
	"crypto/rand"
	"fmt"
	"time"
)

const orderNumberCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewOrderNumber mints a public order identifier of the form
// ORD-YYYYMMDD-XXXXXX. The random suffix avoids leaking order volume;
// uniqueness is enforced by the ledger's unique index.
func NewOrderNumber(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), string(buf))
}
