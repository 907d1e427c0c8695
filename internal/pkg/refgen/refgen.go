// Package refgen generates user-facing reference numbers for orders and
// bookings, distinct from their primary keys.
package refgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// New returns "<PREFIX>-<millis base36>-<4 random bytes hex>", e.g.
// ORD-LX2E9K1A-9F3C01AB. The timestamp keeps numbers roughly sortable;
// the random suffix makes same-millisecond collisions negligible. Storage
// still enforces uniqueness with a unique index.
func New(prefix string) string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// nanosecond entropy rather than returning an empty suffix.
		return fmt.Sprintf("%s-%s-%08X", prefix, ts, time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, ts, strings.ToUpper(hex.EncodeToString(buf)))
}
