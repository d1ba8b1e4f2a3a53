package storage

import (
	"fmt"
	"time"

	"github.com/uhyunpark/midmarket/pkg/app/core/market"
)

// Journal key schema:
//
//   tx:<marketID>:<leg>:<unix-nanos>:<txID> → Transaction (JSON)
//
// unix-nanos is zero-padded to 20 digits so a prefix scan walks records
// in settlement order. Records sharing a timestamp fall back to id order.
const prefixTx = "tx:"

func txKey(marketID string, leg market.Leg, ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%020d:%s", prefixTx, marketID, leg, ts.UnixNano(), id))
}

// txPrefix covers every record of one leg in one market.
func txPrefix(marketID string, leg market.Leg) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:", prefixTx, marketID, leg))
}

// keyUpperBound returns the exclusive upper bound for a prefix scan
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil // no upper bound
}
