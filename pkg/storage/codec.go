package storage

import (
	"encoding/json"

	"github.com/uhyunpark/midmarket/pkg/app/core/market"
)

func encodeTx(tx market.Transaction) ([]byte, error) {
	return json.Marshal(tx)
}

func decodeTx(b []byte) (market.Transaction, error) {
	var tx market.Transaction
	err := json.Unmarshal(b, &tx)
	return tx, err
}
