package domain

import "time"

// LowStockAlert is the wire contract shared with the alert consumer. The JSON
// field names are part of that contract and must not drift.
type LowStockAlert struct {
	ProductID  int64     `json:"ProductId"`
	StockLevel int       `json:"StockLevel"`
	Threshold  int       `json:"Threshold"`
	AlertTime  time.Time `json:"AlertTime"`
}
