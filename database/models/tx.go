package models

const (
	ResultPending uint8 = 0
	ResultSuccess uint8 = 1
	ResultFailed  uint8 = 2
)

type Transaction struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	Hash      string `gorm:"size:64;uniqueIndex" json:"hash"`
	Height    uint   `gorm:"index" json:"height"`
	FromAddr  string `gorm:"size:90;index" json:"from"`
	ToAddr    string `gorm:"size:90;index" json:"to"`
	Amount    string `gorm:"size:80" json:"amount"`
	Denom     string `gorm:"size:16" json:"denom"`
	Timestamp int64  `gorm:"index" json:"timestamp"`
	Result    uint8  `json:"result"`
	GasUsed   uint64 `json:"gas_used"`
}

// Confirmed reports whether the transaction has been included in a block.
// Height zero means the transaction is still in the mempool.
func (tx *Transaction) Confirmed() bool {
	return tx.Height > 0
}

func (tx *Transaction) Status() string {
	switch tx.Result {
	case ResultPending:
		return "pending"
	case ResultSuccess:
		return "success"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}
