package types

const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type Transaction struct {
	Hash      string `json:"hash"`
	Height    uint   `json:"height"`
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Denom     string `json:"denom"`
	Status    string `json:"status"`
	GasUsed   uint64 `json:"gas_used"`
	Timestamp int64  `json:"timestamp"`
}

func ConvertResult(status string) uint8 {
	switch status {
	case StatusPending:
		return 0
	case StatusSuccess:
		return 1
	case StatusFailed:
		return 2
	default:
		return 255
	}
}
