package types

// Block is the block payload returned by the Dytallix node API.
type Block struct {
	Number       uint     `json:"number"`
	Hash         string   `json:"hash"`
	ParentHash   string   `json:"parent_hash"`
	Timestamp    int64    `json:"timestamp"`
	Transactions []string `json:"transactions"`
}

type NodeStats struct {
	Height      uint `json:"height"`
	MempoolSize uint `json:"mempool_size"`
	MaxMempool  uint `json:"max_mempool"`
}
