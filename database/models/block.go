package models

type Block struct {
	Height    uint   `gorm:"primaryKey;autoIncrement:false" json:"height"`
	Hash      string `gorm:"size:64;uniqueIndex" json:"hash"`
	Timestamp int64  `gorm:"index" json:"timestamp"`
	TxCount   uint   `json:"tx_count"`
}
