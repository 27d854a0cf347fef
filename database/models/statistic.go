package models

import (
	"gorm.io/gorm"
)

// NetworkStatistic is the daily rollup written by the counting cron job.
type NetworkStatistic struct {
	gorm.Model
	Date         string `gorm:"size:6;index"`
	EndHeight    uint
	BlockCount   uint
	TxCount      uint
	TotalTxCount uint
}

// ChainStats is the live snapshot served by the stats endpoint.
type ChainStats struct {
	Height       uint  `json:"height"`
	TotalTxCount int64 `json:"total_tx_count"`
	PendingCount uint  `json:"pending_tx_count"`
}

// AddressSummary aggregates the indexed activity of one account.
type AddressSummary struct {
	Address       string `json:"address"`
	SentCount     int64  `json:"sent_count"`
	ReceivedCount int64  `json:"received_count"`
}
