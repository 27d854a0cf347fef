package models

import (
	"gorm.io/gorm"
)

const (
	LastIndexedBlockNumKey = "last_indexed_block_num"
	IndexingStartDateKey   = "indexing_start_date"
	CountedDateKey         = "counted_date"
)

type Meta struct {
	gorm.Model
	Key string `gorm:"unique"`
	Val string
}
