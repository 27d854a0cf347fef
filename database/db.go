package database

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"dytallix-explorer/database/models"
	"dytallix-explorer/net"
)

const statsRefreshInterval = 10 * time.Second

type Config struct {
	Host      string `toml:"host"`
	DB        string `toml:"db"`
	User      string `toml:"user"`
	Password  string `toml:"password"`
	StartDate string `toml:"start_date"`
}

// IndexDB is the indexed view of the chain. Writes are idempotent so the
// indexer can replay a height after a crash without duplicating rows.
type IndexDB struct {
	db *gorm.DB

	lastIndexedBlockNum  uint
	lastIndexedBlockTime int64

	statsLock  sync.RWMutex
	chainStats models.ChainStats

	countedDate string

	loopWG sync.WaitGroup
	quitCh chan struct{}

	logger *zap.SugaredLogger
}

func New(cfg *Config) *IndexDB {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.User, cfg.Password, cfg.Host, cfg.DB)
	db, dbErr := gorm.Open(mysql.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if dbErr != nil {
		panic(dbErr)
	}

	dbErr = db.AutoMigrate(&models.Block{}, &models.Transaction{}, &models.Meta{}, &models.NetworkStatistic{})
	if dbErr != nil {
		panic(dbErr)
	}

	startDate := cfg.StartDate
	if len(startDate) == 0 {
		startDate = generateDate(time.Now().Unix())
	}

	var lastIndexedMeta models.Meta
	db.Where(models.Meta{Key: models.LastIndexedBlockNumKey}).Attrs(models.Meta{Val: "0"}).FirstOrCreate(&lastIndexedMeta)

	var countedDateMeta models.Meta
	db.Where(models.Meta{Key: models.CountedDateKey}).Attrs(models.Meta{Val: startDate}).FirstOrCreate(&countedDateMeta)

	var startDateMeta models.Meta
	db.Where(models.Meta{Key: models.IndexingStartDateKey}).Attrs(models.Meta{Val: startDate}).FirstOrCreate(&startDateMeta)

	indexDB := &IndexDB{
		db: db,

		lastIndexedBlockNum: parseUint(lastIndexedMeta.Val),
		countedDate:         countedDateMeta.Val,

		quitCh: make(chan struct{}),
		logger: zap.S().Named("[db]"),
	}

	var lastBlock models.Block
	if err := db.Where(models.Block{Height: indexDB.lastIndexedBlockNum}).First(&lastBlock).Error; err == nil {
		indexDB.lastIndexedBlockTime = lastBlock.Timestamp
	}

	return indexDB
}

func (db *IndexDB) Start() {
	db.RefreshChainStats()

	db.loopWG.Add(1)
	go db.statsRefreshLoop()
}

func (db *IndexDB) Close() {
	close(db.quitCh)
	db.loopWG.Wait()

	underDB, _ := db.db.DB()
	_ = underDB.Close()
}

func (db *IndexDB) Report() {
	db.logger.Infof("Status report, last indexed block [%d](%s), total txs [%s]",
		db.GetLastIndexedBlockNum(),
		time.Unix(db.GetLastIndexedBlockTime(), 0).Format("2006-01-02 15:04:05"),
		humanize.Comma(db.GetChainStats().TotalTxCount))
}

func (db *IndexDB) GetLastIndexedBlockNum() uint {
	db.statsLock.RLock()
	defer db.statsLock.RUnlock()

	return db.lastIndexedBlockNum
}

func (db *IndexDB) GetLastIndexedBlockTime() int64 {
	db.statsLock.RLock()
	defer db.statsLock.RUnlock()

	return db.lastIndexedBlockTime
}

// InitStartBlock sets the resume point before the first indexed block.
// It is a no-op once any block has been indexed.
func (db *IndexDB) InitStartBlock(height uint) {
	db.statsLock.Lock()
	defer db.statsLock.Unlock()

	if db.lastIndexedBlockNum != 0 {
		return
	}

	db.lastIndexedBlockNum = height
	db.db.Model(&models.Meta{}).Where(models.Meta{Key: models.LastIndexedBlockNumKey}).Update("val", fmt.Sprint(height))
}

// SaveBlock stores one block with its transactions and advances the resume
// point. Conflicting rows are left untouched, replays are harmless.
func (db *IndexDB) SaveBlock(block *models.Block, transactions []*models.Transaction) {
	result := db.db.Clauses(clause.OnConflict{DoNothing: true}).Create(block)
	if result.Error != nil {
		db.logger.Warnf("Save block [%d] error: [%s]", block.Height, result.Error.Error())
		return
	}

	if len(transactions) > 0 {
		result = db.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(transactions, 200)
		if result.Error != nil {
			db.logger.Warnf("Save block [%d] txs error: [%s]", block.Height, result.Error.Error())
			return
		}
	}

	db.db.Model(&models.Meta{}).Where(models.Meta{Key: models.LastIndexedBlockNumKey}).Update("val", fmt.Sprint(block.Height))

	db.statsLock.Lock()
	db.lastIndexedBlockNum = block.Height
	db.lastIndexedBlockTime = block.Timestamp
	db.chainStats.Height = block.Height
	db.chainStats.TotalTxCount += int64(len(transactions))
	db.statsLock.Unlock()
}

func (db *IndexDB) GetBlocks(limit, offset int) []*models.Block {
	var blocks []*models.Block
	db.db.Order("height DESC").Limit(limit).Offset(offset).Find(&blocks)
	return blocks
}

func (db *IndexDB) GetBlockByHeight(height uint) *models.Block {
	var block models.Block
	if err := db.db.Where(models.Block{Height: height}).First(&block).Error; err != nil {
		return nil
	}
	return &block
}

func (db *IndexDB) GetBlockByHash(hash string) *models.Block {
	var block models.Block
	if err := db.db.Where("hash = ?", hash).First(&block).Error; err != nil {
		return nil
	}
	return &block
}

func (db *IndexDB) GetTransactions(limit, offset int) []*models.Transaction {
	var txs []*models.Transaction
	db.db.Order("timestamp DESC, id DESC").Limit(limit).Offset(offset).Find(&txs)
	return txs
}

func (db *IndexDB) GetTransactionsByAddress(address string, limit, offset int) []*models.Transaction {
	var txs []*models.Transaction
	db.db.Where("from_addr = ? OR to_addr = ?", address, address).
		Order("timestamp DESC, id DESC").Limit(limit).Offset(offset).Find(&txs)
	return txs
}

func (db *IndexDB) GetTransactionsByHeight(height uint) []*models.Transaction {
	var txs []*models.Transaction
	db.db.Where("height = ?", height).Order("id ASC").Find(&txs)
	return txs
}

func (db *IndexDB) GetTransactionByHash(hash string) *models.Transaction {
	var tx models.Transaction
	if err := db.db.Where("hash = ?", hash).First(&tx).Error; err != nil {
		return nil
	}
	return &tx
}

func (db *IndexDB) CountTransactions() int64 {
	var count int64
	db.db.Model(&models.Transaction{}).Count(&count)
	return count
}

func (db *IndexDB) GetAddressSummary(address string) *models.AddressSummary {
	var sent, received int64
	db.db.Model(&models.Transaction{}).Where("from_addr = ?", address).Count(&sent)
	db.db.Model(&models.Transaction{}).Where("to_addr = ?", address).Count(&received)

	return &models.AddressSummary{
		Address:       address,
		SentCount:     sent,
		ReceivedCount: received,
	}
}

func (db *IndexDB) GetChainStats() models.ChainStats {
	db.statsLock.RLock()
	defer db.statsLock.RUnlock()

	return db.chainStats
}

// RefreshChainStats recounts the totals and asks the node for its mempool
// size. A node failure keeps the previous pending count.
func (db *IndexDB) RefreshChainStats() {
	total := db.CountTransactions()

	pending := int64(-1)
	if nodeStats, err := net.GetNodeStats(); err != nil {
		db.logger.Warnf("Refresh chain stats, node unreachable: [%s]", err.Error())
	} else {
		pending = int64(nodeStats.MempoolSize)
	}

	db.statsLock.Lock()
	db.chainStats.Height = db.lastIndexedBlockNum
	db.chainStats.TotalTxCount = total
	if pending >= 0 {
		db.chainStats.PendingCount = uint(pending)
	}
	db.statsLock.Unlock()
}

func (db *IndexDB) statsRefreshLoop() {
	ticker := time.NewTicker(statsRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-db.quitCh:
			db.loopWG.Done()
			return
		case <-ticker.C:
			db.RefreshChainStats()
		}
	}
}

// DoNetworkStatistics rolls finished days up into NetworkStatistic rows.
// Called by cron shortly after midnight, catches up over missed days.
func (db *IndexDB) DoNetworkStatistics() {
	today := generateDate(time.Now().Unix())

	for {
		next := nextDate(db.countedDate)
		if next == "" || next >= today {
			return
		}

		db.countForDate(next)

		db.countedDate = next
		db.db.Model(&models.Meta{}).Where(models.Meta{Key: models.CountedDateKey}).Update("val", next)
	}
}

func (db *IndexDB) countForDate(date string) {
	day, err := time.ParseInLocation("060102", date, time.Local)
	if err != nil {
		db.logger.Errorf("Count for date [%s] error: [%s]", date, err.Error())
		return
	}
	dayStart := day.Unix()
	dayEnd := day.AddDate(0, 0, 1).Unix()

	var (
		blockCount int64
		txCount    int64
		totalTxs   int64
	)
	db.db.Model(&models.Block{}).Where("timestamp >= ? AND timestamp < ?", dayStart, dayEnd).Count(&blockCount)
	db.db.Model(&models.Transaction{}).Where("timestamp >= ? AND timestamp < ?", dayStart, dayEnd).Count(&txCount)
	db.db.Model(&models.Transaction{}).Where("timestamp < ?", dayEnd).Count(&totalTxs)

	statistic := models.NetworkStatistic{
		Date:         date,
		BlockCount:   uint(blockCount),
		TxCount:      uint(txCount),
		TotalTxCount: uint(totalTxs),
	}

	var lastBlock models.Block
	if err := db.db.Where("timestamp < ?", dayEnd).Order("height DESC").First(&lastBlock).Error; err == nil {
		statistic.EndHeight = lastBlock.Height
	}

	result := db.db.Where(models.NetworkStatistic{Date: date}).Assign(statistic).FirstOrCreate(&models.NetworkStatistic{})
	if result.Error != nil {
		db.logger.Warnf("Save network statistic for [%s] error: [%s]", date, result.Error.Error())
		return
	}

	db.logger.Infof("Counted date [%s], blocks [%s], txs [%s]",
		date, humanize.Comma(blockCount), humanize.Comma(txCount))
}

func (db *IndexDB) GetNetworkStatistics(days int) []*models.NetworkStatistic {
	var statistics []*models.NetworkStatistic
	db.db.Order("date DESC").Limit(days).Find(&statistics)
	return statistics
}

func generateDate(ts int64) string {
	return time.Unix(ts, 0).Format("060102")
}

func nextDate(date string) string {
	day, err := time.ParseInLocation("060102", date, time.Local)
	if err != nil {
		return ""
	}
	return day.AddDate(0, 0, 1).Format("060102")
}

func parseUint(s string) uint {
	val, _ := strconv.ParseUint(s, 10, 64)
	return uint(val)
}
