package explorer

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dytallix-explorer/common"
	"dytallix-explorer/database"
	"dytallix-explorer/database/models"
	"dytallix-explorer/net"
	"dytallix-explorer/types"
)

const (
	txFetchParallelism = 8
	defaultDenom       = "dyt"
)

type Config struct {
	BackfillBlocks uint   `toml:"backfill_blocks"`
	PollInterval   int    `toml:"poll_interval"`
	JSONLPath      string `toml:"jsonl_path"`
}

// Indexer walks the chain one block at a time and mirrors it into the
// IndexDB. On a fresh database it backfills the most recent BackfillBlocks
// before following the tip.
type Indexer struct {
	db  *database.IndexDB
	cfg *Config

	pollInterval time.Duration
	jsonlFile    *os.File

	isCatching bool
	reporter   *common.Reporter
	loopWG     sync.WaitGroup
	quitCh     chan struct{}

	logger *zap.SugaredLogger
}

func NewIndexer(db *database.IndexDB, cfg *Config) *Indexer {
	pollInterval := time.Duration(cfg.PollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	var jsonlFile *os.File
	if len(cfg.JSONLPath) > 0 {
		var err error
		jsonlFile, err = os.OpenFile(cfg.JSONLPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			panic(err)
		}
	}

	return &Indexer{
		db:  db,
		cfg: cfg,

		pollInterval: pollInterval,
		jsonlFile:    jsonlFile,

		isCatching: true,
		reporter: common.NewReporter(1000, 60*time.Second, func(rs common.ReporterState) string {
			return fmt.Sprintf("Indexed [%d] blocks in [%.2fs], speed [%.2fblocks/sec]", rs.CountInc, rs.ElapsedTime, float64(rs.CountInc)/rs.ElapsedTime)
		}),
		quitCh: make(chan struct{}),

		logger: zap.S().Named("[indexer]"),
	}
}

func (i *Indexer) Start() {
	i.initStartBlock()

	i.db.Start()

	i.loopWG.Add(1)
	go i.loop()

	i.logger.Info("Indexer started")
}

func (i *Indexer) Stop() {
	close(i.quitCh)
	i.loopWG.Wait()

	if i.jsonlFile != nil {
		_ = i.jsonlFile.Close()
	}
}

func (i *Indexer) Report() {
	if !i.isCatching {
		i.logger.Infof("Status report, latest indexed block [%d](%s)",
			i.db.GetLastIndexedBlockNum(),
			time.Unix(i.db.GetLastIndexedBlockTime(), 0).Format("2006-01-02 15:04:05"))
	}
}

// initStartBlock picks the resume point for an empty database: the most
// recent BackfillBlocks are indexed, older history is skipped.
func (i *Indexer) initStartBlock() {
	if i.db.GetLastIndexedBlockNum() != 0 {
		return
	}

	latest, err := net.GetLatestBlock()
	if err != nil {
		i.logger.Warnf("Init start block, node unreachable: [%s]", err.Error())
		return
	}
	if latest == nil {
		return
	}

	start := backfillStart(latest.Number, i.cfg.BackfillBlocks)
	i.db.InitStartBlock(start - 1)
	i.logger.Infof("Backfilling blocks from [%d] to [%d]", start, latest.Number)
}

// backfillStart is the first height to index on a fresh database: backfill
// heights back from the tip, floored at 1.
func backfillStart(latest, backfill uint) uint {
	if latest <= backfill {
		return 1
	}
	return latest - backfill
}

func (i *Indexer) loop() {
	for {
		select {
		case <-i.quitCh:
			i.logger.Info("Indexer quit, start closing index db")
			i.db.Close()
			i.logger.Info("Indexer quit, index db closed")
			i.loopWG.Done()
			return
		default:
			i.doIndexBlock()
		}
	}
}

func (i *Indexer) doIndexBlock() {
	next := i.db.GetLastIndexedBlockNum() + 1

	block, err := net.GetBlockByHeight(next)
	if err != nil {
		i.logger.Errorf("Fetch block [%d] error: [%s]", next, err.Error())
		time.Sleep(i.pollInterval)
		return
	}
	if block == nil {
		// The node has not produced this height yet.
		if i.isCatching {
			i.isCatching = false
			i.logger.Infof("Caught up with the latest block [%d]", next-1)
		}
		time.Sleep(i.pollInterval)
		return
	}

	if shouldReport, reportContent := i.reporter.Add(1); shouldReport {
		if latest, latestErr := net.GetLatestBlock(); latestErr == nil && latest != nil {
			i.logger.Infof("%s, indexing progress [%d] => [%d], left blocks [%d]", reportContent, block.Number, latest.Number, latest.Number-block.Number)
		} else {
			i.logger.Info(reportContent)
		}
	}

	transactions, err := i.fetchTransactions(block)
	// This happens when fetching the block succeeds, but fetching the
	// detail of one of its transactions fails. The height is retried.
	if err != nil {
		i.logger.Errorf("Fetch txs of block [%d] error: [%s]", block.Number, err.Error())
		return
	}

	timestamp := block.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	blockToDB := &models.Block{
		Height:    block.Number,
		Hash:      common.NormalizeHash(block.Hash),
		Timestamp: timestamp,
		TxCount:   uint(len(block.Transactions)),
	}

	i.db.SaveBlock(blockToDB, transactions)
	i.mirrorToJSONL(blockToDB, transactions)
}

func (i *Indexer) fetchTransactions(block *types.Block) ([]*models.Transaction, error) {
	fetched := make([]*models.Transaction, len(block.Transactions))

	var group errgroup.Group
	group.SetLimit(txFetchParallelism)
	for idx, hash := range block.Transactions {
		group.Go(func() error {
			txInfo, err := net.GetTransaction(hash)
			if err != nil {
				return err
			}
			if txInfo == nil {
				i.logger.Warnf("Transaction [%s] in block [%d] not found on node", hash, block.Number)
				return nil
			}

			height := txInfo.Height
			if height == 0 {
				height = block.Number
			}
			timestamp := txInfo.Timestamp
			if timestamp == 0 {
				timestamp = block.Timestamp
			}
			denom := txInfo.Denom
			if len(denom) == 0 {
				denom = defaultDenom
			}

			fetched[idx] = &models.Transaction{
				Hash:      common.NormalizeHash(txInfo.Hash),
				Height:    height,
				FromAddr:  txInfo.From,
				ToAddr:    txInfo.To,
				Amount:    txInfo.Amount,
				Denom:     denom,
				Timestamp: timestamp,
				Result:    types.ConvertResult(txInfo.Status),
				GasUsed:   txInfo.GasUsed,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	transactions := make([]*models.Transaction, 0, len(fetched))
	for _, tx := range fetched {
		if tx != nil {
			transactions = append(transactions, tx)
		}
	}
	return transactions, nil
}

func (i *Indexer) mirrorToJSONL(block *models.Block, transactions []*models.Transaction) {
	if i.jsonlFile == nil {
		return
	}

	writeLine := func(v interface{}) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}
		_, _ = i.jsonlFile.Write(append(data, '\n'))
	}

	writeLine(block)
	for _, tx := range transactions {
		writeLine(tx)
	}
}
