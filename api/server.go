package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"dytallix-explorer/common"
	"dytallix-explorer/database/models"
	"dytallix-explorer/search"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	hashCacheSize = 4096
)

type Config struct {
	HttpPort int `toml:"http_port"`
}

// Store is the slice of the index the API reads from.
type Store interface {
	GetBlocks(limit, offset int) []*models.Block
	GetBlockByHeight(height uint) *models.Block
	GetBlockByHash(hash string) *models.Block
	GetTransactions(limit, offset int) []*models.Transaction
	GetTransactionsByAddress(address string, limit, offset int) []*models.Transaction
	GetTransactionsByHeight(height uint) []*models.Transaction
	GetTransactionByHash(hash string) *models.Transaction
	GetAddressSummary(address string) *models.AddressSummary
	GetChainStats() models.ChainStats
	GetNetworkStatistics(days int) []*models.NetworkStatistic
}

type Server struct {
	router *gin.Engine
	srv    *http.Server

	db     Store
	search *search.Router

	// Blocks and confirmed transactions are immutable, so resolved hash
	// lookups can be cached indefinitely. Only unhinted queries go through
	// the cache, a hint changes which indexes resolution may consult.
	hashCache *lru.Cache[string, *search.Result]

	logger *zap.SugaredLogger
}

func New(db Store, cfg *Config) *Server {
	router := gin.Default()
	router.Use(cors.Default())

	port := cfg.HttpPort
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	hashCache, err := lru.New[string, *search.Result](hashCacheSize)
	if err != nil {
		panic(err)
	}

	s := &Server{
		router: router,
		srv:    srv,

		db:     db,
		search: search.NewRouter(db),

		hashCache: hashCache,

		logger: zap.S().Named("[api]"),
	}

	router.GET("/explorer/blocks", s.blocks)
	router.GET("/explorer/blocks/:key", s.blockByKey)
	router.GET("/explorer/txs", s.transactions)
	router.GET("/explorer/tx/:hash", s.transactionByHash)
	router.GET("/explorer/address/:addr", s.address)
	router.GET("/explorer/stats", s.stats)
	router.GET("/explorer/statistics", s.statistics)
	router.GET("/explorer/search", s.doSearch)

	return s
}

func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	s.logger.Infof("API server started, listening on [%s]", s.srv.Addr)
}

func (s *Server) Stop() {
	if err := s.srv.Shutdown(context.Background()); err != nil {
		panic(err)
	}
}

func (s *Server) blocks(c *gin.Context) {
	limit, offset := pagination(c)
	c.JSON(200, gin.H{
		"blocks": s.db.GetBlocks(limit, offset),
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) blockByKey(c *gin.Context) {
	key := c.Param("key")

	var block *models.Block
	if height, err := strconv.ParseUint(key, 10, 64); err == nil {
		block = s.db.GetBlockByHeight(uint(height))
	} else if common.IsHash(key) {
		block = s.db.GetBlockByHash(common.NormalizeHash(key))
	}

	if block == nil {
		c.JSON(404, gin.H{"error": "no match found"})
		return
	}

	txs := s.db.GetTransactionsByHeight(block.Height)
	hashes := make([]string, 0, len(txs))
	for _, tx := range txs {
		hashes = append(hashes, tx.Hash)
	}

	c.JSON(200, gin.H{
		"block": block,
		"txs":   hashes,
	})
}

func (s *Server) transactions(c *gin.Context) {
	limit, offset := pagination(c)

	address := c.Query("address")
	if len(address) > 0 && !common.IsAddress(address) {
		c.JSON(404, gin.H{"error": "no match found"})
		return
	}

	var txs []*models.Transaction
	if len(address) > 0 {
		txs = s.db.GetTransactionsByAddress(address, limit, offset)
	} else {
		txs = s.db.GetTransactions(limit, offset)
	}

	c.JSON(200, gin.H{
		"transactions": txs,
		"limit":        limit,
		"offset":       offset,
	})
}

func (s *Server) transactionByHash(c *gin.Context) {
	hash := c.Param("hash")
	if !common.IsHash(hash) {
		c.JSON(404, gin.H{"error": "no match found"})
		return
	}

	tx := s.db.GetTransactionByHash(common.NormalizeHash(hash))
	if tx == nil {
		c.JSON(404, gin.H{"error": "no match found"})
		return
	}
	c.JSON(200, tx)
}

func (s *Server) address(c *gin.Context) {
	addr := c.Param("addr")
	if !common.IsAddress(addr) {
		c.JSON(404, gin.H{"error": "no match found"})
		return
	}

	limit, offset := pagination(c)
	c.JSON(200, gin.H{
		"summary":      s.db.GetAddressSummary(addr),
		"transactions": s.db.GetTransactionsByAddress(addr, limit, offset),
	})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(200, s.db.GetChainStats())
}

func (s *Server) statistics(c *gin.Context) {
	days := 7
	if d, err := strconv.Atoi(c.Query("days")); err == nil && d > 0 && d <= 90 {
		days = d
	}
	c.JSON(200, gin.H{
		"statistics": s.db.GetNetworkStatistics(days),
	})
}

func (s *Server) doSearch(c *gin.Context) {
	q := c.Query("q")
	hint := search.ParseHint(c.Query("type"))

	cls := search.Classify(q, hint)
	if cls.Kind == search.KindEmpty {
		// Blank input is silently ignored, not an error.
		c.JSON(200, gin.H{})
		return
	}

	// The cache is bypassed for hinted queries: the same hash resolves
	// differently depending on which indexes the hint allows.
	cacheable := hint == search.HintAll && cls.Kind == search.KindHash

	if cacheable {
		if result, ok := s.hashCache.Get(cls.Hash); ok {
			c.JSON(200, result)
			return
		}
	}

	result, found := s.search.Resolve(q, hint)
	if !found {
		c.JSON(404, gin.H{"error": "no match found"})
		return
	}

	if cacheable {
		s.hashCache.Add(cls.Hash, result)
	}
	c.JSON(200, result)
}

func pagination(c *gin.Context) (int, int) {
	limit := defaultPageSize
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = min(l, maxPageSize)
	}

	offset := 0
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o > 0 {
		offset = o
	}
	return limit, offset
}
