package search

import (
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"dytallix-explorer/database/models"
)

var (
	testBlockHash = strings.Repeat("ab", 32)
	testTxHash    = strings.Repeat("cd", 32)
	testAddress   = "dyt190vqdjtlpcq27xslcveglfmr4ynfwg7g8jwyyg"
)

type fakeStore struct {
	blocksByHeight map[uint]*models.Block
	blocksByHash   map[string]*models.Block
	txsByHash      map[string]*models.Transaction

	lookups int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		blocksByHeight: make(map[uint]*models.Block),
		blocksByHash:   make(map[string]*models.Block),
		txsByHash:      make(map[string]*models.Transaction),
	}
}

func (s *fakeStore) addBlock(block *models.Block) {
	s.blocksByHeight[block.Height] = block
	s.blocksByHash[block.Hash] = block
}

func (s *fakeStore) GetBlockByHeight(height uint) *models.Block {
	s.lookups++
	return s.blocksByHeight[height]
}

func (s *fakeStore) GetBlockByHash(hash string) *models.Block {
	s.lookups++
	return s.blocksByHash[hash]
}

func (s *fakeStore) GetTransactionByHash(hash string) *models.Transaction {
	s.lookups++
	return s.txsByHash[hash]
}

func (s *fakeStore) GetAddressSummary(address string) *models.AddressSummary {
	s.lookups++
	return &models.AddressSummary{Address: address}
}

func TestParseHint(t *testing.T) {
	assert.Equal(t, ParseHint("block"), HintBlock)
	assert.Equal(t, ParseHint("transaction"), HintTransaction)
	assert.Equal(t, ParseHint("tx"), HintTransaction)
	assert.Equal(t, ParseHint("Address"), HintAddress)
	assert.Equal(t, ParseHint("all"), HintAll)
	assert.Equal(t, ParseHint(""), HintAll)
	assert.Equal(t, ParseHint("bogus"), HintAll)
}

func TestClassifyNumeric(t *testing.T) {
	cls := Classify("12345", HintAll)
	assert.Equal(t, cls.Kind, KindHeight)
	assert.Equal(t, cls.Height, uint(12345))

	cls = Classify("12345", HintBlock)
	assert.Equal(t, cls.Kind, KindHeight)
	assert.Equal(t, cls.Height, uint(12345))

	assert.Equal(t, Classify("0", HintBlock).Kind, KindHeight)
	assert.Equal(t, Classify("-1", HintBlock).Kind, KindUnknown)
	assert.Equal(t, Classify("12a45", HintBlock).Kind, KindUnknown)
}

func TestClassifyHash(t *testing.T) {
	cls := Classify(testTxHash, HintAll)
	assert.Equal(t, cls.Kind, KindHash)
	assert.Equal(t, cls.Hash, testTxHash)

	// 0x prefix and upper case are normalized away.
	cls = Classify("0x"+strings.ToUpper(testTxHash), HintTransaction)
	assert.Equal(t, cls.Kind, KindHash)
	assert.Equal(t, cls.Hash, testTxHash)

	assert.Equal(t, Classify("notahash!", HintTransaction).Kind, KindUnknown)
	assert.Equal(t, Classify(testTxHash[:40], HintTransaction).Kind, KindUnknown)
}

func TestClassifyAddress(t *testing.T) {
	cls := Classify(testAddress, HintAll)
	assert.Equal(t, cls.Kind, KindAddress)
	assert.Equal(t, cls.Address, testAddress)

	assert.Equal(t, Classify(testAddress, HintAddress).Kind, KindAddress)
	// Valid bech32 but wrong prefix.
	assert.Equal(t, Classify("eth194c3vs4hy6cygqtz0j5lhtpj7hy9xra3u68jer", HintAddress).Kind, KindUnknown)
	assert.Equal(t, Classify("dyt1notbech32!!!", HintAll).Kind, KindUnknown)
}

func TestClassifyEmpty(t *testing.T) {
	assert.Equal(t, Classify("", HintAll).Kind, KindEmpty)
	assert.Equal(t, Classify("   \t ", HintAll).Kind, KindEmpty)
	assert.Equal(t, Classify(" \n", HintBlock).Kind, KindEmpty)
}

func TestResolveBlockHeight(t *testing.T) {
	store := newFakeStore()
	store.addBlock(&models.Block{Height: 12345, Hash: testBlockHash})
	router := NewRouter(store)

	result, found := router.Resolve("12345", HintBlock)
	assert.Equal(t, found, true)
	assert.Equal(t, result.Type, ResultBlock)
	assert.Equal(t, result.Block.Height, uint(12345))

	_, found = router.Resolve("99999", HintBlock)
	assert.Equal(t, found, false)

	// A hash under a block hint fails integer parsing, so no match.
	_, found = router.Resolve(testBlockHash, HintBlock)
	assert.Equal(t, found, false)
}

func TestResolveHashPriority(t *testing.T) {
	store := newFakeStore()
	store.addBlock(&models.Block{Height: 7, Hash: testBlockHash})
	store.txsByHash[testTxHash] = &models.Transaction{Hash: testTxHash, Height: 7}
	router := NewRouter(store)

	// A hash known as a block resolves as a block under HintAll.
	result, found := router.Resolve(testBlockHash, HintAll)
	assert.Equal(t, found, true)
	assert.Equal(t, result.Type, ResultBlock)

	// A hash only known as a transaction falls through to the tx lookup.
	result, found = router.Resolve(testTxHash, HintAll)
	assert.Equal(t, found, true)
	assert.Equal(t, result.Type, ResultTransaction)
	assert.Equal(t, result.Tx.Hash, testTxHash)

	// Under a transaction hint the block index is never consulted.
	result, found = router.Resolve(testBlockHash, HintTransaction)
	assert.Equal(t, found, false)
}

func TestResolveAddress(t *testing.T) {
	store := newFakeStore()
	router := NewRouter(store)

	result, found := router.Resolve(testAddress, HintAll)
	assert.Equal(t, found, true)
	assert.Equal(t, result.Type, ResultAddress)
	assert.Equal(t, result.Address.Address, testAddress)
}

func TestResolveEmptyPerformsNoLookup(t *testing.T) {
	store := newFakeStore()
	router := NewRouter(store)

	_, found := router.Resolve("", HintAll)
	assert.Equal(t, found, false)
	_, found = router.Resolve("   ", HintBlock)
	assert.Equal(t, found, false)
	assert.Equal(t, store.lookups, 0)
}

func TestResolveUnknownNeverErrors(t *testing.T) {
	store := newFakeStore()
	router := NewRouter(store)

	for _, q := range []string{"notahash!", "0xzz", "dyt1", "block#1", "🚀"} {
		_, found := router.Resolve(q, HintAll)
		assert.Equal(t, found, false)
	}
	assert.Equal(t, store.lookups, 0)
}
