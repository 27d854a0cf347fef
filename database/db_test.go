package database

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/assert/v2"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dytallix-explorer/database/models"
)

func newTestDB(t *testing.T) (*IndexDB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if err != nil {
		t.Fatal(err)
	}

	return &IndexDB{
		db:     gormDB,
		quitCh: make(chan struct{}),
		logger: zap.S().Named("[db]"),
	}, mock
}

func TestGetBlocks(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM `blocks` ORDER BY height DESC").
		WillReturnRows(sqlmock.NewRows([]string{"height", "hash", "timestamp", "tx_count"}).
			AddRow(12, strings.Repeat("ab", 32), 1700000012, 2).
			AddRow(11, strings.Repeat("cd", 32), 1700000006, 0))

	blocks := db.GetBlocks(2, 0)
	assert.Equal(t, len(blocks), 2)
	assert.Equal(t, blocks[0].Height, uint(12))
	assert.Equal(t, blocks[1].TxCount, uint(0))

	assert.Equal(t, mock.ExpectationsWereMet(), nil)
}

func TestGetBlockByHash(t *testing.T) {
	db, mock := newTestDB(t)
	hash := strings.Repeat("ab", 32)

	mock.ExpectQuery("SELECT \\* FROM `blocks` WHERE hash = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"height", "hash", "timestamp", "tx_count"}).
			AddRow(12, hash, 1700000012, 2))

	block := db.GetBlockByHash(hash)
	assert.Equal(t, block.Height, uint(12))
	assert.Equal(t, block.Hash, hash)

	mock.ExpectQuery("SELECT \\* FROM `blocks` WHERE hash = \\?").
		WillReturnError(gorm.ErrRecordNotFound)

	assert.Equal(t, db.GetBlockByHash(strings.Repeat("00", 32)), nil)
	assert.Equal(t, mock.ExpectationsWereMet(), nil)
}

func TestGetTransactionByHash(t *testing.T) {
	db, mock := newTestDB(t)
	hash := strings.Repeat("cd", 32)

	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE hash = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "hash", "height", "from_addr", "to_addr", "amount", "denom", "timestamp", "result", "gas_used"}).
			AddRow(1, hash, 12, "dyt190vqdjtlpcq27xslcveglfmr4ynfwg7g8jwyyg", "dyt1sxmr0k8u6trd5c6eu6trzyapzux7090yk4z7fg", "100", "dyt", 1700000012, models.ResultSuccess, 21000))

	tx := db.GetTransactionByHash(hash)
	assert.Equal(t, tx.Hash, hash)
	assert.Equal(t, tx.Confirmed(), true)
	assert.Equal(t, tx.Status(), "success")

	assert.Equal(t, mock.ExpectationsWereMet(), nil)
}

func TestGetTransactionsByAddress(t *testing.T) {
	db, mock := newTestDB(t)
	addr := "dyt190vqdjtlpcq27xslcveglfmr4ynfwg7g8jwyyg"

	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE from_addr = \\? OR to_addr = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "hash", "height", "from_addr", "to_addr", "amount", "denom", "timestamp", "result", "gas_used"}).
			AddRow(2, strings.Repeat("ef", 32), 13, addr, "dyt1fsndjp6vylvfahjeyuxq4s2tw8s8rv2j90vu92", "50", "dyt", 1700000018, models.ResultSuccess, 21000))

	txs := db.GetTransactionsByAddress(addr, 20, 0)
	assert.Equal(t, len(txs), 1)
	assert.Equal(t, txs[0].FromAddr, addr)

	assert.Equal(t, mock.ExpectationsWereMet(), nil)
}

func TestGetAddressSummary(t *testing.T) {
	db, mock := newTestDB(t)
	addr := "dyt1sxmr0k8u6trd5c6eu6trzyapzux7090yk4z7fg"

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions` WHERE from_addr = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(3))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions` WHERE to_addr = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(5))

	summary := db.GetAddressSummary(addr)
	assert.Equal(t, summary.Address, addr)
	assert.Equal(t, summary.SentCount, int64(3))
	assert.Equal(t, summary.ReceivedCount, int64(5))

	assert.Equal(t, mock.ExpectationsWereMet(), nil)
}

func TestGenerateDate(t *testing.T) {
	assert.Equal(t, nextDate("240101"), "240102")
	assert.Equal(t, nextDate("231231"), "240101")
	assert.Equal(t, nextDate("bogus"), "")
}
