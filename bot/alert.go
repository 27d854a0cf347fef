package bot

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dytallix-explorer/database"
)

type Config struct {
	BotToken       string `toml:"bot_token"`
	ChatID         int64  `toml:"chat_id"`
	StallThreshold int    `toml:"stall_threshold"`
}

// AlertBot posts operational notices to a Telegram channel. With no token
// configured every method is a no-op.
type AlertBot struct {
	botApi *tgbotapi.BotAPI
	chatID int64

	db             *database.IndexDB
	stallThreshold time.Duration
	stallAlerted   bool

	logger *zap.SugaredLogger
}

func New(cfg *Config, db *database.IndexDB) *AlertBot {
	bot := &AlertBot{
		chatID: cfg.ChatID,

		db:             db,
		stallThreshold: time.Duration(cfg.StallThreshold) * time.Second,

		logger: zap.S().Named("[alert_bot]"),
	}
	if bot.stallThreshold <= 0 {
		bot.stallThreshold = 5 * time.Minute
	}

	if len(cfg.BotToken) == 0 {
		bot.logger.Info("Telegram alert bot disabled, no token configured")
		return bot
	}

	botApi, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		panic(err)
	}
	bot.botApi = botApi
	bot.logger.Infof("Telegram alert bot authorized on account [%s]", botApi.Self.UserName)

	return bot
}

// CheckIndexerStall alerts once when the indexer falls behind the stall
// threshold and once more when it recovers.
func (b *AlertBot) CheckIndexerStall() {
	if b.botApi == nil {
		return
	}

	lastBlockTime := b.db.GetLastIndexedBlockTime()
	if lastBlockTime == 0 {
		return
	}

	lag := time.Since(time.Unix(lastBlockTime, 0))
	if lag > b.stallThreshold && !b.stallAlerted {
		b.stallAlerted = true
		b.sendMessage(fmt.Sprintf("Indexer stalled, last indexed block [%d] is [%s] old",
			b.db.GetLastIndexedBlockNum(), lag.Round(time.Second)))
	} else if lag <= b.stallThreshold && b.stallAlerted {
		b.stallAlerted = false
		b.sendMessage(fmt.Sprintf("Indexer recovered, last indexed block [%d]", b.db.GetLastIndexedBlockNum()))
	}
}

func (b *AlertBot) DailyReport() {
	if b.botApi == nil {
		return
	}

	stats := b.db.GetChainStats()
	b.sendMessage(fmt.Sprintf("Daily report\nHeight: %s\nTotal txs: %s\nPending txs: %s",
		humanize.Comma(int64(stats.Height)),
		humanize.Comma(stats.TotalTxCount),
		humanize.Comma(int64(stats.PendingCount))))
}

func (b *AlertBot) sendMessage(textMsg string) {
	if b.chatID == 0 {
		b.logger.Errorf("Telegram chat ID is zero")
		return
	}

	msg := tgbotapi.NewMessage(b.chatID, textMsg)
	msg.DisableWebPagePreview = true

	if _, err := b.botApi.Send(msg); err != nil {
		b.logger.Errorf("Error sending message: %v", err)
	}
}
