package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"dytallix-explorer/api"
	"dytallix-explorer/bot"
	"dytallix-explorer/config"
	"dytallix-explorer/database"
	"dytallix-explorer/explorer"
	"dytallix-explorer/log"
	"dytallix-explorer/net"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the config file")
	flag.Parse()

	cfg := config.LoadConfig(*configPath)

	net.Init(&cfg.Net)
	log.Init(&cfg.Log)

	db := database.New(&cfg.DB)

	indexer := explorer.NewIndexer(db, &cfg.Indexer)
	indexer.Start()

	apiSrv := api.New(db, &cfg.Server)
	apiSrv.Start()

	alertBot := bot.New(&cfg.Bot, db)

	c := cron.New(cron.WithSeconds())
	_, _ = c.AddFunc("30 0 0 * * *", func() {
		db.DoNetworkStatistics()
	})
	_, _ = c.AddFunc("0 0 9 * * *", func() {
		alertBot.DailyReport()
	})
	_, _ = c.AddFunc("0 * * * * *", func() {
		alertBot.CheckIndexerStall()
	})
	_, _ = c.AddFunc("0 */10 * * * *", func() {
		indexer.Report()
		db.Report()
	})
	c.Start()

	watchOSSignal(indexer, apiSrv)
}

func watchOSSignal(indexer *explorer.Indexer, apiSrv *api.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	indexer.Stop()
	apiSrv.Stop()
}
