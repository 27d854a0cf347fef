package config

import (
	"github.com/BurntSushi/toml"

	"dytallix-explorer/api"
	"dytallix-explorer/bot"
	"dytallix-explorer/database"
	"dytallix-explorer/explorer"
	"dytallix-explorer/log"
	"dytallix-explorer/net"
)

type Config struct {
	Server  api.Config      `toml:"server"`
	Net     net.Config      `toml:"net"`
	Log     log.Config      `toml:"log"`
	DB      database.Config `toml:"database"`
	Indexer explorer.Config `toml:"indexer"`
	Bot     bot.Config      `toml:"bot"`
}

func LoadConfig(path string) *Config {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		panic(err)
	}
	return &config
}
