package net

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"dytallix-explorer/types"
)

const (
	getBlockPath       = "block/"
	getLatestBlockPath = "block/latest"
	getTransactionPath = "tx/"
	getNodeStatsPath   = "stats"
)

type Config struct {
	NodeURL string `toml:"node_url"`
}

var (
	client  = resty.New()
	baseUrl = "http://localhost:3030/"
)

func Init(cfg *Config) {
	if len(cfg.NodeURL) > 0 {
		baseUrl = cfg.NodeURL
		if !strings.HasSuffix(baseUrl, "/") {
			baseUrl += "/"
		}
	}
}

type blockEnvelope struct {
	Success bool         `json:"success"`
	Data    *types.Block `json:"data"`
	Error   string       `json:"error"`
}

type txEnvelope struct {
	Success bool               `json:"success"`
	Data    *types.Transaction `json:"data"`
	Error   string             `json:"error"`
}

type statsEnvelope struct {
	Success bool             `json:"success"`
	Data    *types.NodeStats `json:"data"`
	Error   string           `json:"error"`
}

// GetLatestBlock returns the node's current tip, or nil when the chain is empty.
func GetLatestBlock() (*types.Block, error) {
	return getBlock(baseUrl + getLatestBlockPath)
}

// GetBlockByHeight returns nil without error when the height is not produced yet.
func GetBlockByHeight(height uint) (*types.Block, error) {
	return getBlock(baseUrl + getBlockPath + strconv.FormatUint(uint64(height), 10))
}

func getBlock(url string) (*types.Block, error) {
	var envelope blockEnvelope
	resp, err := client.R().SetResult(&envelope).SetError(&envelope).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get block failed: status [%d] error [%s]", resp.StatusCode(), envelope.Error)
	}
	return envelope.Data, nil
}

// GetTransaction returns nil without error when the node does not know the hash.
func GetTransaction(hash string) (*types.Transaction, error) {
	var envelope txEnvelope
	resp, err := client.R().SetResult(&envelope).SetError(&envelope).Get(baseUrl + getTransactionPath + hash)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get transaction failed: status [%d] error [%s]", resp.StatusCode(), envelope.Error)
	}
	if envelope.Data != nil && len(envelope.Data.Hash) == 0 {
		envelope.Data.Hash = hash
	}
	return envelope.Data, nil
}

func GetNodeStats() (*types.NodeStats, error) {
	var envelope statsEnvelope
	resp, err := client.R().SetResult(&envelope).SetError(&envelope).Get(baseUrl + getNodeStatsPath)
	if err != nil {
		return nil, err
	}
	if resp.IsError() || envelope.Data == nil {
		return nil, fmt.Errorf("get node stats failed: status [%d] error [%s]", resp.StatusCode(), envelope.Error)
	}
	return envelope.Data, nil
}
