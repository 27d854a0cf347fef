package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"github.com/olekukonko/tablewriter"

	"dytallix-explorer/database/models"
)

type blocksResponse struct {
	Blocks []*models.Block `json:"blocks"`
}

type txsResponse struct {
	Transactions []*models.Transaction `json:"transactions"`
}

func main() {
	apiUrl := flag.String("api", "http://localhost:8080", "explorer API base URL")
	limit := flag.Int("limit", 10, "number of rows to show")
	flag.Parse()

	client := resty.New()

	var stats models.ChainStats
	if _, err := client.R().SetResult(&stats).Get(*apiUrl + "/explorer/stats"); err != nil {
		fmt.Println("fetch stats:", err)
		os.Exit(1)
	}
	fmt.Printf("Height: %s, total txs: %s, pending txs: %s\n\n",
		humanize.Comma(int64(stats.Height)),
		humanize.Comma(stats.TotalTxCount),
		humanize.Comma(int64(stats.PendingCount)))

	var blocks blocksResponse
	if _, err := client.R().
		SetResult(&blocks).
		SetQueryParam("limit", strconv.Itoa(*limit)).
		Get(*apiUrl + "/explorer/blocks"); err != nil {
		fmt.Println("fetch blocks:", err)
		os.Exit(1)
	}

	blockTable := tablewriter.NewWriter(os.Stdout)
	blockTable.Header("Height", "Hash", "Time", "Txs")
	for _, block := range blocks.Blocks {
		_ = blockTable.Append([]string{
			strconv.FormatUint(uint64(block.Height), 10),
			shorten(block.Hash),
			time.Unix(block.Timestamp, 0).Format("2006-01-02 15:04:05"),
			strconv.FormatUint(uint64(block.TxCount), 10),
		})
	}
	_ = blockTable.Render()

	var txs txsResponse
	if _, err := client.R().
		SetResult(&txs).
		SetQueryParam("limit", strconv.Itoa(*limit)).
		Get(*apiUrl + "/explorer/txs"); err != nil {
		fmt.Println("fetch txs:", err)
		os.Exit(1)
	}

	fmt.Println()
	txTable := tablewriter.NewWriter(os.Stdout)
	txTable.Header("Hash", "From", "To", "Amount", "Status")
	for _, tx := range txs.Transactions {
		_ = txTable.Append([]string{
			shorten(tx.Hash),
			shorten(tx.FromAddr),
			shorten(tx.ToAddr),
			tx.Amount + " " + tx.Denom,
			tx.Status(),
		})
	}
	_ = txTable.Render()
}

func shorten(s string) string {
	if len(s) <= 16 {
		return s
	}
	return s[:8] + ".." + s[len(s)-6:]
}
