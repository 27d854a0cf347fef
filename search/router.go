package search

import (
	"strconv"
	"strings"

	"dytallix-explorer/common"
	"dytallix-explorer/database/models"
)

// Hint narrows what a search query may refer to. The zero value matches
// everything.
type Hint uint8

const (
	HintAll Hint = iota
	HintBlock
	HintTransaction
	HintAddress
)

// ParseHint maps the type query parameter onto a Hint. Unknown values fall
// back to HintAll rather than failing the request.
func ParseHint(s string) Hint {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block":
		return HintBlock
	case "transaction", "tx":
		return HintTransaction
	case "address":
		return HintAddress
	default:
		return HintAll
	}
}

type Kind uint8

const (
	KindEmpty Kind = iota
	KindHeight
	// KindHash covers both block and transaction hashes. They share the
	// same 64-hex shape, so lookup decides which one it is.
	KindHash
	KindAddress
	KindUnknown
)

type Classification struct {
	Kind    Kind
	Height  uint
	Hash    string
	Address string
}

// Classify decides what the raw query string refers to without touching the
// store. Classification is pure and never fails, malformed input maps to
// KindUnknown and whitespace to KindEmpty.
func Classify(q string, hint Hint) Classification {
	q = strings.TrimSpace(q)
	if len(q) == 0 {
		return Classification{Kind: KindEmpty}
	}

	switch hint {
	case HintBlock:
		if height, err := strconv.ParseUint(q, 10, 64); err == nil {
			return Classification{Kind: KindHeight, Height: uint(height)}
		}
	case HintTransaction:
		if common.IsHash(q) {
			return Classification{Kind: KindHash, Hash: common.NormalizeHash(q)}
		}
	case HintAddress:
		if common.IsAddress(q) {
			return Classification{Kind: KindAddress, Address: q}
		}
	default:
		if height, err := strconv.ParseUint(q, 10, 64); err == nil {
			return Classification{Kind: KindHeight, Height: uint(height)}
		}
		if common.IsHash(q) {
			return Classification{Kind: KindHash, Hash: common.NormalizeHash(q)}
		}
		if common.IsAddress(q) {
			return Classification{Kind: KindAddress, Address: q}
		}
	}
	return Classification{Kind: KindUnknown}
}

const (
	ResultBlock       = "block"
	ResultTransaction = "transaction"
	ResultAddress     = "address"
)

// Result holds exactly one resolved entity.
type Result struct {
	Type    string                 `json:"type"`
	Block   *models.Block          `json:"block,omitempty"`
	Tx      *models.Transaction    `json:"transaction,omitempty"`
	Address *models.AddressSummary `json:"address,omitempty"`
}

// Store is the subset of the index the router dispatches lookups to.
// A nil return means the key is unknown.
type Store interface {
	GetBlockByHeight(height uint) *models.Block
	GetBlockByHash(hash string) *models.Block
	GetTransactionByHash(hash string) *models.Transaction
	GetAddressSummary(address string) *models.AddressSummary
}

type Router struct {
	store Store
}

func NewRouter(store Store) *Router {
	return &Router{store: store}
}

// Resolve classifies q and dispatches the matching lookup. The second return
// is false when nothing matched, including empty input. Resolution never
// returns an error, anything malformed is just no match.
func (r *Router) Resolve(q string, hint Hint) (*Result, bool) {
	cls := Classify(q, hint)

	switch cls.Kind {
	case KindHeight:
		if block := r.store.GetBlockByHeight(cls.Height); block != nil {
			return &Result{Type: ResultBlock, Block: block}, true
		}
	case KindHash:
		// Block hash takes priority over transaction hash. Only a hash
		// absent from the block index falls through to the tx lookup.
		if hint != HintTransaction {
			if block := r.store.GetBlockByHash(cls.Hash); block != nil {
				return &Result{Type: ResultBlock, Block: block}, true
			}
		}
		if tx := r.store.GetTransactionByHash(cls.Hash); tx != nil {
			return &Result{Type: ResultTransaction, Tx: tx}, true
		}
	case KindAddress:
		if summary := r.store.GetAddressSummary(cls.Address); summary != nil {
			return &Result{Type: ResultAddress, Address: summary}, true
		}
	}
	return nil, false
}
