package model

import (
	"errors"
	"time"
)

var ErrCollectionNotFound = errors.New("no collection with the given slug")

// Collection is a marketplace listing. The fields are demo data; the
// interesting behavior is what happens to them on the way out.
type Collection struct {
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	FloorPriceEth float64   `json:"floor_price_eth"`
	VolumeEth     float64   `json:"volume_eth"`
	ItemCount     int       `json:"item_count"`
	OwnerCount    int       `json:"owner_count"`
	Sparkline     []float64 `json:"sparkline"`
}

type SwapRequest struct {
	FromToken string  `json:"from_token"`
	ToToken   string  `json:"to_token"`
	AmountIn  float64 `json:"amount_in"`
}

type SwapQuote struct {
	FromToken string    `json:"from_token"`
	ToToken   string    `json:"to_token"`
	AmountIn  float64   `json:"amount_in"`
	AmountOut float64   `json:"amount_out"`
	FeeBps    int       `json:"fee_bps"`
	ExpiresAt time.Time `json:"expires_at"`
}
