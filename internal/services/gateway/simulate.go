package gateway

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
)

// SimulateGateway is a deterministic in-process exchange. Orders fill
// instantly and exactly at the configured price.
type SimulateGateway struct {
	mu     sync.Mutex
	logger *zap.Logger
	price  decimal.Decimal
}

// NewSimulateGateway creates a simulator quoting a fixed price.
func NewSimulateGateway(price decimal.Decimal, logger *zap.Logger) (*SimulateGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("simulate gateway requires a positive price")
	}
	return &SimulateGateway{logger: logger, price: price}, nil
}

// SetPrice updates the quoted price.
func (g *SimulateGateway) SetPrice(price decimal.Decimal) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.price = price
}

func (g *SimulateGateway) GetQuote(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.price, nil
}

func (g *SimulateGateway) PlaceMarketOrder(ctx context.Context, pair domain.Pair, quantity decimal.Decimal, clientOrderID string) (Fill, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	orderID := clientOrderID
	if orderID == "" {
		orderID = "sim"
	}

	g.logger.Info("simulated fill",
		zap.String("pair", pair.String()),
		zap.String("quantity", quantity.String()),
		zap.String("price", g.price.String()))

	return Fill{
		Quantity: quantity.RoundFloor(domain.QuantityPrecision),
		Price:    g.price,
		OrderID:  orderID,
	}, nil
}
