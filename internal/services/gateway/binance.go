package gateway

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
)

// BinanceGateway implements Gateway on top of the Binance spot API.
type BinanceGateway struct {
	client *binance.Client
}

func NewBinanceGateway(client *binance.Client) *BinanceGateway {
	return &BinanceGateway{client: client}
}

func (g *BinanceGateway) GetQuote(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	prices, err := g.client.NewListPricesService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, fmt.Errorf("binance API returned empty prices for %s", pair.String())
	}

	return decimal.NewFromString(prices[0].Price)
}

func (g *BinanceGateway) PlaceMarketOrder(ctx context.Context, pair domain.Pair, quantity decimal.Decimal, clientOrderID string) (Fill, error) {
	quantity = quantity.RoundFloor(domain.QuantityPrecision)

	order, err := g.client.NewCreateOrderService().Symbol(pair.Symbol()).
		Side(binance.SideTypeBuy).Type(binance.OrderTypeMarket).
		Quantity(quantity.String()).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return Fill{}, errors.Wrap(err, "failed to create buy order")
	}

	executedQty, err := decimal.NewFromString(order.ExecutedQuantity)
	if err != nil {
		return Fill{}, errors.Wrap(err, "failed to parse executed quantity")
	}
	cumQuote, err := decimal.NewFromString(order.CummulativeQuoteQuantity)
	if err != nil {
		return Fill{}, errors.Wrap(err, "failed to parse cumulative quote quantity")
	}
	if executedQty.LessThanOrEqual(decimal.Zero) {
		return Fill{}, fmt.Errorf("binance order %d reported no executed quantity", order.OrderID)
	}

	return Fill{
		Quantity: executedQty,
		Price:    cumQuote.Div(executedQty).RoundFloor(domain.PricePrecision),
		OrderID:  fmt.Sprintf("%d", order.OrderID),
	}, nil
}
