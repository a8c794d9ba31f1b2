package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dannywillems/zcash-dca-bot/internal/domain"
)

// fill settlement on bybit spot is not always visible immediately
// after placement, so the adapter polls order history briefly.
const (
	bybitFillPollAttempts = 5
	bybitFillPollInterval = 500 * time.Millisecond
)

// BybitGateway implements Gateway on top of the Bybit V5 spot API.
type BybitGateway struct {
	client *bybit.Client
}

func NewBybitGateway(client *bybit.Client) *BybitGateway {
	return &BybitGateway{client: client}
}

func (g *BybitGateway) GetQuote(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := g.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	if len(result.Result.Spot.List) == 0 {
		return decimal.Decimal{}, fmt.Errorf("bybit API returned empty prices for %s", pair.String())
	}

	return decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
}

func (g *BybitGateway) PlaceMarketOrder(ctx context.Context, pair domain.Pair, quantity decimal.Decimal, clientOrderID string) (Fill, error) {
	quantity = quantity.RoundFloor(domain.QuantityPrecision)
	symbol := bybit.SymbolV5(pair.Symbol())

	res, err := g.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:    "spot",
		Symbol:      symbol,
		Side:        bybit.SideBuy,
		OrderType:   bybit.OrderTypeMarket,
		Qty:         quantity.String(),
		OrderLinkID: &clientOrderID,
		IsLeverage:  nil,
	})
	if err != nil {
		return Fill{}, errors.Wrap(err, "failed to create buy order")
	}

	orderID := res.Result.OrderID

	fill, err := g.awaitFill(ctx, symbol, orderID)
	if err != nil {
		return Fill{}, errors.Wrapf(err, "order %s placed but fill not confirmed", orderID)
	}
	return fill, nil
}

func (g *BybitGateway) awaitFill(ctx context.Context, symbol bybit.SymbolV5, orderID string) (Fill, error) {
	var lastErr error

	for attempt := 0; attempt < bybitFillPollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Fill{}, ctx.Err()
			case <-time.After(bybitFillPollInterval):
			}
		}

		result, err := g.client.V5().Order().GetHistoryOrders(bybit.V5GetHistoryOrdersParam{
			Category: "spot",
			Symbol:   &symbol,
			OrderID:  &orderID,
		})
		if err != nil {
			lastErr = err
			continue
		}
		if len(result.Result.List) == 0 {
			lastErr = fmt.Errorf("order %s not yet in history", orderID)
			continue
		}

		order := result.Result.List[0]

		executedQty, err := decimal.NewFromString(order.CumExecQty)
		if err != nil {
			return Fill{}, errors.Wrap(err, "failed to parse executed quantity")
		}
		if executedQty.LessThanOrEqual(decimal.Zero) {
			lastErr = fmt.Errorf("order %s has no executed quantity yet", orderID)
			continue
		}
		execValue, err := decimal.NewFromString(order.CumExecValue)
		if err != nil {
			return Fill{}, errors.Wrap(err, "failed to parse executed value")
		}

		return Fill{
			Quantity: executedQty,
			Price:    execValue.Div(executedQty).RoundFloor(domain.PricePrecision),
			OrderID:  orderID,
		}, nil
	}

	return Fill{}, lastErr
}
