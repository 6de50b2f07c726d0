package binancedata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"strategyLab/internal/domain"
	"strategyLab/internal/ports"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
)

// Spot klines endpoint caps a single request at 1000 rows.
const maxKlinesPerRequest = 1000

// Client fetches historical candles and ticker prices from Binance spot
// market data endpoints. Both are public, so API keys are optional; they are
// only forwarded for the higher request weight allowance.
type Client struct {
	api    *binance.Client
	logger ports.Logger
}

// Config holds configuration specific to the Binance data adapter.
type Config struct {
	APIKey    string
	SecretKey string
	Logger    ports.Logger
}

// New creates a new Binance market data adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfigurationError)
	}
	return &Client{
		api:    binance.NewClient(cfg.APIKey, cfg.SecretKey),
		logger: cfg.Logger,
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1120, -1121: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrProviderUnavailable
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// Fetch retrieves all candles for the symbol/timeframe between start and
// end, paging through the API in maxKlinesPerRequest chunks. Implements
// ports.HistoricalDataProvider.
func (c *Client) Fetch(ctx context.Context, symbol string, timeframe domain.Timeframe, start, end time.Time) ([]*domain.Candle, error) {
	op := "Fetch"
	var all []*domain.Candle
	from := start

	for {
		klines, err := c.api.NewKlinesService().
			Symbol(symbol).
			Interval(string(timeframe)).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(maxKlinesPerRequest).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(klines) == 0 {
			break
		}

		for _, bk := range klines {
			candle, err := translateKline(bk, symbol, timeframe)
			if err != nil {
				return nil, c.handleError(ctx, fmt.Errorf("translating kline: %w", err), op)
			}
			all = append(all, candle)
		}

		last := klines[len(klines)-1]
		from = time.UnixMilli(last.CloseTime)
		if from.After(end) || len(klines) < maxKlinesPerRequest {
			break
		}
	}

	c.logger.Debug(ctx, "Fetched historical candles", map[string]interface{}{
		"symbol":    symbol,
		"timeframe": timeframe,
		"count":     len(all),
	})
	return all, nil
}

// GetTickerPrice retrieves the last traded price for a symbol. Implements
// ports.PriceSource.
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	op := "GetTickerPrice"
	prices, err := c.api.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(prices) == 0 {
		return 0, c.handleError(ctx, fmt.Errorf("no ticker data returned for symbol %s", symbol), op)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, c.handleError(ctx, fmt.Errorf("could not parse price '%s': %w", prices[0].Price, err), op)
	}
	return price, nil
}

func translateKline(bk *binance.Kline, symbol string, timeframe domain.Timeframe) (*domain.Candle, error) {
	if bk == nil {
		return nil, errors.New("received nil kline")
	}
	open, err := strconv.ParseFloat(bk.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing open price '%s': %w", bk.Open, err)
	}
	high, err := strconv.ParseFloat(bk.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing high price '%s': %w", bk.High, err)
	}
	low, err := strconv.ParseFloat(bk.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing low price '%s': %w", bk.Low, err)
	}
	cls, err := strconv.ParseFloat(bk.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing close price '%s': %w", bk.Close, err)
	}
	vol, err := strconv.ParseFloat(bk.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing volume '%s': %w", bk.Volume, err)
	}

	return &domain.Candle{
		OpenTime:  time.UnixMilli(bk.OpenTime),
		CloseTime: time.UnixMilli(bk.CloseTime),
		Symbol:    symbol,
		Timeframe: timeframe,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
	}, nil
}
