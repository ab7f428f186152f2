package collector

import (
	"fmt"

	"patternleader/models"
)

// Factory hands out the collector registered for a market kind
type Factory struct {
	stock  Collector
	crypto Collector
}

// NewFactory creates a factory serving the given collectors
func NewFactory(stock, crypto Collector) *Factory {
	return &Factory{stock: stock, crypto: crypto}
}

// ForMarket returns the collector for the market kind
func (f *Factory) ForMarket(market models.MarketKind) (Collector, error) {
	switch market {
	case models.MarketKindStock:
		return f.stock, nil
	case models.MarketKindCrypto:
		return f.crypto, nil
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedMarket, market)
	}
}

// Sources reports the backing provider name per market kind
func (f *Factory) Sources() map[string]string {
	return map[string]string{
		string(models.MarketKindStock):  f.stock.Source(),
		string(models.MarketKindCrypto): f.crypto.Source(),
	}
}
