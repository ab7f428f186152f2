package collector

import (
	"errors"
	"testing"

	"patternleader/models"
)

func newTestFactory() *Factory {
	stock := NewStockCollector(&stubBarProvider{name: "yahoo_finance"}, Options{})
	crypto := NewCryptoCollector(&stubBarProvider{name: "binance"}, Options{})
	return NewFactory(stock, crypto)
}

func TestFactoryForMarket(t *testing.T) {
	f := newTestFactory()

	stock, err := f.ForMarket(models.MarketKindStock)
	if err != nil {
		t.Fatalf("ForMarket(stock) error = %v", err)
	}
	if stock.Market() != models.MarketKindStock {
		t.Errorf("Market() = %q, want %q", stock.Market(), models.MarketKindStock)
	}

	crypto, err := f.ForMarket(models.MarketKindCrypto)
	if err != nil {
		t.Fatalf("ForMarket(crypto) error = %v", err)
	}
	if crypto.Market() != models.MarketKindCrypto {
		t.Errorf("Market() = %q, want %q", crypto.Market(), models.MarketKindCrypto)
	}
}

func TestFactoryForMarketUnknown(t *testing.T) {
	f := newTestFactory()

	_, err := f.ForMarket(models.MarketKind("forex"))
	if !errors.Is(err, models.ErrUnsupportedMarket) {
		t.Fatalf("ForMarket(forex) error = %v, want ErrUnsupportedMarket", err)
	}

	want := "지원하지 않는 시장 타입: forex"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestFactorySources(t *testing.T) {
	f := newTestFactory()

	sources := f.Sources()
	if sources["stock"] != "yahoo_finance" {
		t.Errorf("stock source = %q, want yahoo_finance", sources["stock"])
	}
	if sources["crypto"] != "binance" {
		t.Errorf("crypto source = %q, want binance", sources["crypto"])
	}
}
