// Package catalog ships the built-in symbol directory behind the supported
// symbols endpoint.
package catalog

import (
	_ "embed"
	"fmt"

	"patternleader/models"

	"gopkg.in/yaml.v3"
)

//go:embed symbols.yaml
var symbolsYAML []byte

// DefaultLimit caps a lookup when the caller does not bound it.
const DefaultLimit = 50

type directory struct {
	Stock  []string `yaml:"stock"`
	Crypto []string `yaml:"crypto"`
}

var symbols directory

func init() {
	if err := yaml.Unmarshal(symbolsYAML, &symbols); err != nil {
		panic(fmt.Sprintf("parse embedded symbol directory: %v", err))
	}
}

// Symbols returns up to limit symbols for the market kind, in directory
// order. A non-positive limit falls back to DefaultLimit.
func Symbols(market models.MarketKind, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var list []string
	switch market {
	case models.MarketKindStock:
		list = symbols.Stock
	case models.MarketKindCrypto:
		list = symbols.Crypto
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedMarket, market)
	}

	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

// Count returns the directory size for the market kind.
func Count(market models.MarketKind) (int, error) {
	switch market {
	case models.MarketKindStock:
		return len(symbols.Stock), nil
	case models.MarketKindCrypto:
		return len(symbols.Crypto), nil
	default:
		return 0, fmt.Errorf("%w: %s", models.ErrUnsupportedMarket, market)
	}
}
