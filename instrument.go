package portfolio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

// Kind tells apart the two sorts of instruments.
type Kind int

const (
	KindSecurity Kind = iota + 1 // stocks, funds, any priced asset
	KindCurrency                 // a cash currency, priced as an exchange rate
)

func (k Kind) String() string {
	switch k {
	case KindSecurity:
		return "security"
	case KindCurrency:
		return "currency"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "security" or "currency".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "security", "stock", "fund":
		return KindSecurity, nil
	case "currency", "cash":
		return KindCurrency, nil
	}
	return 0, fmt.Errorf("%w kind %q, want security or currency", ErrInvalid, s)
}

// Instrument is anything that can be bought or sold: a security or a currency.
//
// A security is priced in its native Currency. A currency is priced as the
// amount of reporting currency one unit is worth, its Currency is its own code.
type Instrument struct {
	Ticker   string // user facing identifier
	Kind     Kind
	Currency string // ISO 4217 code
	Symbol   string // identifier at the external price source
	Name     string
}

// NewCurrency returns a currency instrument for the ISO code.
func NewCurrency(code, symbol string) Instrument {
	code = strings.ToUpper(code)
	return Instrument{Ticker: code, Kind: KindCurrency, Currency: code, Symbol: symbol, Name: code}
}

// NewSecurity returns a security instrument priced in currency.
func NewSecurity(ticker, currency, symbol string) Instrument {
	return Instrument{Ticker: ticker, Kind: KindSecurity, Currency: strings.ToUpper(currency), Symbol: symbol}
}

// IsCurrency reports whether the instrument is a currency.
func (i Instrument) IsCurrency() bool { return i.Kind == KindCurrency }

// Validate checks the instrument is consistent.
func (i Instrument) Validate() error {
	var errs []error
	if strings.TrimSpace(i.Ticker) == "" {
		errs = append(errs, errors.New("ticker is required"))
	}
	if err := ValidateCurrency(i.Currency); err != nil {
		errs = append(errs, err)
	}
	switch i.Kind {
	case KindSecurity:
		if i.Symbol == "" {
			errs = append(errs, fmt.Errorf("security %q has no source symbol", i.Ticker))
		}
	case KindCurrency:
		if i.Ticker != i.Currency {
			errs = append(errs, fmt.Errorf("currency ticker %q must be its code %q", i.Ticker, i.Currency))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown kind %v", i.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w instrument: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// ValidateCurrency checks that code is a known ISO 4217 currency.
func ValidateCurrency(code string) error {
	if len(code) != 3 || money.GetCurrency(code) == nil {
		return fmt.Errorf("%w currency code %q", ErrInvalid, code)
	}
	return nil
}
