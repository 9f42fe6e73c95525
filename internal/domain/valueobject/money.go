package valueobject

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

// maxPriceCents соответствует NUMERIC(10,2).
const maxPriceCents int64 = 99_999_999_99

// Price цена заказа в копейках (центах), чтобы не терять точность на float.
type Price struct {
	cents int64
}

func NewPriceFromCents(cents int64) (Price, error) {
	if cents < 0 {
		return Price{}, apperror.Validation("цена не может быть отрицательной")
	}
	if cents > maxPriceCents {
		return Price{}, apperror.Validation("цена слишком большая")
	}
	return Price{cents: cents}, nil
}

func NewPrice(amount float64) (Price, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Price{}, apperror.Validation("некорректная цена")
	}
	return NewPriceFromCents(int64(math.Round(amount * 100)))
}

// ParsePrice разбирает строку вида "100", "100.5" или "100.00". Знак "+" и
// экспонента не принимаются.
func ParsePrice(raw string) (Price, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Price{}, apperror.Validation("цена обязательна")
	}
	if strings.HasPrefix(raw, "-") {
		return Price{}, apperror.Validation("цена не может быть отрицательной")
	}
	whole, frac, hasFrac := strings.Cut(raw, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return Price{}, apperror.Validation("у цены не больше двух знаков после запятой")
	}
	if !isDigits(whole) || (hasFrac && !isDigits(frac)) {
		return Price{}, apperror.Validation("некорректная цена")
	}
	for len(frac) < 2 {
		frac += "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > maxPriceCents/100 {
		return Price{}, apperror.Validation("некорректная цена")
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return Price{}, apperror.Validation("некорректная цена")
	}
	return NewPriceFromCents(units*100 + cents)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (p Price) Cents() int64 { return p.cents }

func (p Price) Float() float64 { return float64(p.cents) / 100 }

func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", p.cents/100, p.cents%100)
}
