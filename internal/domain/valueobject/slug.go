package valueobject

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

const (
	fallbackSlug  = "listing"
	maxSlugLength = 200
)

// BaseSlug строит URL-безопасный slug из заголовка. Кириллица транслитерируется.
func BaseSlug(title string) string {
	s := slug.Make(title)
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-")
	}
	if s == "" {
		return fallbackSlug
	}
	return s
}

// SlugCandidate возвращает base для n == 0 и base-n для остальных.
func SlugCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// NextFreeSlug выбирает первый свободный вариант: base, base-1, base-2 и т.д.
func NextFreeSlug(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		used[t] = struct{}{}
	}
	for n := 0; ; n++ {
		candidate := SlugCandidate(base, n)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}
