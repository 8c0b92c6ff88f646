package domain

import "strings"

// FilterByName keeps the products whose trimmed name contains q, ignoring case.
// A blank query returns the input unchanged.
func FilterByName(products []Product, q string) []Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(strings.TrimSpace(p.Name)), q) {
			out = append(out, p)
		}
	}
	return out
}
