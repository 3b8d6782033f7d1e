package library

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the asset attribute a listing is ordered by.
type SortKey string

const (
	SortTitle     SortKey = "title"
	SortDuration  SortKey = "duration"
	SortFileSize  SortKey = "fileSize"
	SortCreatedAt SortKey = "createdAt"
)

// Order selects ascending or descending listing order.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseSortKey maps a request value to a known sort key, defaulting to createdAt.
func ParseSortKey(value string) SortKey {
	switch SortKey(strings.TrimSpace(value)) {
	case SortTitle:
		return SortTitle
	case SortDuration:
		return SortDuration
	case SortFileSize:
		return SortFileSize
	default:
		return SortCreatedAt
	}
}

// ParseOrder maps a request value to an order, defaulting to descending.
func ParseOrder(value string) Order {
	if Order(strings.TrimSpace(value)) == OrderAsc {
		return OrderAsc
	}
	return OrderDesc
}

// sortAudios orders assets with a three-way comparator so ties collapse to a
// deterministic id ordering. Title comparison is case-insensitive collation.
func sortAudios(audios []AudioAsset, key SortKey, order Order) {
	var collator *collate.Collator
	if key == SortTitle {
		collator = collate.New(language.Und, collate.IgnoreCase)
	}

	compare := func(a, b AudioAsset) int {
		var result int
		switch key {
		case SortTitle:
			result = collator.CompareString(a.Title, b.Title)
		case SortDuration:
			result = cmp.Compare(a.Duration, b.Duration)
		case SortFileSize:
			result = cmp.Compare(a.FileSize, b.FileSize)
		default:
			result = a.CreatedAt.Compare(b.CreatedAt)
		}
		if result == 0 {
			result = strings.Compare(a.ID, b.ID)
		}
		if order == OrderDesc {
			result = -result
		}
		return result
	}

	slices.SortStableFunc(audios, compare)
}
