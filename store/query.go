package store

import (
	"sort"
	"strings"

	"edpharma/models"
)

type SortOrder string

const (
	SortNewest  SortOrder = "newest"
	SortOldest  SortOrder = "oldest"
	SortHighest SortOrder = "highest"
	SortLowest  SortOrder = "lowest"
)

func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case "":
		return SortNewest, true
	case SortNewest, SortOldest, SortHighest, SortLowest:
		return SortOrder(s), true
	}
	return "", false
}

type OrderQuery struct {
	// OwnerID empty means every owner.
	OwnerID string
	Status  models.OrderStatus
	// Search is a case-insensitive substring of the order id or of any item name.
	Search string
	Sort   SortOrder
}

// Matches reports whether o passes the query's owner, status and search filters.
func (q OrderQuery) Matches(o *models.Order) bool {
	if q.OwnerID != "" && o.UserID != q.OwnerID {
		return false
	}
	if q.Status != "" && o.Status != q.Status {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(o.ID), needle) {
		return true
	}
	for _, item := range o.Items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			return true
		}
	}
	return false
}

// SortOrders sorts in place. Ties fall back to the id so repeated listings are stable.
func SortOrders(orders []models.Order, by SortOrder) {
	less := func(a, b *models.Order) bool {
		switch by {
		case SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case SortHighest:
			if a.Total != b.Total {
				return a.Total > b.Total
			}
		case SortLowest:
			if a.Total != b.Total {
				return a.Total < b.Total
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return less(&orders[i], &orders[j])
	})
}
