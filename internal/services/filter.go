package services

import (
	"strings"

	"campus-directory/internal/models"
	"campus-directory/internal/utils"
)

// FilterBusinesses narrows businesses by search query, category, minimum
// rating and student discount, in that order. It keeps input order, never
// adds elements and is idempotent. PriceRange and OpenNow are not applied.
func FilterBusinesses(businesses []models.Business, opts models.FilterOptions, searchQuery string) []models.Business {
	query := strings.TrimSpace(searchQuery)

	out := make([]models.Business, 0, len(businesses))
	for _, b := range businesses {
		if query != "" && !utils.NameContains(b.Name, query) {
			continue
		}
		if len(opts.Category) > 0 && !containsFold(opts.Category, b.Category) {
			continue
		}
		if opts.Rating > 0 && b.Rating < opts.Rating {
			continue
		}
		if opts.StudentDiscount && !b.StudentDiscount {
			continue
		}
		out = append(out, b)
	}
	return out
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
