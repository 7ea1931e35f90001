// Package query implements the list pipeline for items: pagination parsing,
// filter parsing and application, allow-listed stable sorting, and the page
// slice with its metadata. It operates on plain slices so any repository can
// back it.
package query

import (
	"sort"
	"strconv"
	"strings"

	"bazaar/internal/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// sortKeys is the allow-list for the sortBy parameter.
var sortKeys = map[string]bool{
	"id":        true,
	"name":      true,
	"price":     true,
	"createdAt": true,
	"updatedAt": true,
}

// Params holds the parsed query parameters of a list request. Nil pointer
// fields mean the filter was not requested.
type Params struct {
	Page       int
	Limit      int
	Search     string
	CategoryID *uint
	UserID     *uint
	MinPrice   *float64
	MaxPrice   *float64
	Active     *bool
	Tags       []string
	SortBy     string
	SortOrder  string
}

// Pagination is the page metadata returned alongside every list response.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalItems      int  `json:"totalItems"`
	ItemsPerPage    int  `json:"itemsPerPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Parse builds Params from raw query parameters. Unparseable values fall back
// to their defaults rather than failing the request.
func Parse(raw map[string]string) Params {
	p := Params{
		Page:      1,
		Limit:     DefaultLimit,
		SortBy:    "id",
		SortOrder: "asc",
	}

	if v, err := strconv.Atoi(raw["page"]); err == nil && v > 1 {
		p.Page = v
	}
	if v, err := strconv.Atoi(raw["limit"]); err == nil {
		switch {
		case v < 1:
			p.Limit = 1
		case v > MaxLimit:
			p.Limit = MaxLimit
		default:
			p.Limit = v
		}
	}

	p.Search = strings.TrimSpace(raw["search"])
	if v, err := strconv.ParseUint(raw["category"], 10, 32); err == nil {
		id := uint(v)
		p.CategoryID = &id
	}
	if v, err := strconv.ParseUint(raw["userId"], 10, 32); err == nil {
		id := uint(v)
		p.UserID = &id
	}
	if v, err := strconv.ParseFloat(raw["minPrice"], 64); err == nil {
		p.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(raw["maxPrice"], 64); err == nil {
		p.MaxPrice = &v
	}
	if v, err := strconv.ParseBool(raw["active"]); err == nil {
		p.Active = &v
	}
	for _, tag := range strings.Split(raw["tags"], ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			p.Tags = append(p.Tags, tag)
		}
	}

	if sortKeys[raw["sortBy"]] {
		p.SortBy = raw["sortBy"]
	}
	if raw["sortOrder"] == "desc" {
		p.SortOrder = "desc"
	}
	return p
}

// Apply runs the pipeline over items: filter, stable sort, slice. It returns
// the requested page and the pagination metadata computed from the full
// filtered set.
func (p Params) Apply(items []models.Item) ([]models.Item, Pagination) {
	filtered := make([]models.Item, 0, len(items))
	for _, item := range items {
		if p.matches(item) {
			filtered = append(filtered, item)
		}
	}

	p.sortItems(filtered)

	totalItems := len(filtered)
	totalPages := (totalItems + p.Limit - 1) / p.Limit
	skip := (p.Page - 1) * p.Limit

	var page []models.Item
	if skip < totalItems {
		end := skip + p.Limit
		if end > totalItems {
			end = totalItems
		}
		page = filtered[skip:end]
	} else {
		page = []models.Item{}
	}

	return page, Pagination{
		CurrentPage:     p.Page,
		TotalPages:      totalPages,
		TotalItems:      totalItems,
		ItemsPerPage:    p.Limit,
		HasNextPage:     skip+p.Limit < totalItems,
		HasPreviousPage: p.Page > 1,
	}
}

// matches reports whether an item passes every requested filter. Criteria are
// ANDed; tag matching and search field matching are ORed internally.
func (p Params) matches(item models.Item) bool {
	// Default visibility hides inactive items unless active=false was asked for.
	if p.Active != nil {
		if item.IsActive != *p.Active {
			return false
		}
	} else if !item.IsActive {
		return false
	}

	if p.CategoryID != nil {
		if item.CategoryID == nil || *item.CategoryID != *p.CategoryID {
			return false
		}
	}
	if p.UserID != nil && item.UserID != *p.UserID {
		return false
	}
	if p.MinPrice != nil && item.Price < *p.MinPrice {
		return false
	}
	if p.MaxPrice != nil && item.Price > *p.MaxPrice {
		return false
	}
	if p.Search != "" && !matchesSearch(item, p.Search) {
		return false
	}
	if len(p.Tags) > 0 && !matchesAnyTag(item.Tags, p.Tags) {
		return false
	}
	return true
}

// matchesSearch does a case-insensitive substring match against the item
// name, description, or any tag.
func matchesSearch(item models.Item, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(item.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Description), needle) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// matchesAnyTag reports whether the item has at least one tag equal,
// case-insensitively, to any wanted tag.
func matchesAnyTag(itemTags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range itemTags {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}

// sortItems sorts in place by the allow-listed key. The sort is stable so
// ties keep the repository's id order.
func (p Params) sortItems(items []models.Item) {
	desc := p.SortOrder == "desc"
	less := func(a, b models.Item) bool { return a.ID < b.ID }

	switch p.SortBy {
	case "name":
		less = func(a, b models.Item) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case "price":
		less = func(a, b models.Item) bool { return a.Price < b.Price }
	case "createdAt":
		less = func(a, b models.Item) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updatedAt":
		less = func(a, b models.Item) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}

	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// Filters summarizes the active filter criteria for echoing in responses.
func (p Params) Filters() map[string]interface{} {
	filters := map[string]interface{}{}
	if p.Search != "" {
		filters["search"] = p.Search
	}
	if p.CategoryID != nil {
		filters["category"] = *p.CategoryID
	}
	if p.UserID != nil {
		filters["userId"] = *p.UserID
	}
	if p.MinPrice != nil {
		filters["minPrice"] = *p.MinPrice
	}
	if p.MaxPrice != nil {
		filters["maxPrice"] = *p.MaxPrice
	}
	if p.Active != nil {
		filters["active"] = *p.Active
	}
	if len(p.Tags) > 0 {
		filters["tags"] = p.Tags
	}
	return filters
}

// Sort summarizes the applied sort for echoing in responses.
func (p Params) Sort() map[string]interface{} {
	return map[string]interface{}{
		"sortBy":    p.SortBy,
		"sortOrder": p.SortOrder,
	}
}
