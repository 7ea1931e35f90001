package query_test

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bazaar/internal/models"
	"bazaar/internal/query"
)

func makeItem(id uint, name string, price float64, tags ...string) models.Item {
	return models.Item{
		ID:          id,
		Name:        name,
		Description: "description of " + name,
		Price:       price,
		Tags:        tags,
		IsActive:    true,
		CreatedAt:   time.Unix(int64(1700000000+id), 0),
		UpdatedAt:   time.Unix(int64(1700000000+id), 0),
	}
}

func TestParseDefaults(t *testing.T) {
	p := query.Parse(map[string]string{})

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, query.DefaultLimit, p.Limit)
	assert.Equal(t, "id", p.SortBy)
	assert.Equal(t, "asc", p.SortOrder)
	assert.Nil(t, p.CategoryID)
	assert.Nil(t, p.UserID)
	assert.Nil(t, p.MinPrice)
	assert.Nil(t, p.MaxPrice)
	assert.Nil(t, p.Active)
	assert.Empty(t, p.Tags)
}

func TestParseClampingAndFallbacks(t *testing.T) {
	p := query.Parse(map[string]string{
		"page":      "-3",
		"limit":     "1000",
		"sortBy":    "password", // not on the allow-list
		"sortOrder": "sideways",
	})
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, query.MaxLimit, p.Limit)
	assert.Equal(t, "id", p.SortBy)
	assert.Equal(t, "asc", p.SortOrder)

	p = query.Parse(map[string]string{"limit": "0"})
	assert.Equal(t, 1, p.Limit)

	p = query.Parse(map[string]string{"page": "abc", "limit": "xyz"})
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, query.DefaultLimit, p.Limit)
}

func TestParseFilters(t *testing.T) {
	p := query.Parse(map[string]string{
		"category":  "3",
		"userId":    "7",
		"minPrice":  "10.5",
		"maxPrice":  "99.9",
		"active":    "false",
		"search":    "  phone ",
		"tags":      "red, blue,,  green ",
		"sortBy":    "price",
		"sortOrder": "desc",
	})

	if assert.NotNil(t, p.CategoryID) {
		assert.Equal(t, uint(3), *p.CategoryID)
	}
	if assert.NotNil(t, p.UserID) {
		assert.Equal(t, uint(7), *p.UserID)
	}
	if assert.NotNil(t, p.MinPrice) {
		assert.Equal(t, 10.5, *p.MinPrice)
	}
	if assert.NotNil(t, p.MaxPrice) {
		assert.Equal(t, 99.9, *p.MaxPrice)
	}
	if assert.NotNil(t, p.Active) {
		assert.False(t, *p.Active)
	}
	assert.Equal(t, "phone", p.Search)
	assert.Equal(t, []string{"red", "blue", "green"}, p.Tags)
	assert.Equal(t, "price", p.SortBy)
	assert.Equal(t, "desc", p.SortOrder)
}

func TestPriceRangeFilterRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		items := make([]models.Item, 0, 200)
		for i := 1; i <= 200; i++ {
			items = append(items, makeItem(uint(i), fmt.Sprintf("item-%d", i), float64(rng.Intn(100000))/100))
		}

		x := float64(rng.Intn(50000)) / 100
		y := x + float64(rng.Intn(50000))/100

		p := query.Parse(map[string]string{
			"minPrice": strconv.FormatFloat(x, 'f', 2, 64),
			"maxPrice": strconv.FormatFloat(y, 'f', 2, 64),
			"limit":    "100",
		})
		page, pagination := p.Apply(items)

		expected := 0
		for _, item := range items {
			if item.Price >= x && item.Price <= y {
				expected++
			}
		}
		assert.Equal(t, expected, pagination.TotalItems)
		for _, item := range page {
			assert.GreaterOrEqual(t, item.Price, x)
			assert.LessOrEqual(t, item.Price, y)
		}
	}
}

func TestPaginationCoversFilteredSetExactlyOnce(t *testing.T) {
	const n, limit = 37, 10
	items := make([]models.Item, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, makeItem(uint(i), fmt.Sprintf("item-%02d", i), float64(i)))
	}

	full, pagination := query.Params{Page: 1, Limit: 100, SortBy: "price", SortOrder: "asc"}.Apply(items)
	assert.Equal(t, n, pagination.TotalItems)

	var seen []models.Item
	totalPages := (n + limit - 1) / limit
	for page := 1; page <= totalPages; page++ {
		p := query.Params{Page: page, Limit: limit, SortBy: "price", SortOrder: "asc"}
		pageItems, meta := p.Apply(items)

		assert.Equal(t, totalPages, meta.TotalPages)
		assert.Equal(t, n, meta.TotalItems)
		assert.Equal(t, limit, meta.ItemsPerPage)
		assert.Equal(t, page < totalPages, meta.HasNextPage)
		assert.Equal(t, page > 1, meta.HasPreviousPage)

		seen = append(seen, pageItems...)
	}

	assert.Equal(t, full, seen, "concatenated pages must reproduce the sorted filtered set")
}

func TestPaginationPastTheEnd(t *testing.T) {
	items := []models.Item{makeItem(1, "only", 1)}
	page, meta := query.Params{Page: 5, Limit: 10, SortBy: "id", SortOrder: "asc"}.Apply(items)

	assert.Empty(t, page)
	assert.Equal(t, 1, meta.TotalItems)
	assert.False(t, meta.HasNextPage)
	assert.True(t, meta.HasPreviousPage)
}

func TestSortByNameCaseInsensitive(t *testing.T) {
	items := []models.Item{
		makeItem(1, "zebra", 1),
		makeItem(2, "Apple", 2),
		makeItem(3, "mango", 3),
		makeItem(4, "BANANA", 4),
	}

	sorted, _ := query.Params{Page: 1, Limit: 10, SortBy: "name", SortOrder: "asc"}.Apply(items)
	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t,
			strings.ToLower(sorted[i-1].Name),
			strings.ToLower(sorted[i].Name))
	}
	assert.Equal(t, "Apple", sorted[0].Name)
	assert.Equal(t, "zebra", sorted[len(sorted)-1].Name)

	reversed, _ := query.Params{Page: 1, Limit: 10, SortBy: "name", SortOrder: "desc"}.Apply(items)
	assert.Equal(t, "zebra", reversed[0].Name)
}

func TestSortTiesKeepStoreOrder(t *testing.T) {
	items := []models.Item{
		makeItem(1, "same", 5),
		makeItem(2, "same", 5),
		makeItem(3, "same", 5),
	}

	for _, order := range []string{"asc", "desc"} {
		sorted, _ := query.Params{Page: 1, Limit: 10, SortBy: "price", SortOrder: order}.Apply(items)
		ids := []uint{sorted[0].ID, sorted[1].ID, sorted[2].ID}
		assert.Equal(t, []uint{1, 2, 3}, ids, "ties must keep id order for %s", order)
	}
}

func TestTagFilterUsesOrSemantics(t *testing.T) {
	items := []models.Item{
		makeItem(1, "first", 1, "red", "small"),
		makeItem(2, "second", 2, "BLUE"),
		makeItem(3, "third", 3, "green"),
	}

	p := query.Parse(map[string]string{"tags": "red,blue", "limit": "10"})
	matched, meta := p.Apply(items)

	assert.Equal(t, 2, meta.TotalItems)
	assert.Equal(t, uint(1), matched[0].ID)
	assert.Equal(t, uint(2), matched[1].ID, "tag matching must be case-insensitive")
}

func TestSearchMatchesNameDescriptionAndTags(t *testing.T) {
	byName := makeItem(1, "Smartphone", 1)
	byDescription := makeItem(2, "second", 2)
	byDescription.Description = "a phone for testing"
	byTag := makeItem(3, "third", 3, "Phones")
	noMatch := makeItem(4, "fourth", 4)

	p := query.Parse(map[string]string{"search": "PHONE", "limit": "10"})
	matched, meta := p.Apply([]models.Item{byName, byDescription, byTag, noMatch})

	assert.Equal(t, 3, meta.TotalItems)
	for _, item := range matched {
		assert.NotEqual(t, uint(4), item.ID)
	}
}

func TestDefaultVisibilityExcludesInactive(t *testing.T) {
	active := makeItem(1, "visible", 1)
	inactive := makeItem(2, "hidden", 2)
	inactive.IsActive = false
	items := []models.Item{active, inactive}

	matched, meta := query.Parse(map[string]string{}).Apply(items)
	assert.Equal(t, 1, meta.TotalItems)
	assert.Equal(t, uint(1), matched[0].ID)

	matched, meta = query.Parse(map[string]string{"active": "false"}).Apply(items)
	assert.Equal(t, 1, meta.TotalItems)
	assert.Equal(t, uint(2), matched[0].ID)

	matched, meta = query.Parse(map[string]string{"active": "true"}).Apply(items)
	assert.Equal(t, 1, meta.TotalItems)
	assert.Equal(t, uint(1), matched[0].ID)
}

func TestFiltersAndAcrossCriteria(t *testing.T) {
	categoryID := uint(1)
	match := makeItem(1, "Phone", 100, "electronics")
	match.CategoryID = &categoryID
	wrongPrice := makeItem(2, "Phone", 500, "electronics")
	wrongPrice.CategoryID = &categoryID
	wrongCategory := makeItem(3, "Phone", 100, "electronics")

	p := query.Parse(map[string]string{
		"category": "1",
		"minPrice": "50",
		"maxPrice": "200",
		"limit":    "10",
	})
	matched, meta := p.Apply([]models.Item{match, wrongPrice, wrongCategory})

	assert.Equal(t, 1, meta.TotalItems)
	assert.Equal(t, uint(1), matched[0].ID)
}
