package handlers

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

type productQuery struct {
	Category string
	Gender   string
	Color    string
	Size     string
	Material string
	Brand    string
	MinPrice string
	MaxPrice string
	Search   string
	SortBy   string
}

// buildProductFilter translates the collection-page query params into a mongo
// filter. Empty params are skipped; comma lists ($in) are accepted for size,
// color, material and brand the way the storefront sends them.
func buildProductFilter(q productQuery) bson.M {
	filter := bson.M{}

	if category := strings.TrimSpace(q.Category); category != "" && !strings.EqualFold(category, "all") {
		filter["category"] = category
	}
	if gender := strings.TrimSpace(q.Gender); gender != "" {
		filter["gender"] = gender
	}
	if values := splitQueryList(q.Size); len(values) > 0 {
		filter["sizes"] = bson.M{"$in": values}
	}
	if values := splitQueryList(q.Color); len(values) > 0 {
		filter["colors"] = bson.M{"$in": values}
	}
	if values := splitQueryList(q.Material); len(values) > 0 {
		filter["material"] = bson.M{"$in": values}
	}
	if values := splitQueryList(q.Brand); len(values) > 0 {
		filter["brand"] = bson.M{"$in": values}
	}

	price := bson.M{}
	if min, err := strconv.ParseFloat(strings.TrimSpace(q.MinPrice), 64); err == nil {
		price["$gte"] = min
	}
	if max, err := strconv.ParseFloat(strings.TrimSpace(q.MaxPrice), 64); err == nil {
		price["$lte"] = max
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	return filter
}

func splitQueryList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func productSort(sortBy string) bson.D {
	switch sortBy {
	case "priceAsc":
		return bson.D{{Key: "price", Value: 1}}
	case "priceDesc":
		return bson.D{{Key: "price", Value: -1}}
	case "popularity":
		return bson.D{{Key: "rating", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}
