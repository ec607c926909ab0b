package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildProductFilterSkipsEmptyParams(t *testing.T) {
	filter := buildProductFilter(productQuery{})
	if len(filter) != 0 {
		t.Fatalf("expected empty filter, got %v", filter)
	}
}

func TestBuildProductFilterIgnoresCategoryAll(t *testing.T) {
	filter := buildProductFilter(productQuery{Category: "All"})
	if _, ok := filter["category"]; ok {
		t.Fatalf("expected category 'All' to be skipped, got %v", filter)
	}
}

func TestBuildProductFilterCommaListsBecomeIn(t *testing.T) {
	filter := buildProductFilter(productQuery{Size: "S, M ,L", Color: "Red"})

	sizes, ok := filter["sizes"].(bson.M)
	if !ok {
		t.Fatalf("expected sizes filter, got %v", filter)
	}
	values, ok := sizes["$in"].([]string)
	if !ok || len(values) != 3 || values[1] != "M" {
		t.Fatalf("expected trimmed $in list [S M L], got %v", sizes["$in"])
	}

	colors, ok := filter["colors"].(bson.M)
	if !ok {
		t.Fatalf("expected colors filter, got %v", filter)
	}
	if values, _ := colors["$in"].([]string); len(values) != 1 || values[0] != "Red" {
		t.Fatalf("expected single color Red, got %v", colors["$in"])
	}
}

func TestBuildProductFilterPriceRange(t *testing.T) {
	filter := buildProductFilter(productQuery{MinPrice: "10", MaxPrice: "50"})

	price, ok := filter["price"].(bson.M)
	if !ok {
		t.Fatalf("expected price filter, got %v", filter)
	}
	if price["$gte"] != 10.0 || price["$lte"] != 50.0 {
		t.Fatalf("expected 10..50 range, got %v", price)
	}

	filter = buildProductFilter(productQuery{MinPrice: "abc"})
	if _, ok := filter["price"]; ok {
		t.Fatalf("expected malformed minPrice to be skipped, got %v", filter)
	}
}

func TestBuildProductFilterSearchMatchesNameAndDescription(t *testing.T) {
	filter := buildProductFilter(productQuery{Search: "tee"})

	clauses, ok := filter["$or"].([]bson.M)
	if !ok || len(clauses) != 2 {
		t.Fatalf("expected $or over name and description, got %v", filter)
	}
}

func TestProductSort(t *testing.T) {
	if sort := productSort("priceAsc"); sort[0].Key != "price" || sort[0].Value != 1 {
		t.Fatalf("expected ascending price sort, got %v", sort)
	}
	if sort := productSort("priceDesc"); sort[0].Key != "price" || sort[0].Value != -1 {
		t.Fatalf("expected descending price sort, got %v", sort)
	}
	if sort := productSort("popularity"); sort[0].Key != "rating" {
		t.Fatalf("expected rating sort, got %v", sort)
	}
	if sort := productSort(""); sort[0].Key != "createdAt" {
		t.Fatalf("expected newest-first default sort, got %v", sort)
	}
}
