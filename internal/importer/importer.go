package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

// CSVImporter reads flat catalog CSV exports and inserts/updates products,
// creating referenced categories on the fly.
//
// Expected headers: category, name, slug, description, price_cents,
// currency, image_url. slug and currency may be empty.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	currency   string
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, defaultCurrency string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
		currency:   defaultCurrency,
	}
}

// Run parses CSV rows and upserts products. Returns how many products were
// written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	categoryIDs := map[string]string{}
	imported := 0

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		name := pick(record, index, "name")
		if name == "" {
			continue
		}

		priceStr := pick(record, index, "price_cents")
		price, err := strconv.ParseInt(priceStr, 10, 64)
		if err != nil || price < 0 {
			return imported, fmt.Errorf("invalid price %q for product %q", priceStr, name)
		}

		var categoryID *string
		if catName := pick(record, index, "category"); catName != "" {
			id, err := i.ensureCategory(ctx, categoryIDs, catName)
			if err != nil {
				return imported, err
			}
			categoryID = &id
		}

		slug := pick(record, index, "slug")
		if slug == "" {
			slug = productsvc.Slugify(name)
		}
		currency := pick(record, index, "currency")
		if currency == "" {
			currency = i.currency
		}

		p := domain.Product{
			CategoryID:  categoryID,
			Name:        name,
			Slug:        slug,
			Description: pick(record, index, "description"),
			PriceCents:  price,
			Currency:    currency,
			ImageURL:    pick(record, index, "image_url"),
			IsActive:    true,
		}
		if _, err := i.products.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", slug, err)
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) ensureCategory(ctx context.Context, cache map[string]string, name string) (string, error) {
	slug := productsvc.Slugify(name)
	if id, ok := cache[slug]; ok {
		return id, nil
	}
	cat, err := i.categories.Upsert(ctx, domain.Category{Name: name, Slug: slug})
	if err != nil {
		return "", fmt.Errorf("upsert category %q: %w", slug, err)
	}
	cache[slug] = cat.ID
	return cat.ID, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
