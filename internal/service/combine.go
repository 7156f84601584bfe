package service

import (
	"github.com/tcgpulse/tcgpulse_api/internal/models"
	"github.com/tcgpulse/tcgpulse_api/pkg/tcgcsv"
)

// CombinedProduct is a feed product joined with its price variants and
// classified as card or sealed.
type CombinedProduct struct {
	tcgcsv.Product
	Type   models.ProductType
	Prices []tcgcsv.Price
}

// CombineProducts joins raw products with their price quotes by product id.
// Output order follows the product feed order, and each product's variants
// keep the price feed order. A product with no quotes gets an empty variant
// list, which is a valid state, not an error.
//
// Classification: a product whose extended data contains an attribute named
// exactly "Number" is a card; anything else (including products without
// extended data) is sealed.
func CombineProducts(products []tcgcsv.Product, prices []tcgcsv.Price) []CombinedProduct {
	pricesByProduct := make(map[int][]tcgcsv.Price, len(products))
	for _, price := range prices {
		pricesByProduct[price.ProductID] = append(pricesByProduct[price.ProductID], price)
	}

	combined := make([]CombinedProduct, 0, len(products))
	for _, product := range products {
		productType := models.ProductTypeSealed
		for _, attr := range product.ExtendedData {
			if attr.Name == "Number" {
				productType = models.ProductTypeCard
				break
			}
		}

		if product.CleanName == "" {
			product.CleanName = product.Name
		}

		combined = append(combined, CombinedProduct{
			Product: product,
			Type:    productType,
			Prices:  pricesByProduct[product.ProductID],
		})
	}
	return combined
}

// BuildPriceRecords expands combined products into flat price snapshots
// stamped with the group metadata and sync date. A product with N >= 1
// variants yields N records copying each variant verbatim; a product with
// no variants yields exactly one record with all prices and the sub-type
// null, so every known product stays represented in history even when
// unpriced. Pure function; deterministic given its inputs.
func BuildPriceRecords(combined []CombinedProduct, group tcgcsv.Group, syncDate string) []models.PriceHistory {
	records := make([]models.PriceHistory, 0, len(combined))

	for _, product := range combined {
		base := models.PriceHistory{
			CategoryID:   &group.CategoryID,
			GroupID:      &group.GroupID,
			SetName:      &group.Name,
			Abbreviation: &group.Abbreviation,
			ProductID:    product.ProductID,
			Name:         product.Name,
			CleanName:    product.CleanName,
			ImageURL:     product.ImageURL,
			URL:          product.URL,
			Type:         product.Type,
			PrevDate:     &syncDate,
		}

		if len(product.Prices) == 0 {
			records = append(records, base)
			continue
		}

		for _, price := range product.Prices {
			rec := base
			rec.SubTypeName = price.SubTypeName
			rec.LowPrice = price.LowPrice
			rec.MidPrice = price.MidPrice
			rec.HighPrice = price.HighPrice
			rec.MarketPrice = price.MarketPrice
			rec.DirectLowPrice = price.DirectLowPrice
			records = append(records, rec)
		}
	}
	return records
}
