package core

// Classify partitions enriched rows into the six upload buckets. Each row is
// checked in priority order and lands in the first bucket that matches:
//
//  1. purchasing disabled
//  2. tracked stock and none left
//  3. tracked stock but fewer than requested
//  4. below minimum purchase quantity
//  5. above maximum purchase quantity
//  6. accepted
//
// Comparisons are strict, so ordering exactly the stock, minimum or maximum
// is accepted. Missing or non-numeric ids become 0 and such rows are still
// accepted if nothing else rejects them.
func Classify(rows []EnrichedRow) Classification {
	c := Classification{
		NotPurchasable:    []string{},
		Accepted:          []AcceptedProduct{},
		InsufficientStock: []StockLimit{},
		BelowMinQuantity:  []MinQuantityLimit{},
		AboveMaxQuantity:  []MaxQuantityLimit{},
		OutOfStock:        []string{},
	}

	for _, row := range rows {
		p := row.Product
		qty := row.Quantity.Number()
		stock := p.Stock.Number()
		tracked := p.IsStock == "1"
		minQty := p.MinQuantity.Number()
		maxQty := p.MaxQuantity.Number()

		switch {
		case p.PurchasingDisabled == "1":
			c.NotPurchasable = append(c.NotPurchasable, p.VariantSku)

		case tracked && stock == 0:
			c.OutOfStock = append(c.OutOfStock, p.VariantSku)

		case tracked && stock > 0 && stock < qty:
			c.InsufficientStock = append(c.InsufficientStock, StockLimit{
				VariantSku:      p.VariantSku,
				AvailableAmount: stock,
			})

		case minQty > 0 && qty < minQty:
			c.BelowMinQuantity = append(c.BelowMinQuantity, MinQuantityLimit{
				VariantSku:  p.VariantSku,
				MinQuantity: minQty,
			})

		case maxQty > 0 && qty > maxQty:
			c.AboveMaxQuantity = append(c.AboveMaxQuantity, MaxQuantityLimit{
				VariantSku:  p.VariantSku,
				MaxQuantity: maxQty,
			})

		default:
			c.Accepted = append(c.Accepted, AcceptedProduct{
				ProductID:  p.ProductID.Int(),
				VariantID:  p.VariantID.Int(),
				Quantity:   qty,
				OptionList: optionSelections(p.Options),
			})
		}
	}

	return c
}

func optionSelections(options []ProductOption) []OptionSelection {
	out := make([]OptionSelection, 0, len(options))
	for _, o := range options {
		out = append(out, OptionSelection{
			OptionID:    o.OptionID.String(),
			OptionValue: o.ValueID.String(),
		})
	}
	return out
}

// ClassifyResult classifies an enrichment result and attaches the backend's
// stock error file only when it also reported stock-error skus.
func ClassifyResult(result *EnrichmentResult) Classification {
	if result == nil {
		return Classify(nil)
	}
	c := Classify(result.ValidProduct)
	if len(result.StockErrorSkus) > 0 {
		c.StockErrorFile = result.StockErrorFile
	}
	return c
}
