package lookup

import "github.com/grubapp/grub/internal/storage"

// Product is the OpenFoodFacts product shape, reduced to the fields we
// consume.
type Product struct {
	Code        string     `json:"code"`
	ProductName string     `json:"product_name"`
	Brands      string     `json:"brands"`
	Nutriments  Nutriments `json:"nutriments"`
}

// Nutriments carries per-100g values. EnergyKcal is a pointer because
// products without it are unusable and get dropped.
type Nutriments struct {
	EnergyKcal *float64 `json:"energy-kcal_100g"`
	Proteins   *float64 `json:"proteins_100g"`
	Carbs      *float64 `json:"carbohydrates_100g"`
	Fat        *float64 `json:"fat_100g"`
}

type searchResponse struct {
	Products []Product `json:"products"`
}

type productResponse struct {
	Status  int      `json:"status"`
	Product *Product `json:"product"`
}

// toFood maps a product to an insert payload. Products without a name
// or kcal figure are rejected (nil).
func toFood(p *Product) *storage.NewFood {
	if p == nil || p.ProductName == "" || p.Nutriments.EnergyKcal == nil {
		return nil
	}

	f := &storage.NewFood{
		Name:            p.ProductName,
		CaloriesPer100g: *p.Nutriments.EnergyKcal,
		ProteinPer100g:  p.Nutriments.Proteins,
		CarbsPer100g:    p.Nutriments.Carbs,
		FatPer100g:      p.Nutriments.Fat,
		Source:          "openfoodfacts",
	}
	if p.Brands != "" {
		brand := p.Brands
		f.Brand = &brand
	}
	if p.Code != "" {
		code := p.Code
		f.Barcode = &code
	}
	return f
}
