package foods

// CreateFoodRequest is the POST /api/foods payload.
type CreateFoodRequest struct {
	Name            string   `json:"name"`
	Brand           *string  `json:"brand"`
	Barcode         *string  `json:"barcode"`
	CaloriesPer100g float64  `json:"calories_per_100g"`
	ProteinPer100g  *float64 `json:"protein_per_100g"`
	CarbsPer100g    *float64 `json:"carbs_per_100g"`
	FatPer100g      *float64 `json:"fat_per_100g"`
	DefaultServingG *float64 `json:"default_serving_g"`
	Source          *string  `json:"source"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
