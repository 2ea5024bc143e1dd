package recipes

// IngredientRequest references a catalog food by id.
type IngredientRequest struct {
	FoodID    int64   `json:"food_id"`
	QuantityG float64 `json:"quantity_g"`
}

// CreateRecipeRequest is the POST /api/recipes payload. Portions
// defaults to 1.
type CreateRecipeRequest struct {
	Name        string              `json:"name"`
	Portions    *float64            `json:"portions"`
	Ingredients []IngredientRequest `json:"ingredients"`
}

// UpdateRecipeRequest is the PUT /api/recipes/{id} payload. A provided
// ingredients list replaces the existing one wholesale.
type UpdateRecipeRequest struct {
	Name        *string              `json:"name"`
	Portions    *float64             `json:"portions"`
	Ingredients *[]IngredientRequest `json:"ingredients"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
