package meals

import "encoding/json"

// LogMealRequest is the POST /api/meals payload. Either serving_g or
// quantity+unit must be provided; the latter is converted to grams and
// remembered for display.
type LogMealRequest struct {
	FoodID   int64    `json:"food_id"`
	Date     *string  `json:"date"`
	MealType string   `json:"meal_type"`
	ServingG *float64 `json:"serving_g"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
}

// OptionalString distinguishes an absent JSON field from an explicit
// null. UnmarshalJSON only runs when the key is present.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

type OptionalFloat64 struct {
	Set   bool
	Value *float64
}

func (o *OptionalFloat64) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

// UpdateMealRequest is the PUT /api/meals/{id} payload. Absent fields
// are left untouched; display_unit and display_quantity clear to NULL
// when sent as explicit null.
type UpdateMealRequest struct {
	ServingG        *float64        `json:"serving_g"`
	MealType        *string         `json:"meal_type"`
	Date            *string         `json:"date"`
	DisplayUnit     OptionalString  `json:"display_unit"`
	DisplayQuantity OptionalFloat64 `json:"display_quantity"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
