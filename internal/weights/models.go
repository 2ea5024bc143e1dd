package weights

// LogWeightRequest is the POST /api/weight payload. Date defaults to
// today, source to "manual".
type LogWeightRequest struct {
	Date     *string `json:"date"`
	WeightKg float64 `json:"weight_kg"`
	Source   *string `json:"source"`
	Notes    *string `json:"notes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
