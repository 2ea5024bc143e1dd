package targets

// SetTargetRequest is the PUT /api/targets/{day} payload. Macro
// percentages are all-or-none and must sum to 100.
type SetTargetRequest struct {
	Calories   int64  `json:"calories"`
	ProteinPct *int64 `json:"protein_pct"`
	CarbsPct   *int64 `json:"carbs_pct"`
	FatPct     *int64 `json:"fat_pct"`
}

type ClearedResponse struct {
	Cleared bool `json:"cleared"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
