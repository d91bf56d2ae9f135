package dto

// AnalyzeRequest is the body of POST /analyze after validation.
type AnalyzeRequest struct {
	Input        string         `json:"input" validate:"required"`
	Transactions []Transaction  `json:"transactions,omitempty" validate:"omitempty,max=500,dive"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// HasContext reports whether the request carries transactions or metadata
// beyond the plain input text. A supplied but empty list still counts.
func (r *AnalyzeRequest) HasContext() bool {
	return r.Transactions != nil || r.Metadata != nil
}

type Transaction struct {
	Date     *string  `json:"date,omitempty"`
	Amount   *float64 `json:"amount" validate:"required"`
	Vendor   *string  `json:"vendor,omitempty" validate:"omitempty,min=1"`
	Category *string  `json:"category,omitempty" validate:"omitempty,min=1"`
	Note     *string  `json:"note,omitempty"`
}
