package domain

// Page classification tags recognized by the pipeline. Anything the model
// emits outside this set is normalized to PageTypeBillDetail.
const (
	PageTypeBillDetail = "Bill Detail"
	PageTypeFinalBill  = "Final Bill"
	PageTypePharmacy   = "Pharmacy"
)

// LineItem is a single validated, immutable line item on a bill.
type LineItem struct {
	Name     string  `json:"item_name"`
	Amount   float64 `json:"item_amount"`
	Rate     float64 `json:"item_rate"`
	Quantity float64 `json:"item_quantity"`
}

// CandidateItem is a line item as parsed from model output, before
// validation. Numeric fields are nil when the model omitted them or
// emitted a value that cannot be read as a number.
type CandidateItem struct {
	Name     string
	Quantity *float64
	Rate     *float64
	Amount   *float64
}

// Item converts an accepted candidate into an immutable LineItem.
// Callers must only invoke this after the candidate passed validation.
func (c *CandidateItem) Item() LineItem {
	item := LineItem{Name: c.Name}
	if c.Quantity != nil {
		item.Quantity = *c.Quantity
	}
	if c.Rate != nil {
		item.Rate = *c.Rate
	}
	if c.Amount != nil {
		item.Amount = *c.Amount
	}
	return item
}

// ExtractionResult is the parsed shape of one structured-extraction
// attempt. It lives only for the duration of a single pipeline run.
type ExtractionResult struct {
	PageType string
	Items    []CandidateItem
	Notes    string
}

// TokenUsage accumulates token counts across every completion call made
// during one pipeline run, repair attempts included. One instance is
// created per request and discarded with it.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Add accumulates the counts reported by a single completion call.
func (u *TokenUsage) Add(input, output int) {
	u.InputTokens += input
	u.OutputTokens += output
}

// Total returns input + output tokens.
func (u *TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// QualityReport summarizes per-item validation over one extraction.
type QualityReport struct {
	TotalItems   int      `json:"total_items"`
	ValidItems   int      `json:"valid_items"`
	InvalidItems int      `json:"invalid_items"`
	Issues       []string `json:"issues"`
	QualityScore float64  `json:"quality_score"`
}

// Reconciliation statuses.
const (
	ReconciliationPerfect     = "perfect"
	ReconciliationAcceptable  = "acceptable"
	ReconciliationReview      = "review"
	ReconciliationNeedsReview = "needs_review"
)

// ReconciliationReport compares the sum of extracted amounts against a
// claimed bill total.
type ReconciliationReport struct {
	CalculatedTotal    float64 `json:"calculated_total"`
	ClaimedTotal       float64 `json:"claimed_total"`
	Matches            bool    `json:"matches"`
	Variance           float64 `json:"variance"`
	VariancePercentage float64 `json:"variance_percentage"`
	Status             string  `json:"reconciliation_status"`
}

// PageItems is one page worth of validated line items in the response.
type PageItems struct {
	PageNo    string     `json:"page_no"`
	PageType  string     `json:"page_type"`
	BillItems []LineItem `json:"bill_items"`
}

// ResponseTokenUsage is the token accounting block of the response.
type ResponseTokenUsage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ResponseData carries the extracted payload of a successful response.
type ResponseData struct {
	PagewiseLineItems []PageItems `json:"pagewise_line_items"`
	TotalItemCount    int         `json:"total_item_count"`
}

// ExtractionResponse is the only entity that crosses the system
// boundary: the success/failure envelope of the extraction endpoint.
type ExtractionResponse struct {
	IsSuccess  bool                `json:"is_success"`
	TokenUsage *ResponseTokenUsage `json:"token_usage,omitempty"`
	Data       *ResponseData       `json:"data,omitempty"`
	Message    string              `json:"message,omitempty"`
}
