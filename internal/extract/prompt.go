package extract

import "fmt"

// TruncationMarker is appended when input text is cut to fit the prompt budget.
const TruncationMarker = "\n...[text truncated]"

// SystemPrompt is sent with every extraction and repair call.
const SystemPrompt = `You are an expert in bill and invoice data extraction. You extract structured data from unstructured bill text, return only valid JSON, and never treat dates, invoice numbers, reference codes, or page markers as item names or monetary amounts. Accuracy over completion: better to skip than to guess.`

// BuildExtractionPrompt builds the guard-railed extraction prompt for one
// page of OCR text. Pure function of its inputs so retries are
// reproducible.
func BuildExtractionPrompt(text, pageLabel string, maxChars int) string {
	return fmt.Sprintf(`Extract bill line items from the text below.

EXTRACT - these ARE line items:
- "Aspirin 500mg - Qty: 2, Rate: 50, Amount: 100"
- "Consultation Fee - 500.00"

NEVER EXTRACT - these are NOT line items:
- "Invoice Date: 2024-01-15" (date, not an amount)
- "Invoice No: INV-2024-001" (invoice ID, not an amount)
- "Bill Total: 5000" (total, not a line item)
- "Page 1 of 2" (page marker)
- "Reference: REF-123456" / "Customer ID: CUST-789" (identifiers)

RULES:
1. Each line item MUST have: item_name (a product or service name, never a date, ID, or bare number), item_quantity >= 0, item_rate >= 0, item_amount >= 0.
2. item_amount must approximately equal item_quantity * item_rate.
3. Do not emit the same item twice.
4. page_type must be one of "Bill Detail", "Final Bill", "Pharmacy".

BILL TEXT (page %s):
%s

Return ONLY this JSON object, with no markdown, code fences, or explanation:
{
  "page_type": "Bill Detail",
  "line_items": [
    {"item_name": "product or service name", "item_quantity": 1, "item_rate": 100.00, "item_amount": 100.00}
  ],
  "extraction_notes": "any issues found"
}`, pageLabel, Truncate(text, maxChars))
}

// BuildRepairPrompt builds the single retry prompt issued after a failed
// parse, embedding a bounded excerpt of the prior output so the model can
// self-correct its formatting.
func BuildRepairPrompt(text, priorOutput string, maxChars int) string {
	return fmt.Sprintf(`Your previous response could not be parsed as the required JSON. Previous response (excerpt):
%s

Try again. Extract the bill line items from this text:
%s

Respond with ONLY the JSON object described below. No markdown, no code fences, no prose:
{
  "page_type": "Bill Detail",
  "line_items": [
    {"item_name": "product or service name", "item_quantity": 1, "item_rate": 100.00, "item_amount": 100.00}
  ],
  "extraction_notes": ""
}
Remember: item_name is never a date, invoice number, reference code, or page marker; all numeric fields are non-negative; item_amount is approximately item_quantity * item_rate; no duplicate items.`, Truncate(priorOutput, 500), Truncate(text, maxChars))
}

// Truncate cuts s at a character boundary and appends the truncation
// marker when it exceeds maxChars. maxChars <= 0 disables truncation.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + TruncationMarker
}
