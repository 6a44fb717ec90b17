// Package extractor turns an invoice image into structured invoice data by
// way of a chat-completion service. The flow is Requested → Parsed with a
// single repair branch: if the first response is not valid JSON, one more
// completion is requested to reformat that text, and a second parse failure
// is terminal. There is no backoff and no alternate model.
package extractor

import (
	"context"
	"encoding/json"
	"strings"
)

// Product is one extracted line item.
type Product struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// Result is the structured data the completion service is instructed to
// emit. The service itself is told to default missing numbers to 0 and
// missing strings to null; beyond decoding, the pipeline does not validate
// the values.
type Result struct {
	Total    float64   `json:"total"`
	Date     string    `json:"date"`
	Place    string    `json:"place"`
	Products []Product `json:"products"`
}

// CompletionClient is the text-in/text-out surface of the AI service.
// ExtractFromImage sends the schema prompt together with the image URL;
// RepairJSON asks the service to reshape a malformed previous answer into
// the same schema.
type CompletionClient interface {
	ExtractFromImage(ctx context.Context, imageURL string) (string, error)
	RepairJSON(ctx context.Context, malformed string) (string, error)
}

// ParseError is the terminal failure of the pipeline: neither the original
// response nor the repaired one could be decoded. Both raw texts are kept
// for the client to inspect.
type ParseError struct {
	Original string
	Cleaned  string
}

func (e *ParseError) Error() string { return "completion output is not valid JSON" }

// Pipeline runs extraction requests against a completion client.
type Pipeline struct {
	client CompletionClient
}

func New(client CompletionClient) *Pipeline { return &Pipeline{client: client} }

// Extract requests structured data for the image and parses it, retrying
// exactly once through the repair prompt when the first answer is not valid
// JSON. On double failure the returned error is a *ParseError carrying both
// raw texts; errors from the completion service itself are returned as-is.
func (p *Pipeline) Extract(ctx context.Context, imageURL string) (Result, error) {
	original, err := p.client.ExtractFromImage(ctx, imageURL)
	if err != nil {
		return Result{}, err
	}
	original = strings.TrimSpace(original)

	var res Result
	if err := json.Unmarshal([]byte(original), &res); err == nil {
		return res, nil
	}

	cleaned, err := p.client.RepairJSON(ctx, original)
	if err != nil {
		return Result{}, err
	}
	cleaned = strings.TrimSpace(cleaned)

	// Decode into a fresh value: a type error on the first attempt leaves
	// res partially filled, and those leftovers must not survive into the
	// repaired result.
	var repaired Result
	if err := json.Unmarshal([]byte(cleaned), &repaired); err != nil {
		return Result{}, &ParseError{Original: original, Cleaned: cleaned}
	}
	return repaired, nil
}
