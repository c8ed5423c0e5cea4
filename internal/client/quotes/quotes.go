// Package quotes fetches a motivational quote of the day, with a built-in
// fallback when the network is down. Purely cosmetic: failures never
// surface as errors.
package quotes

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Quote is one displayable quote.
type Quote struct {
	ID     string
	Text   string
	Author string
}

// DefaultQuote is shown whenever the API cannot be reached or returns
// something unusable.
var DefaultQuote = Quote{
	ID:     "default",
	Text:   "Something went wrong, but that's okay. Every moment is a chance to start fresh.",
	Author: "MoodMapper",
}

const defaultAPIURL = "https://zenquotes.io/api/random"

// Service fetches random quotes from a zenquotes-compatible endpoint.
type Service struct {
	rest *resty.Client
	url  string
}

// New returns a Service against the public API.
func New() *Service {
	return NewWithURL(defaultAPIURL)
}

// NewWithURL returns a Service against a custom endpoint (tests).
func NewWithURL(url string) *Service {
	return &Service{
		rest: resty.New().SetTimeout(5 * time.Second),
		url:  url,
	}
}

type zenQuote struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// FetchRandom returns a random quote, or DefaultQuote on any failure.
func (s *Service) FetchRandom(ctx context.Context) Quote {
	var payload []zenQuote
	resp, err := s.rest.R().SetContext(ctx).SetResult(&payload).Get(s.url)
	if err != nil || !resp.IsSuccess() || len(payload) == 0 {
		return DefaultQuote
	}
	return Quote{ID: uuid.NewString(), Text: payload[0].Q, Author: payload[0].A}
}
