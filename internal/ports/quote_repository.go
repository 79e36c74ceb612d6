package ports

import (
	"context"
	"errors"
	"multidrop-route-service/internal/domain"
)

// ErrQuoteNotFound is returned when no quote has the requested id.
var ErrQuoteNotFound = errors.New("quote not found")

// Port: a boundary for storing priced quotes.
type QuoteRepository interface {
	SaveQuote(ctx context.Context, q *domain.Quote) error
	// Retrieve a quote by id; ErrQuoteNotFound when absent.
	GetQuote(ctx context.Context, id string) (*domain.Quote, error)
}
