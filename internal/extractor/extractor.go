// Package extractor turns a free-text vehicle search into per-retailer
// filters. Extraction is fallible and may be slow; callers treat a failure
// as "no new filters" and fall back to what they already have.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/compiler"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// ErrNoResult is returned when a query yields no usable filters
var ErrNoResult = errors.New("extractor returned no result")

// Extractor maps a free-text query to a filter bundle
type Extractor interface {
	Extract(ctx context.Context, query string) (*vehicle.FilterBundle, error)
}

// New returns the LLM extractor backed by the pattern parser, or the pattern
// parser alone when no LLM endpoint is configured.
func New(opts LLMOptions, c *compiler.Compiler) Extractor {
	pattern := NewPattern(c)
	if strings.TrimSpace(opts.BaseURL) == "" {
		return pattern
	}
	return Chain{NewLLM(opts, c), pattern}
}

// Chain tries each extractor in order and returns the first result
type Chain []Extractor

// Extract implements Extractor
func (c Chain) Extract(ctx context.Context, query string) (*vehicle.FilterBundle, error) {
	var errs []error
	for _, e := range c {
		bundle, err := e.Extract(ctx, query)
		if err == nil && bundle != nil {
			return bundle, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, ErrNoResult
	}
	return nil, fmt.Errorf("all extractors failed: %w", errors.Join(errs...))
}

// compile turns a parsed descriptor into a bundle, or ErrNoResult when no
// retailer can be compiled
func compile(c *compiler.Compiler, query string, d vehicle.Descriptor) (*vehicle.FilterBundle, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoResult, err)
	}
	if !d.HasIdentity() {
		return nil, fmt.Errorf("%w: make and model not recognized", ErrNoResult)
	}
	bundle := c.Bundle(query, d)
	if bundle.Compiled() == 0 {
		return nil, ErrNoResult
	}
	return bundle, nil
}
