package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/transport"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// Backend extracts listings from one retailer
type Backend interface {
	Name() string
	Retailer() vehicle.RetailerID
	Extract(ctx context.Context, query string, filter *vehicle.RetailerFilter) ([]models.Listing, error)
}

// ErrEmptyOutput is returned when an extraction routine printed nothing
var ErrEmptyOutput = errors.New("empty output from extractor")

// NewBackend builds the backend a config entry describes
func NewBackend(cfg BackendConfig) (Backend, error) {
	switch cfg.Type {
	case BackendExec, "":
		if len(cfg.Command) == 0 {
			return nil, fmt.Errorf("backend %q: command is required", cfg.Name)
		}
		return &ExecBackend{cfg: cfg}, nil
	case BackendHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("backend %q: url is required", cfg.Name)
		}
		return &HTTPBackend{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("backend %q: unknown type %q", cfg.Name, cfg.Type)
	}
}

// ExecBackend runs an extraction script. The script gets the query and the
// retailer filter as JSON arguments and prints a JSON array of listings.
type ExecBackend struct {
	cfg BackendConfig
}

// Name returns the backend name
func (b *ExecBackend) Name() string { return b.cfg.Name }

// Retailer returns the retailer whose filter the backend consumes
func (b *ExecBackend) Retailer() vehicle.RetailerID { return vehicle.RetailerID(b.cfg.Retailer) }

// Extract runs the command and decodes its stdout
func (b *ExecBackend) Extract(ctx context.Context, query string, filter *vehicle.RetailerFilter) ([]models.Listing, error) {
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter: %w", err)
	}

	args := append([]string{}, b.cfg.Command[1:]...)
	args = append(args, query, string(filterJSON))
	if b.cfg.MaxResults > 0 {
		args = append(args, strconv.Itoa(b.cfg.MaxResults))
	}

	cmd := exec.CommandContext(ctx, b.cfg.Command[0], args...)
	cmd.Dir = b.cfg.Dir
	if len(b.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), b.cfg.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, lastLine(msg))
		}
		return nil, err
	}
	return decodeListings(stdout.Bytes())
}

// HTTPBackend posts the search to an extraction service
type HTTPBackend struct {
	cfg BackendConfig
}

// extractRequest is the body sent to an extraction service
type extractRequest struct {
	Retailer string                 `json:"retailer"`
	Query    string                 `json:"query"`
	Filter   *vehicle.RetailerFilter `json:"filter"`
}

// Name returns the backend name
func (b *HTTPBackend) Name() string { return b.cfg.Name }

// Retailer returns the retailer whose filter the backend consumes
func (b *HTTPBackend) Retailer() vehicle.RetailerID { return vehicle.RetailerID(b.cfg.Retailer) }

// Extract posts the search and decodes the listing array
func (b *HTTPBackend) Extract(ctx context.Context, query string, filter *vehicle.RetailerFilter) ([]models.Listing, error) {
	body, err := transport.Do(ctx, transport.Request{
		URL:     b.cfg.URL,
		Headers: b.cfg.Headers,
		Body:    extractRequest{Retailer: b.cfg.Retailer, Query: query, Filter: filter},
	})
	if err != nil {
		return nil, err
	}
	return decodeListings(body)
}

// decodeListings parses an extractor's output. A first element carrying an
// error field means the extraction failed.
func decodeListings(data []byte) ([]models.Listing, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyOutput
	}
	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("failed to parse extractor output: %w", err)
	}
	if len(listings) > 0 && listings[0].Error != "" {
		return nil, errors.New(listings[0].Error)
	}
	return listings, nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
