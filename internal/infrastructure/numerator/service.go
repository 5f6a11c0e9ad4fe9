// Package numerator implements document auto-numbering on PostgreSQL.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"stockledger/internal/core/appctx"
	"stockledger/internal/core/id"
	corenum "stockledger/internal/core/numerator"
	"stockledger/internal/infrastructure/storage/postgres"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierProvider resolves the querier for the current context, returning
// the active transaction when there is one. Satisfied by postgres.TxManager.
type QuerierProvider interface {
	GetQuerier(ctx context.Context) Querier
}

// querierProviderFunc adapts a function to QuerierProvider.
type querierProviderFunc func(ctx context.Context) Querier

func (f querierProviderFunc) GetQuerier(ctx context.Context) Querier { return f(ctx) }

// NewStaticProvider wraps a fixed querier (tests, single connections).
func NewStaticProvider(q Querier) QuerierProvider {
	return querierProviderFunc(func(context.Context) Querier { return q })
}

// NewWithTxManager builds a numerator that follows the transaction manager's
// active transaction, falling back to the pool outside of one.
func NewWithTxManager(txm *postgres.TxManager) *Service {
	return New(querierProviderFunc(func(ctx context.Context) Querier {
		return txm.GetQuerier(ctx)
	}))
}

type cachedRange struct {
	current int64
	max     int64
}

// Service generates sequential document numbers from sys_sequences.
// Sequences are scoped per (company, key): two companies posting the same
// document kind in the same year never share a counter.
//
// Strict numbers ride the caller's transaction: a rolled-back posting
// releases its number together with the document.
type Service struct {
	provider QuerierProvider

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

// Compile-time check against the domain contract.
var _ corenum.Generator = (*Service)(nil)

// New creates a numerator backed by the given querier provider.
func New(provider QuerierProvider) *Service {
	return &Service{
		provider: provider,
		ranges:   make(map[string]*cachedRange),
	}
}

// GetNextNumber generates the next document number.
// Pattern: PREFIX-YEAR-XXXXX (e.g., SI-2026-00001)
func (s *Service) GetNextNumber(ctx context.Context, cfg corenum.Config, opts *corenum.Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	if opts == nil {
		opts = corenum.DefaultOptions()
	}

	companyID := appctx.GetCompanyID(ctx)
	if id.IsNil(companyID) {
		return "", fmt.Errorf("numerator: company scope is required")
	}

	key := buildKey(cfg, period)

	var num int64
	var err error

	switch opts.Strategy {
	case corenum.StrategyCached:
		num, err = s.getNextCached(ctx, companyID, key, opts)
	default:
		num, err = s.getNextStrict(ctx, companyID, key)
	}

	if err != nil {
		return "", err
	}

	return formatNumber(cfg, period, num), nil
}

// getNextStrict fetches the next number directly from DB using UPSERT + RETURNING.
// The touched row stays locked until the surrounding transaction ends, which
// serializes concurrent postings of the same kind and keeps numbers gapless.
func (s *Service) getNextStrict(ctx context.Context, companyID id.ID, key string) (int64, error) {
	var num int64
	err := s.provider.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (company_id, key, current_val)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, companyID, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("strict next: %w", err)
	}
	return num, nil
}

// getNextCached fetches the next number from memory, refilling from DB if needed.
// May leave gaps after a restart; not used for posted documents.
func (s *Service) getNextCached(ctx context.Context, companyID id.ID, key string, opts *corenum.Options) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	cacheKey := companyID.String() + ":" + key
	rng, exists := s.ranges[cacheKey]
	if !exists {
		rng = &cachedRange{}
		s.ranges[cacheKey] = rng
	}

	if rng.current >= rng.max {
		size := opts.RangeSize
		if size <= 0 {
			size = 50
		}

		var newMax int64
		err := s.provider.GetQuerier(ctx).QueryRow(ctx, `
			INSERT INTO sys_sequences (company_id, key, current_val)
			VALUES ($1, $2, $3)
			ON CONFLICT (company_id, key) DO UPDATE SET current_val = sys_sequences.current_val + $3
			RETURNING current_val
		`, companyID, key, size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range: %w", err)
		}

		// DB current_val is the end of the reserved range; the range start
		// is one past the previous value.
		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNextNumber sets the next number value (for migration purposes).
func (s *Service) SetNextNumber(ctx context.Context, cfg corenum.Config, period time.Time, value int64) error {
	companyID := appctx.GetCompanyID(ctx)
	if id.IsNil(companyID) {
		return fmt.Errorf("numerator: company scope is required")
	}

	key := buildKey(cfg, period)

	var result int64
	err := s.provider.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (company_id, key, current_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, key) DO UPDATE SET current_val = $3
		RETURNING current_val
	`, companyID, key, value).Scan(&result)

	// Drop any cached range for this key
	s.cacheMu.Lock()
	delete(s.ranges, companyID.String()+":"+key)
	s.cacheMu.Unlock()

	return err
}

// buildKey creates the sequence key based on config and period.
func buildKey(cfg corenum.Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

// formatNumber creates the final number string.
func formatNumber(cfg corenum.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts the numeric part from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	var num int64
	patterns := []string{
		"%*[^-]-%*d-%d",
		"%*[^-]-%d",
	}

	for _, pattern := range patterns {
		if _, err := fmt.Sscanf(formatted, pattern, &num); err == nil {
			return num
		}
	}

	return -1
}
