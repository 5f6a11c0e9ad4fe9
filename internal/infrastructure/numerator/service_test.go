package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"stockledger/internal/core/appctx"
	"stockledger/internal/core/id"
	corenum "stockledger/internal/core/numerator"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT: every call advances the
// counter by the requested increment and returns the new value.
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	// Strict passes (companyID, key); cached passes (companyID, key, size).
	var increment int64 = 1
	if len(args) == 3 {
		if val, ok := args[2].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	return &mockRow{val: m.currentValue}
}

func scopedCtx() context.Context {
	return appctx.WithScope(context.Background(), &appctx.RequestScope{
		UserID:    "tester",
		CompanyID: id.New(),
	})
}

var testPeriod = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(NewStaticProvider(q))
	ctx := scopedCtx()
	cfg := corenum.DefaultConfig("TEST")

	num, err := svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEST-2026-00001" {
		t.Errorf("expected TEST-2026-00001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEST-2026-00002" {
		t.Errorf("expected TEST-2026-00002, got %s", num)
	}

	// Strict hits the DB once per number
	if q.calls != 2 {
		t.Errorf("expected 2 DB calls, got %d", q.calls)
	}
}

func TestGetNextNumber_RequiresCompanyScope(t *testing.T) {
	svc := New(NewStaticProvider(&mockQuerier{}))

	_, err := svc.GetNextNumber(context.Background(), corenum.DefaultConfig("TEST"), nil, testPeriod)
	if err == nil {
		t.Fatal("expected error without company scope")
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(NewStaticProvider(q))
	ctx := scopedCtx()
	cfg := corenum.DefaultConfig("ORD")

	opts := &corenum.Options{
		Strategy:  corenum.StrategyCached,
		RangeSize: 10,
	}

	// First call reserves the range 1..10 and hands out 1
	num, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ORD-2026-00001" {
		t.Errorf("expected ORD-2026-00001, got %s", num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value to be 10, got %d", q.currentValue)
	}

	// Second call comes from memory, DB untouched
	num, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ORD-2026-00002" {
		t.Errorf("expected ORD-2026-00002, got %s", num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected DB value to stay 10, got %d", q.currentValue)
	}

	// Exhaust the range; the next call reserves 11..20
	for i := 0; i < 8; i++ {
		_, _ = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	}

	num, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ORD-2026-00011" {
		t.Errorf("expected ORD-2026-00011, got %s", num)
	}
	if q.currentValue != 20 {
		t.Errorf("expected DB value to be 20, got %d", q.currentValue)
	}
}

func TestGetNextNumber_SequencesAreTenantScoped(t *testing.T) {
	q := &mockQuerier{}
	svc := New(NewStaticProvider(q))
	cfg := corenum.DefaultConfig("ORD")
	opts := &corenum.Options{Strategy: corenum.StrategyCached, RangeSize: 10}

	// Two companies pull from the same mock counter but must keep separate
	// cached ranges.
	ctxA := scopedCtx()
	ctxB := scopedCtx()

	if _, err := svc.GetNextNumber(ctxA, cfg, opts, testPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetNextNumber(ctxB, cfg, opts, testPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Each company triggered its own range reservation
	if q.calls != 2 {
		t.Errorf("expected 2 range reservations, got %d", q.calls)
	}
}

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name string
		cfg  corenum.Config
		want string
	}{
		{"yearly reset", corenum.Config{Prefix: "SI", ResetPeriod: "year"}, "SI_2026"},
		{"monthly reset", corenum.Config{Prefix: "SI", ResetPeriod: "month"}, "SI_2026_03"},
		{"no reset", corenum.Config{Prefix: "SI", ResetPeriod: "never"}, "SI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildKey(tt.cfg, testPeriod); got != tt.want {
				t.Errorf("buildKey() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	withYear := corenum.Config{Prefix: "SI", IncludeYear: true, PadWidth: 5}
	if got := formatNumber(withYear, testPeriod, 42); got != "SI-2026-00042" {
		t.Errorf("expected SI-2026-00042, got %s", got)
	}

	noYear := corenum.Config{Prefix: "ADJ", PadWidth: 3}
	if got := formatNumber(noYear, testPeriod, 7); got != "ADJ-007" {
		t.Errorf("expected ADJ-007, got %s", got)
	}

	// Zero pad width falls back to 5
	defaulted := corenum.Config{Prefix: "TR", IncludeYear: true}
	if got := formatNumber(defaulted, testPeriod, 1); got != "TR-2026-00001" {
		t.Errorf("expected TR-2026-00001, got %s", got)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		formatted string
		want      int64
	}{
		{"SI-2026-00042", 42},
		{"ADJ-007", 7},
		{"garbage", -1},
	}

	for _, tt := range tests {
		if got := ParseNumber(tt.formatted); got != tt.want {
			t.Errorf("ParseNumber(%s) = %d, want %d", tt.formatted, got, tt.want)
		}
	}
}
