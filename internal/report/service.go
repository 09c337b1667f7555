package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/zackfin/ledgerview/internal/analytics"
	"github.com/zackfin/ledgerview/internal/ingest"
	"github.com/zackfin/ledgerview/internal/ledger"
	"github.com/zackfin/ledgerview/internal/mapping"
	"github.com/zackfin/ledgerview/internal/observability"
	"github.com/zackfin/ledgerview/internal/statement"
)

// Service coordinates ingestion and report generation. Reports are pure
// functions of a stored snapshot, so the only shared state is the redis
// cache and its version counter.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	cache   *analytics.Cache
	metrics *observability.Metrics
}

// NewService wires the report service. metrics may be nil.
func NewService(logger *slog.Logger, repo Repository, cache *analytics.Cache, metrics *observability.Metrics) *Service {
	return &Service{logger: logger, repo: repo, cache: cache, metrics: metrics}
}

// IngestInput carries the uploaded tables. OpeningBalances may be nil for
// the fully since-inception case.
type IngestInput struct {
	Name            string
	GL              io.Reader
	IncomeMapping   io.Reader
	BalanceMapping  io.Reader
	OpeningBalances io.Reader
}

// Ingest parses, normalizes, and stores a snapshot. Structural problems
// (missing columns, empty mapping tables, conflicting opening balances)
// fail the whole upload; malformed GL rows only degrade coverage and come
// back in the diagnostics.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (SnapshotMeta, DiagnosticsDTO, error) {
	rawRows, err := ingest.ReadLedger(in.GL)
	if err != nil {
		return SnapshotMeta{}, DiagnosticsDTO{}, err
	}
	norm := ledger.Normalize(rawRows)

	incomeRows, err := ingest.ReadMappingTable(in.IncomeMapping, mapping.StatementIncome)
	if err != nil {
		return SnapshotMeta{}, DiagnosticsDTO{}, err
	}
	incomeTable, err := mapping.NewTable(mapping.StatementIncome, incomeRows)
	if err != nil {
		return SnapshotMeta{}, DiagnosticsDTO{}, err
	}
	balanceRows, err := ingest.ReadMappingTable(in.BalanceMapping, mapping.StatementBalance)
	if err != nil {
		return SnapshotMeta{}, DiagnosticsDTO{}, err
	}
	balanceTable, err := mapping.NewTable(mapping.StatementBalance, balanceRows)
	if err != nil {
		return SnapshotMeta{}, DiagnosticsDTO{}, err
	}

	var openings ledger.OpeningBalances
	if in.OpeningBalances != nil {
		openingRows, err := ingest.ReadOpeningBalances(in.OpeningBalances)
		if err != nil {
			return SnapshotMeta{}, DiagnosticsDTO{}, err
		}
		if openings, err = ledger.SeedOpenings(openingRows); err != nil {
			return SnapshotMeta{}, DiagnosticsDTO{}, err
		}
	}

	snap := Snapshot{
		ID:           uuid.New(),
		Name:         in.Name,
		CreatedAt:    time.Now().UTC(),
		Transactions: norm.Transactions,
		BadRows:      norm.BadRows,
		Openings:     openings,
		Tables:       mapping.Tables{Income: incomeTable, Balance: balanceTable},
	}
	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return SnapshotMeta{}, DiagnosticsDTO{}, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache bump after ingest", slog.Any("error", err))
	}
	s.logger.Info("snapshot ingested",
		slog.String("snapshot_id", snap.ID.String()),
		slog.Int("rows", len(snap.Transactions)),
		slog.Int("bad_rows", len(snap.BadRows)))

	diags := toDiagnosticsDTO(statement.Diagnostics{BadRows: snap.BadRows})
	return snap.Meta(), diags, nil
}

// ListSnapshots lists stored snapshots.
func (s *Service) ListSnapshots(ctx context.Context) ([]SnapshotMeta, error) {
	return s.repo.ListSnapshots(ctx)
}

func (s *Service) builder(snap Snapshot) *statement.Builder {
	ix := ledger.NewIndex(snap.Transactions, snap.Openings)
	return statement.NewBuilder(ix, snap.Tables, snap.BadRows)
}

func periodToken(p *ledger.Period) string {
	if p == nil {
		return "all"
	}
	return p.String()
}

// TrialBalance builds (or serves from cache) the rolling trial balance
// pivot over the requested period range.
func (s *Service) TrialBalance(ctx context.Context, id uuid.UUID, from, to *ledger.Period) (TrialBalanceDTO, error) {
	key, err := s.cache.BuildKey(ctx, analytics.KeyTrialBalance(id.String(), periodToken(from), periodToken(to)))
	if err != nil {
		return TrialBalanceDTO{}, err
	}
	var dto TrialBalanceDTO
	err = s.cache.FetchJSON(ctx, key, &dto, func(ctx context.Context) (interface{}, error) {
		snap, err := s.repo.GetSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		return toTrialBalanceDTO(id.String(), s.builder(snap).TrialBalance(from, to)), nil
	})
	s.metrics.ObserveReportBuild("trial_balance", err)
	return dto, err
}

// resolveAsOf defaults a zero as-of date to the snapshot's latest posting.
func (s *Service) resolveAsOf(ctx context.Context, id uuid.UUID, asOf time.Time) (time.Time, error) {
	if !asOf.IsZero() {
		return asOf, nil
	}
	snap, err := s.repo.GetSnapshot(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	latest, ok := snap.LatestDate()
	if !ok {
		return time.Time{}, fmt.Errorf("report: snapshot %s has no dated activity", id)
	}
	return latest, nil
}

// IncomeStatement builds (or serves from cache) the income statement as of
// the given date; a zero date means the snapshot's latest posting date.
func (s *Service) IncomeStatement(ctx context.Context, id uuid.UUID, asOf time.Time) (IncomeStatementDTO, error) {
	asOf, err := s.resolveAsOf(ctx, id, asOf)
	if err != nil {
		return IncomeStatementDTO{}, err
	}
	key, err := s.cache.BuildKey(ctx, analytics.KeyIncomeStatement(id.String(), asOf))
	if err != nil {
		return IncomeStatementDTO{}, err
	}
	var dto IncomeStatementDTO
	err = s.cache.FetchJSON(ctx, key, &dto, func(ctx context.Context) (interface{}, error) {
		snap, err := s.repo.GetSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		return toIncomeStatementDTO(id.String(), s.builder(snap).IncomeStatement(asOf)), nil
	})
	s.metrics.ObserveReportBuild("income_statement", err)
	return dto, err
}

// BalanceSheet builds (or serves from cache) the balance sheet as of the
// given date, including the recomputed retained earnings line.
func (s *Service) BalanceSheet(ctx context.Context, id uuid.UUID, asOf time.Time) (BalanceSheetDTO, error) {
	asOf, err := s.resolveAsOf(ctx, id, asOf)
	if err != nil {
		return BalanceSheetDTO{}, err
	}
	key, err := s.cache.BuildKey(ctx, analytics.KeyBalanceSheet(id.String(), asOf))
	if err != nil {
		return BalanceSheetDTO{}, err
	}
	var dto BalanceSheetDTO
	err = s.cache.FetchJSON(ctx, key, &dto, func(ctx context.Context) (interface{}, error) {
		snap, err := s.repo.GetSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		return toBalanceSheetDTO(id.String(), s.builder(snap).BalanceSheet(asOf)), nil
	})
	s.metrics.ObserveReportBuild("balance_sheet", err)
	return dto, err
}

// Dashboard serves the KPI cards and monthly activity for a snapshot.
func (s *Service) Dashboard(ctx context.Context, id uuid.UUID) (DashboardDTO, error) {
	key, err := s.cache.BuildKey(ctx, analytics.KeyKPI(id.String()))
	if err != nil {
		return DashboardDTO{}, err
	}
	var dto DashboardDTO
	err = s.cache.FetchJSON(ctx, key, &dto, func(ctx context.Context) (interface{}, error) {
		snap, err := s.repo.GetSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		kpi := analytics.Summarize(snap.Transactions)
		return DashboardDTO{
			SnapshotID: id.String(),
			KPI:        kpi,
			Display: DashboardDisplay{
				Inflow:  formatCurrency(kpi.Inflow),
				Outflow: formatCurrency(kpi.Outflow),
				Net:     formatCurrency(kpi.Net),
			},
			Activity: analytics.MonthlyActivity(snap.Transactions),
		}, nil
	})
	return dto, err
}

// Warmup prebuilds and caches the three reports for a snapshot. The builds
// share no mutable state, so they run concurrently.
func (s *Service) Warmup(ctx context.Context, id uuid.UUID) error {
	asOf, err := s.resolveAsOf(ctx, id, time.Time{})
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return err
		}
		s.logger.Warn("warmup skipped", slog.String("snapshot_id", id.String()), slog.Any("error", err))
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.TrialBalance(ctx, id, nil, nil)
		return err
	})
	g.Go(func() error {
		_, err := s.IncomeStatement(ctx, id, asOf)
		return err
	})
	g.Go(func() error {
		_, err := s.BalanceSheet(ctx, id, asOf)
		return err
	})
	g.Go(func() error {
		_, err := s.Dashboard(ctx, id)
		return err
	})
	return g.Wait()
}

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// formatCurrency renders a display string like $1,234.56. Display only;
// all computation stays in decimal.
func formatCurrency(d decimal.Decimal) string {
	f, _ := d.Float64()
	return currencyPrinter.Sprintf("$%v",
		number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
