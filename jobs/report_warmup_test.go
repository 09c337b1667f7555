package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zackfin/ledgerview/internal/ledger"
	"github.com/zackfin/ledgerview/internal/mapping"
	"github.com/zackfin/ledgerview/internal/report"
)

type stubRepo struct {
	snap report.Snapshot
}

func (r *stubRepo) SaveSnapshot(ctx context.Context, snap report.Snapshot) error { return nil }

func (r *stubRepo) GetSnapshot(ctx context.Context, id uuid.UUID) (report.Snapshot, error) {
	if id != r.snap.ID {
		return report.Snapshot{}, report.ErrSnapshotNotFound
	}
	return r.snap, nil
}

func (r *stubRepo) ListSnapshots(ctx context.Context) ([]report.SnapshotMeta, error) {
	return []report.SnapshotMeta{r.snap.Meta()}, nil
}

func stubSnapshot(t *testing.T) report.Snapshot {
	t.Helper()
	income, err := mapping.NewTable(mapping.StatementIncome, []mapping.Row{
		{Class1: "REV", Class3: "OPS", Line: "Revenue", Sign: 1, Order: 1},
	})
	require.NoError(t, err)
	balance, err := mapping.NewTable(mapping.StatementBalance, []mapping.Row{
		{Class1: "CASH", Class3: "OPS", Line: "Cash", Section: mapping.SectionAssets, Sign: 1, Order: 1},
	})
	require.NoError(t, err)
	return report.Snapshot{
		ID:        uuid.New(),
		Name:      "warmup fixture",
		CreatedAt: time.Now().UTC(),
		Transactions: []ledger.Transaction{{
			Seq:     1,
			Class1:  "REV",
			Class3:  "OPS",
			Account: "4000",
			Date:    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			Amount:  decimal.RequireFromString("100"),
		}},
		Tables: mapping.Tables{Income: income, Balance: balance},
	}
}

func newWarmupJob(t *testing.T) (*ReportWarmupJob, report.Snapshot) {
	t.Helper()
	snap := stubSnapshot(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := report.NewService(logger, &stubRepo{snap: snap}, nil, nil)
	return NewReportWarmupJob(service, logger, nil), snap
}

func TestReportWarmupHandle(t *testing.T) {
	job, snap := newWarmupJob(t)

	task, err := NewReportWarmupTask(ReportWarmupPayload{SnapshotID: snap.ID.String()})
	require.NoError(t, err)
	require.Equal(t, TaskReportWarmup, task.Type())
	require.NoError(t, job.Handle(context.Background(), task))
}

func TestReportWarmupSkipsBadPayload(t *testing.T) {
	job, _ := newWarmupJob(t)

	err := job.Handle(context.Background(), asynq.NewTask(TaskReportWarmup, []byte("{")))
	require.True(t, errors.Is(err, asynq.SkipRetry))

	task, err := NewReportWarmupTask(ReportWarmupPayload{SnapshotID: "not-a-uuid"})
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	require.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestReportWarmupSkipsVanishedSnapshot(t *testing.T) {
	job, _ := newWarmupJob(t)

	task, err := NewReportWarmupTask(ReportWarmupPayload{SnapshotID: uuid.NewString()})
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	require.True(t, errors.Is(err, asynq.SkipRetry))
}
