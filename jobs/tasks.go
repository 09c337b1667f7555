package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup pre-builds the cached reports for a snapshot.
	TaskReportWarmup = "report:warmup"
)

// ReportWarmupPayload identifies the snapshot whose reports should be warmed.
type ReportWarmupPayload struct {
	SnapshotID string `json:"snapshot_id"`
}

// NewReportWarmupTask constructs an Asynq task for report warmup.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}
