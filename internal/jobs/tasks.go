package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
)

const (
	// QueueDefault is the queue all ledger tasks run on.
	QueueDefault = "ledger"
	// TaskSnapshotPeriod persists one period snapshot.
	TaskSnapshotPeriod = "ledger:snapshot_period"
	// TaskRefreshStale recomputes every stale snapshot.
	TaskRefreshStale = "ledger:refresh_stale"
	// TaskCloseYear snapshots the twelve months and the year.
	TaskCloseYear = "ledger:close_year"
)

// SnapshotPeriodPayload identifies the period to snapshot.
type SnapshotPeriodPayload struct {
	PeriodType string `json:"period_type"`
	PeriodKey  string `json:"period_key"`
}

// CloseYearPayload identifies the year to close.
type CloseYearPayload struct {
	Year int `json:"year"`
}

func snapshotTaskID(period domain.Period) string {
	return fmt.Sprintf("snapshot:%s:%s", period.Type, period.Key)
}

func closeYearTaskID(year int) string {
	return fmt.Sprintf("close_year:%d", year)
}

// NewSnapshotPeriodTask constructs an Asynq task.
func NewSnapshotPeriodTask(period domain.Period) (*asynq.Task, error) {
	body, err := json.Marshal(SnapshotPeriodPayload{PeriodType: string(period.Type), PeriodKey: period.Key})
	if err != nil {
		return nil, err
	}
	// One pending task per period is enough; later requests dedupe on the task id.
	return asynq.NewTask(TaskSnapshotPeriod, body,
		asynq.Queue(QueueDefault),
		asynq.TaskID(snapshotTaskID(period)),
		asynq.MaxRetry(3),
	), nil
}

// NewRefreshStaleTask constructs the periodic refresh task.
func NewRefreshStaleTask() *asynq.Task {
	return asynq.NewTask(TaskRefreshStale, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(1))
}

// NewCloseYearTask constructs an Asynq task.
func NewCloseYearTask(year int) (*asynq.Task, error) {
	body, err := json.Marshal(CloseYearPayload{Year: year})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCloseYear, body,
		asynq.Queue(QueueDefault),
		asynq.TaskID(closeYearTaskID(year)),
		asynq.MaxRetry(3),
	), nil
}
