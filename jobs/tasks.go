// Package jobs runs background work through Asynq: pre-building
// billing reports so month-end requests hit a warm cache.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup pre-builds billing reports into the cache.
	TaskReportWarmup = "report:warmup"
)

// ReportWarmupPayload selects which reports to pre-build. A zero
// Year/Month means the current period at execution time.
type ReportWarmupPayload struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}
