package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerAudit replays historical orders through the commission engine.
	TaskLedgerAudit = "ledger:audit"

	defaultAuditWindowDays = 30
)

// LedgerAuditPayload selects how far back the audit looks.
type LedgerAuditPayload struct {
	WindowDays int `json:"window_days"`
}

// NewLedgerAuditTask constructs an Asynq task for the ledger audit.
func NewLedgerAuditTask(payload LedgerAuditPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerAudit, data), nil
}
