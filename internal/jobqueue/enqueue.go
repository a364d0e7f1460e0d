package jobqueue

import "github.com/hibiken/asynq"

// Enqueuer submits audit jobs onto the asynq queue for cmd/webauditor-worker
// to pick up, grounded on routes/async_upload.go's queueClient.Enqueue call.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer wraps an asynq.Client.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// Enqueue submits one audit run for background processing.
func (e *Enqueuer) Enqueue(runID, startURL string, crawl bool) error {
	task, err := NewAuditRunTask(runID, startURL, crawl)
	if err != nil {
		return err
	}
	_, err = e.client.Enqueue(task)
	return err
}
