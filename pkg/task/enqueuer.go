package task

import (
	"github.com/hibiken/asynq"
)

// Enqueuer abstracts the asynq client so services can fake it in tests.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewEnqueuer(client *asynq.Client) Enqueuer {
	return client
}
