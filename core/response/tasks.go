package response

import "context"

// Task is work scheduled to run after the response has been written.
type Task struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Tasks is an ordered batch of background tasks.
type Tasks []Task

// Background creates a named background task.
func Background(name string, fn func(ctx context.Context) error) Task {
	return Task{Name: name, Fn: fn}
}

// Run executes t. A task without a function is a no-op.
func (t Task) Run(ctx context.Context) error {
	if t.Fn == nil {
		return nil
	}
	return t.Fn(ctx)
}
