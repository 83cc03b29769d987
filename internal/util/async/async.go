// Package async provides helpers for running independent tasks concurrently.
//
// The stream consumer uses it to fan out the records of one event batch: each
// record is an independent provisioning attempt, so a slow or failing record
// must not hold up its neighbours.
package async

import (
	"context"
	"fmt"
)

// Task is a named operation run concurrently with its siblings.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel starts all tasks concurrently and waits for every one to finish.
// It returns the first error observed, wrapped with the task name; remaining
// tasks still run to completion so no attempt is abandoned half-way.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	results := make(chan result, len(tasks))
	for _, task := range tasks {
		go func() {
			results <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var firstErr error
	for range len(tasks) {
		res := <-results
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("task %s: %w", res.name, res.err)
		}
	}
	return firstErr
}
