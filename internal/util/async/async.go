// Package async provides utilities for parallel task execution.
//
// Tasks run with bounded concurrency and results are collected per task
// name, so callers can fan work out across independent targets and inspect
// each outcome without one failure hiding the others.
package async

import (
	"context"
	"sync"
)

// Task represents an asynchronous operation producing a value of type T.
type Task[T any] struct {
	Name string
	Func func(context.Context) (T, error)
}

// Result holds one task's outcome.
type Result[T any] struct {
	Value T
	Err   error
}

// Collect executes the tasks with at most limit running concurrently and
// returns a map of results keyed by task name. All tasks are attempted;
// errors are recorded, never short-circuited. A limit <= 0 means unbounded.
func Collect[T any](ctx context.Context, tasks []Task[T], limit int) map[string]Result[T] {
	results := make(map[string]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	var sem chan struct{}
	if limit > 0 {
		sem = make(chan struct{}, limit)
	}

	for _, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			value, err := task.Func(ctx)
			mu.Lock()
			results[task.Name] = Result[T]{Value: value, Err: err}
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}
