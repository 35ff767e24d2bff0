package utils

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SubtitleError wraps a failure with the step it happened in.
type SubtitleError struct {
	Message string
	Cause   error
}

func (e *SubtitleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

func (e *SubtitleError) Unwrap() error {
	return e.Cause
}

// NewError creates a SubtitleError.
func NewError(message string, cause error) error {
	return &SubtitleError{
		Message: message,
		Cause:   cause,
	}
}

// ErrorHandler retries flaky operations (the external speech and translation
// endpoints, mostly) and keeps per-operation error counts.
type ErrorHandler struct {
	MaxRetries int
	RetryDelay float64 // seconds; attempt n waits n*RetryDelay

	mu         sync.Mutex
	errorStats map[string]map[string]int // operation -> message -> count
}

// NewErrorHandler creates a handler with the given retry budget.
func NewErrorHandler(maxRetries int, retryDelay float64) *ErrorHandler {
	return &ErrorHandler{
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
		errorStats: make(map[string]map[string]int),
	}
}

// Retry runs fn up to MaxRetries times with a linearly growing delay.
// Cancellation of ctx aborts the wait between attempts.
func (h *ErrorHandler) Retry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < h.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		h.updateErrorStats(operation, err.Error())

		if attempt < h.MaxRetries-1 {
			delay := time.Duration(h.RetryDelay * float64(attempt+1) * float64(time.Second))
			Warn("operation %s failed (attempt %d/%d): %v", operation, attempt+1, h.MaxRetries, err)
			Warn("retrying in %s...", delay)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return NewError(fmt.Sprintf("operation %s still failing after %d attempts", operation, h.MaxRetries), lastErr)
}

// SafeExecute runs fn and invokes cleanup when it fails.
func (h *ErrorHandler) SafeExecute(operation string, fn func() error, cleanup func()) error {
	err := fn()
	if err != nil {
		h.updateErrorStats(operation, err.Error())

		if cleanup != nil {
			Info("running cleanup for %s", operation)
			cleanup()
		}

		return NewError(fmt.Sprintf("operation %s failed", operation), err)
	}
	return nil
}

func (h *ErrorHandler) updateErrorStats(operation string, errMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.errorStats[operation] == nil {
		h.errorStats[operation] = make(map[string]int)
	}
	h.errorStats[operation][errMsg]++
}

// GetErrorStats returns a copy of the per-operation error counts.
func (h *ErrorHandler) GetErrorStats() map[string]map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]map[string]int, len(h.errorStats))
	for op, errs := range h.errorStats {
		out[op] = make(map[string]int, len(errs))
		for msg, n := range errs {
			out[op][msg] = n
		}
	}
	return out
}

// PrintErrorStats logs the accumulated error counts.
func (h *ErrorHandler) PrintErrorStats() {
	stats := h.GetErrorStats()
	if len(stats) == 0 {
		Info("no errors recorded")
		return
	}

	Info("error statistics:")
	for operation, errors := range stats {
		Info("operation: %s", operation)
		for errMsg, count := range errors {
			Info("  - %s: %d", errMsg, count)
		}
	}
}
