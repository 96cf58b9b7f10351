package domain

import (
	"fmt"
	"time"
)

// Transitions are monotonic within one attempt:
// pending -> processing -> {completed | failed | cancelled}.
// Re-entering processing starts a new attempt.

// MarkProcessing moves the document into processing. StartedAt is stamped on
// the first attempt only; RetryCount increments when the prior attempt ended
// without completing.
func (p *Processing) MarkProcessing(now time.Time) error {
	switch p.Status {
	case StatusProcessing:
		return fmt.Errorf("document already processing: %w", ErrInvalidInput)
	case StatusFailed, StatusCancelled:
		p.RetryCount++
	}
	if p.StartedAt == nil {
		t := now
		p.StartedAt = &t
	}
	p.Status = StatusProcessing
	return nil
}

// MarkCompleted finishes the current attempt successfully. Progress snaps to
// 100 and any prior error is cleared.
func (p *Processing) MarkCompleted(now time.Time) error {
	if p.Status != StatusProcessing {
		return fmt.Errorf("complete from %q: %w", p.Status, ErrInvalidInput)
	}
	t := now
	p.Status = StatusCompleted
	p.CompletedAt = &t
	p.Progress = 100
	p.Error = nil
	return nil
}

// MarkFailed finishes the current attempt with a structured error. The last
// reported progress is preserved for diagnostics.
func (p *Processing) MarkFailed(now time.Time, code, message string) error {
	if p.Status != StatusProcessing {
		return fmt.Errorf("fail from %q: %w", p.Status, ErrInvalidInput)
	}
	t := now
	p.Status = StatusFailed
	p.CompletedAt = &t
	p.Error = &ProcessingError{Message: message, Code: code}
	return nil
}

// MarkCancelled finishes the current attempt without a result.
func (p *Processing) MarkCancelled(now time.Time) error {
	if p.Status != StatusProcessing {
		return fmt.Errorf("cancel from %q: %w", p.Status, ErrInvalidInput)
	}
	t := now
	p.Status = StatusCancelled
	p.CompletedAt = &t
	return nil
}

// SetProgress records caller-reported progress, clamped to [0,100].
func (p *Processing) SetProgress(progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	p.Progress = progress
}
