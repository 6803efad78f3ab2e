package watcher

import (
	"context"
	"time"

	"github.com/aman-cerp/syncd/internal/objects"
)

// pollRoot is the per-root polling task: it owns before and after
// exclusively and loops until ctx is cancelled or an unrecoverable scan
// error occurs, at which point it terminates and (for a scan error)
// surfaces the cause on the engine's Errors channel.
//
// Each cycle: sleep for the poll interval (or wake early on an
// accelerator hint), advance after via Update, diff against before,
// emit one ChangeEvent per changed path, then patch before forward so
// the next cycle's diff only reflects what changed since.
func (e *Engine) pollRoot(ctx context.Context, wr *watchedRoot, before, after *objects.ObjectSnapshot, watermark time.Time) {
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-wr.wake():
		}

		newWatermark, err := after.Update(watermark)
		if err != nil {
			e.surfaceError(err)
			return
		}
		watermark = newWatermark
		wr.setLastScanned(time.Now())

		delta := before.Diff(after)
		if !delta.IsEmpty() {
			if sendErr := e.emit(ctx, wr.path, delta); sendErr != nil {
				return
			}
			before.Patch(delta)
		}
	}
}

// emit sends one ChangeEvent per entry in delta, grouped by category
// (added, then removed, then modified). Sending blocks when the fan-in
// channel is full — a recognized event is always delivered or the
// engine surfaces the cause, never silently dropped — but never blocks
// past ctx cancellation.
func (e *Engine) emit(ctx context.Context, root string, delta objects.ObjectsDelta) error {
	for path := range delta.Added {
		if err := e.send(ctx, ChangeEvent{Kind: Created, Path: path, Root: root}); err != nil {
			return err
		}
	}
	for path := range delta.Removed {
		if err := e.send(ctx, ChangeEvent{Kind: Deleted, Path: path, Root: root}); err != nil {
			return err
		}
	}
	for path := range delta.Modified {
		if err := e.send(ctx, ChangeEvent{Kind: Modified, Path: path, Root: root}); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) send(ctx context.Context, ev ChangeEvent) error {
	select {
	case e.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
