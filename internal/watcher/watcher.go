package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aman-cerp/syncd/internal/objects"
	"github.com/aman-cerp/syncd/internal/project"
	"github.com/aman-cerp/syncd/internal/syncerrs"
)

// ChangeKind classifies a ChangeEvent.
type ChangeKind int

const (
	// Created marks a path present in the newer snapshot but not the older.
	Created ChangeKind = iota
	// Modified marks a path present in both snapshots with differing
	// fingerprints.
	Modified
	// Deleted marks a path present in the older snapshot but not the newer.
	Deleted
)

// String renders a ChangeKind for logging.
func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "Created"
	case Modified:
		return "Modified"
	case Deleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// ChangeEvent is a single canonical change produced by a per-root polling
// task. Path is always project-relative.
type ChangeEvent struct {
	Kind ChangeKind
	Path string
	Root string
}

// CommandKind classifies a Command sent through the control channel.
type CommandKind int

const (
	// CommandOpen asks the engine to begin watching a path.
	CommandOpen CommandKind = iota
	// CommandClose asks the engine to stop watching a path.
	CommandClose
	// CommandShutdown asks the owning supervisor to shut the agent down.
	CommandShutdown
)

// Command is the tagged-variant request the control channel decodes and
// the engine (or its supervisor, for Shutdown) consumes.
type Command struct {
	Kind   CommandKind
	Path   string // set for CommandOpen / CommandClose
	Caller string // set for CommandShutdown
}

// WatchedRootInfo is a read-only snapshot of a WatchedRoot's public state,
// returned by Engine.Roots for introspection (status reporting, tests).
type WatchedRootInfo struct {
	Path        string
	SessionID   uuid.UUID
	LastScanned time.Time
}

// watchedRoot is the engine's internal record of one active watch: the
// Project, a handle to its polling task, and a last-scanned timestamp.
// Only the engine's mutex-guarded map mutates this record's membership;
// lastScanned is updated exclusively by the task that owns it.
type watchedRoot struct {
	path      string
	proj      *project.Project
	sessionID uuid.UUID
	cancel    context.CancelFunc
	done      chan struct{}
	wakeCh    chan struct{} // non-nil only when the accelerator is enabled

	mu          sync.Mutex
	lastScanned time.Time
}

// wake returns the channel the accelerator uses to cut a poll cycle's
// sleep short. A nil channel blocks forever in a select, which is exactly
// the desired behavior when no accelerator is attached.
func (w *watchedRoot) wake() <-chan struct{} {
	return w.wakeCh
}

func (w *watchedRoot) setLastScanned(t time.Time) {
	w.mu.Lock()
	w.lastScanned = t
	w.mu.Unlock()
}

func (w *watchedRoot) info() WatchedRootInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WatchedRootInfo{Path: w.path, SessionID: w.sessionID, LastScanned: w.lastScanned}
}

// Options configures the engine.
type Options struct {
	// PollInterval is the sleep between poll cycles. Default: 1s.
	PollInterval time.Duration
	// EventBuffer is the capacity of the fan-in channel. Default: 256.
	EventBuffer int
	// UseAccelerator enables the optional fsnotify-backed accelerator that
	// wakes a root's poll cycle early on an OS-reported change, without
	// ever bypassing the polling diff/rehash path.
	UseAccelerator bool
	// ExtraIgnore lists additional gitignore-syntax patterns applied to
	// every root this engine watches, on top of each root's own
	// .gitignore and the unconditional ".git" rule.
	ExtraIgnore []string
}

// WithDefaults fills zero-valued fields with the engine's defaults.
func (o Options) WithDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 256
	}
	return o
}

// Engine owns the set of WatchedRoots and the single fan-in channel all
// per-root tasks deliver events into. The watched-roots table is the only
// shared mutable state; everything else is task-local.
type Engine struct {
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
	tasks  errgroup.Group

	mu    sync.Mutex
	roots map[string]*watchedRoot

	events chan ChangeEvent
	errs   chan error
}

// New constructs an Engine. Call Shutdown to release its resources.
func New(opts Options) *Engine {
	opts = opts.WithDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		roots:  make(map[string]*watchedRoot),
		events: make(chan ChangeEvent, opts.EventBuffer),
		errs:   make(chan error, 16),
	}
}

// Events returns the fan-in receiver. It closes once Shutdown has drained
// every per-root task.
func (e *Engine) Events() <-chan ChangeEvent {
	return e.events
}

// Recv returns the next event from the fan-in receiver, blocking until
// one arrives; ok is false once Shutdown has drained every producer.
// Callers multiplexing against other sources should select on Events
// directly instead.
func (e *Engine) Recv() (ChangeEvent, bool) {
	ev, ok := <-e.events
	return ev, ok
}

// Errors returns the channel carrying per-root ScanErrors for tasks that
// terminated abnormally (see syncerrs.KindScanError). Unlike Events, this
// channel is never closed by Shutdown; it simply stops receiving once all
// tasks have exited.
func (e *Engine) Errors() <-chan error {
	return e.errs
}

// Roots returns a snapshot of every currently watched root, for status
// reporting and tests. It takes no lock-ordering dependency on the caller.
func (e *Engine) Roots() []WatchedRootInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]WatchedRootInfo, 0, len(e.roots))
	for _, wr := range e.roots {
		out = append(out, wr.info())
	}
	return out
}

// isAncestor reports whether a is a strict ancestor directory of b. Both
// must already be filepath.Clean'd absolute paths.
func isAncestor(a, b string) bool {
	if a == b {
		return false
	}
	prefix := a
	if !isPathSeparatorTerminated(prefix) {
		prefix += string(filepath.Separator)
	}
	return len(b) > len(prefix) && b[:len(prefix)] == prefix
}

func isPathSeparatorTerminated(s string) bool {
	return len(s) > 0 && s[len(s)-1] == filepath.Separator
}

// Watch applies the subsumption rules and, if path is accepted, builds a
// Project and spawns its polling task:
//
//  1. path equal to an existing root: BadRequest (duplicate).
//  2. path a strict descendant of an existing root: BadRequest (already
//     covered).
//  3. path a strict ancestor of one or more existing roots: those roots
//     are torn down first.
//  4. otherwise: path starts watching.
//
// Watch also fails if the initial snapshot construction fails, in which
// case any roots already torn down under rule 3 are not restored — they
// were subsumed regardless of whether path itself could start.
func (e *Engine) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return syncerrs.BadRequest("resolve absolute path", err).WithDetail(path)
	}
	abs = filepath.Clean(abs)

	e.mu.Lock()
	for _, wr := range e.roots {
		if wr.path == abs {
			e.mu.Unlock()
			return syncerrs.BadRequest("path already watched", nil).WithDetail(abs)
		}
		if isAncestor(wr.path, abs) {
			e.mu.Unlock()
			return syncerrs.BadRequest("path already covered by a watched ancestor", nil).WithDetail(abs)
		}
	}
	var toRemove []*watchedRoot
	for p, wr := range e.roots {
		if isAncestor(abs, wr.path) {
			toRemove = append(toRemove, wr)
			delete(e.roots, p)
		}
	}
	e.mu.Unlock()

	for _, wr := range toRemove {
		wr.cancel()
		<-wr.done
	}

	proj, err := project.NewWithExtra(abs, e.opts.ExtraIgnore)
	if err != nil {
		return err
	}
	before, err := objects.FromDirectory(proj)
	if err != nil {
		return err
	}
	after, err := objects.FromDirectory(proj)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(e.ctx)
	wr := &watchedRoot{
		path:        abs,
		proj:        proj,
		sessionID:   uuid.New(),
		cancel:      cancel,
		done:        make(chan struct{}),
		lastScanned: time.Now(),
	}
	if e.opts.UseAccelerator {
		wr.wakeCh = make(chan struct{}, 1)
	}

	e.mu.Lock()
	e.roots[abs] = wr
	e.mu.Unlock()

	e.tasks.Go(func() error {
		defer close(wr.done)
		// A zero watermark makes the first cycle rehash every file, so a
		// change made between the initial scan and that cycle is not hidden
		// behind a watermark later than its (coarse-grained) mtime.
		e.pollRoot(ctx, wr, before, after, time.Time{})
		e.mu.Lock()
		if cur, ok := e.roots[abs]; ok && cur == wr {
			delete(e.roots, abs)
		}
		e.mu.Unlock()
		return nil
	})

	if e.opts.UseAccelerator {
		e.startAccelerator(ctx, wr)
	}

	return nil
}

// Unwatch cancels path's polling task, waits for it to terminate, and
// removes it from the engine. It fails if path is not currently watched.
func (e *Engine) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return syncerrs.BadRequest("resolve absolute path", err).WithDetail(path)
	}
	abs = filepath.Clean(abs)

	e.mu.Lock()
	wr, ok := e.roots[abs]
	if ok {
		delete(e.roots, abs)
	}
	e.mu.Unlock()

	if !ok {
		return syncerrs.BadRequest("path not watched", nil).WithDetail(abs)
	}

	wr.cancel()
	<-wr.done
	return nil
}

// Shutdown cancels every watched root's task, waits for all of them to
// drain, and closes the Events channel. It is safe to call once; a second
// call is a no-op beyond re-cancelling an already-cancelled context.
func (e *Engine) Shutdown() {
	alreadyShutDown := e.ctx.Err() != nil
	e.cancel()
	_ = e.tasks.Wait()
	if !alreadyShutDown {
		close(e.events)
	}
}

func (e *Engine) surfaceError(err error) {
	select {
	case e.errs <- err:
	default:
		// Errors channel is a best-effort diagnostic stream; a full buffer
		// means nobody is listening, which is not grounds to block a
		// polling task that is already tearing itself down.
	}
}
