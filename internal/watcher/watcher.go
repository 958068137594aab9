// Package watcher delivers debounced batches of file changes under one or
// more directory trees.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	fserrors "github.com/conneroisu/fsbuild/internal/errors"
	"github.com/conneroisu/fsbuild/internal/logging"
)

// FileWatcher watches for file changes and groups bursts of them.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	filters   []FileFilter
	handlers  []ChangeHandler
	logger    logging.Logger
	mutex     sync.RWMutex
}

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter reports whether a path should produce events.
type FileFilter func(path string) bool

// ChangeHandler handles one debounced batch.
type ChangeHandler func(ctx context.Context, events []ChangeEvent) error

// Debouncer groups rapid file changes together
type Debouncer struct {
	delay   time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending []ChangeEvent
	mutex   sync.Mutex
}

// NewFileWatcher creates a watcher that waits debounceDelay of quiet before
// delivering a batch. A nil logger discards log output.
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fserrors.NewInternalError(fserrors.ErrCodeInternalError, "create file watcher", err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	debouncer := &Debouncer{
		delay:   debounceDelay,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	fw := &FileWatcher{
		watcher:   w,
		debouncer: debouncer,
		filters:   make([]FileFilter, 0),
		handlers:  make([]ChangeHandler, 0),
		logger:    logger.WithComponent("watcher"),
	}

	return fw, nil
}

// AddFilter adds a file filter. An event must pass every filter.
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath watches a single directory.
func (fw *FileWatcher) AddPath(path string) error {
	cleanPath, err := validateDir(path)
	if err != nil {
		return err
	}
	return fw.watcher.Add(cleanPath)
}

// AddRecursive watches root and every directory below it. Hidden
// directories are watched too; filters decide what reaches handlers.
func (fw *FileWatcher) AddRecursive(root string) error {
	cleanRoot, err := validateDir(root)
	if err != nil {
		return err
	}

	return filepath.WalkDir(cleanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fserrors.ErrReadFailed(path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.watcher.Add(path); err != nil {
			return fserrors.NewIOError(fserrors.ErrCodeReadFailed, "watch directory", err).WithPath(path)
		}
		return nil
	})
}

// WatchList returns the directories currently watched.
func (fw *FileWatcher) WatchList() []string {
	list := fw.watcher.WatchList()
	sort.Strings(list)
	return list
}

// validateDir cleans path and checks that it names an existing directory.
func validateDir(path string) (string, error) {
	if path == "" {
		return "", fserrors.ErrInvalidPath(path)
	}
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fserrors.NewIOError(fserrors.ErrCodeFileNotFound, "watch root not found", err).WithPath(path)
	}
	if !info.IsDir() {
		return "", fserrors.NewValidationError(fserrors.ErrCodeInvalidPath, "watch root is not a directory").WithPath(path)
	}
	return cleanPath, nil
}

// Start runs the watcher until ctx is cancelled. It does not block.
func (fw *FileWatcher) Start(ctx context.Context) error {
	go fw.debouncer.start(ctx)
	go fw.processEvents(ctx)
	go fw.watchLoop(ctx)

	return nil
}

// Stop stops the file watcher and cleans up resources
func (fw *FileWatcher) Stop() error {
	fw.debouncer.stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(ctx, event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(ctx context.Context, event fsnotify.Event) {
	info, statErr := os.Stat(event.Name)

	// New directories are not covered by the existing watches.
	if statErr == nil && info.IsDir() && event.Has(fsnotify.Create) {
		if err := fw.AddRecursive(event.Name); err != nil {
			fw.logger.Warn(ctx, err, "Failed to watch new directory", "path", event.Name)
		}
	}

	fw.mutex.RLock()
	filters := fw.filters
	fw.mutex.RUnlock()

	for _, filter := range filters {
		if !filter(event.Name) {
			return
		}
	}

	var modTime time.Time
	var size int64
	if statErr == nil {
		modTime = info.ModTime()
		size = info.Size()
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventTypeCreated
	case event.Has(fsnotify.Write):
		eventType = EventTypeModified
	case event.Has(fsnotify.Remove):
		eventType = EventTypeDeleted
	case event.Has(fsnotify.Rename):
		eventType = EventTypeRenamed
	default:
		eventType = EventTypeModified
	}

	changeEvent := ChangeEvent{
		Type:    eventType,
		Path:    event.Name,
		ModTime: modTime,
		Size:    size,
	}

	select {
	case fw.debouncer.events <- changeEvent:
	default:
		fw.logger.Debug(ctx, "Event queue full, dropping event", "path", event.Name)
	}
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-fw.debouncer.output:
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			for _, handler := range handlers {
				if err := handler(ctx, events); err != nil {
					fw.logger.Error(ctx, err, "File watcher handler failed", "events", len(events))
				}
			}
		}
	}
}

func (d *Debouncer) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.stop()
			return
		case event := <-d.events:
			d.addEvent(event)
		}
	}
}

func (d *Debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) addEvent(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

// flush delivers the pending events, keeping the last event per path,
// sorted by path.
func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	eventMap := make(map[string]ChangeEvent, len(d.pending))
	for _, event := range d.pending {
		eventMap[event.Path] = event
	}

	events := make([]ChangeEvent, 0, len(eventMap))
	for _, event := range eventMap {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })

	select {
	case d.output <- events:
	default:
	}

	d.pending = d.pending[:0]
}

// NoHiddenFilter drops paths whose file name starts with a dot, matching
// the files the asset run skips.
func NoHiddenFilter(path string) bool {
	return !strings.HasPrefix(filepath.Base(path), ".")
}

// NoEditorTempFilter drops editor swap and backup files.
func NoEditorTempFilter(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "~") || strings.HasPrefix(base, "#") {
		return false
	}
	switch filepath.Ext(base) {
	case ".swp", ".swx", ".tmp":
		return false
	}
	return true
}
