//go:build property

package watcher

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDebouncerProperties checks how a burst of events collapses into one
// batch.
func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("batch holds each path once, sorted, with its last event", prop.ForAll(
		func(ids []int) bool {
			if len(ids) == 0 {
				return true
			}

			d := &Debouncer{
				delay:   time.Hour,
				events:  make(chan ChangeEvent, 1),
				output:  make(chan []ChangeEvent, 1),
				pending: make([]ChangeEvent, 0),
			}
			defer d.stop()

			last := make(map[string]EventType)
			for i, id := range ids {
				path := fmt.Sprintf("data/file%02d.js", id)
				typ := EventType(i % 4)
				d.addEvent(ChangeEvent{Path: path, Type: typ})
				last[path] = typ
			}
			d.flush()

			var batch []ChangeEvent
			select {
			case batch = <-d.output:
			default:
				return false
			}

			if len(batch) != len(last) {
				return false
			}
			if !sort.SliceIsSorted(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path }) {
				return false
			}
			for _, e := range batch {
				if last[e.Path] != e.Type {
					return false
				}
			}
			return len(d.pending) == 0
		},
		gen.SliceOf(gen.IntRange(0, 15)),
	))

	properties.TestingRun(t)
}
