package assets

// Totals accumulates sizes across a run. Text files count characters and
// copied files count bytes, so the sums mix both units.
type Totals struct {
	Files    int
	Copied   int
	Original int64
	Minified int64
	Gzip     int64
}

// Add folds one file result into the totals.
func (t *Totals) Add(r Result) {
	t.Files++
	if r.Copied {
		t.Copied++
	}
	t.Original += r.Original
	t.Minified += r.Minified
	t.Gzip += r.GzipSize
}

// Saved is the number of units removed.
func (t Totals) Saved() int64 {
	return t.Original - t.Minified
}

// Reduction returns the overall percentage saved. ok is false when the run
// saw no content.
func (t Totals) Reduction() (pct float64, ok bool) {
	return reduction(t.Original, t.Minified)
}

func reduction(original, minified int64) (float64, bool) {
	if original <= 0 {
		return 0, false
	}
	return float64(original-minified) / float64(original) * 100, true
}
