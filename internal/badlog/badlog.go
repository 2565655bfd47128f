// Package badlog implements the persistent per-stage failure ledger:
// when a stage gives up on one unit of work (one graph, one layout) for
// a Recoverable reason, it records the reason here instead of retrying
// it forever on every subsequent run. Entries are keyed by the tuple of
// identifying arguments the caller used (an ID, or an (ID, Layout) pair,
// and so on), exactly as the original driver's BadLog did with Python
// tuples.
package badlog

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// Key is a stringified form of a caller's identifying arguments, so an
// arbitrary tuple (an idfp.ID, an enums.Layout, ...) can be used as a
// Go map key via fmt.Sprint.
type Key string

// KeyOf builds a Key from a caller's identifying arguments. Callers pass
// the same arguments they used for the operation that failed, e.g. a
// single graph ID, or a (graph ID, layout kind) pair.
func KeyOf(args ...interface{}) Key {
	return Key(fmt.Sprint(args...))
}

type onDisk struct {
	Timestamp time.Time
	Entries   map[enums.Action]map[Key]string
}

// Log is the in-memory, lazily-persisted bad-log. A nil *Log behaves as
// an always-empty, never-persisted log for GetBad, Iterate, Count and
// Close (SetBad on it returns an error); Open with an empty filename
// gives a non-nil, in-memory-only Log instead.
type Log struct {
	mu       sync.Mutex
	filename string
	readonly bool
	ts       time.Time
	entries  map[enums.Action]map[Key]string
	log      *logger.Logger
}

// Open loads filename if it exists, or starts an empty in-memory log if
// it doesn't. Passing an empty filename gives an in-memory-only log that
// Close never writes anywhere.
func Open(filename string, readonly bool, log *logger.Logger) (*Log, error) {
	if log == nil {
		log = logger.NewNop()
	}
	l := &Log{
		filename: filename,
		readonly: readonly,
		entries:  make(map[enums.Action]map[Key]string),
		log:      log,
	}
	for _, a := range allActions {
		l.entries[a] = make(map[Key]string)
	}
	if filename == "" {
		return l, nil
	}
	log.Info("loading bad log file", "filename", filename)
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, xerrors.WrapFatal(err, "reading bad log %s", filename)
	}
	var d onDisk
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return nil, xerrors.WrapFatal(err, "decoding bad log %s", filename)
	}
	l.ts = d.Timestamp
	for a, m := range d.Entries {
		if l.entries[a] == nil {
			l.entries[a] = make(map[Key]string)
		}
		for k, v := range m {
			l.entries[a][k] = v
		}
	}
	return l, nil
}

var allActions = []enums.Action{
	enums.ActionGraphs, enums.ActionLayouts, enums.ActionLayWorse,
	enums.ActionLayInter, enums.ActionProperties, enums.ActionMetrics, enums.ActionModel,
}

// GetBad returns the recorded failure message for (act, args...), and
// whether one was recorded at all.
func (l *Log) GetBad(act enums.Action, args ...interface{}) (string, bool) {
	if l == nil {
		return "", false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	msg, ok := l.entries[act][KeyOf(args...)]
	return msg, ok
}

// SetBad records msg as the failure reason for (act, args...). msg must
// be non-empty: a bad-log entry with no message isn't a useful record of
// anything.
func (l *Log) SetBad(act enums.Action, msg string, args ...interface{}) error {
	if l == nil {
		return xerrors.Sanityf("badlog: SetBad called on a nil Log")
	}
	if l.readonly {
		return xerrors.Sanityf("badlog: SetBad called on a read-only Log")
	}
	if msg == "" {
		return xerrors.Sanityf("badlog: message must not be the empty string")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries[act] == nil {
		l.entries[act] = make(map[Key]string)
	}
	l.entries[act][KeyOf(args...)] = msg
	return nil
}

// Entry pairs a bad-log key with its recorded message, for Iterate.
type Entry struct {
	Key Key
	Msg string
}

// Iterate returns every recorded entry for act, in no particular order.
func (l *Log) Iterate(act enums.Action) []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries[act]))
	for k, v := range l.entries[act] {
		out = append(out, Entry{Key: k, Msg: v})
	}
	return out
}

// Count reports how many entries are recorded for act.
func (l *Log) Count(act enums.Action) int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries[act])
}

// Close persists the log to disk (unless it is read-only or in-memory
// only), renaming any previous file to filename+"~" first so a crash
// mid-write never destroys the last-known-good log.
func (l *Log) Close() error {
	if l == nil || l.filename == "" || l.readonly {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Info("saving bad log file", "filename", l.filename)
	if err := os.Rename(l.filename, l.filename+"~"); err != nil && !os.IsNotExist(err) {
		return xerrors.WrapFatal(err, "backing up bad log %s", l.filename)
	}
	var buf bytes.Buffer
	d := onDisk{Timestamp: time.Now(), Entries: l.entries}
	if err := gob.NewEncoder(&buf).Encode(d); err != nil {
		return xerrors.WrapFatal(err, "encoding bad log %s", l.filename)
	}
	if err := os.WriteFile(l.filename, buf.Bytes(), 0o644); err != nil {
		return xerrors.WrapFatal(err, "writing bad log %s", l.filename)
	}
	return nil
}

// Timestamp reports when the currently-loaded log was last saved, the
// zero time if it was never saved.
func (l *Log) Timestamp() time.Time {
	if l == nil {
		return time.Time{}
	}
	return l.ts
}
