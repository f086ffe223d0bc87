package watcher

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is a set of filesystem change kinds.
type Op uint8

const (
	Create Op = 1 << iota
	Write
	Remove
	Rename
)

func (o Op) Has(x Op) bool { return o&x != 0 }

func (o Op) String() string {
	var parts []string
	for _, n := range []struct {
		op   Op
		name string
	}{{Create, "create"}, {Write, "write"}, {Remove, "remove"}, {Rename, "rename"}} {
		if o.Has(n.op) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

type Event struct {
	Path string
	Op   Op
	Time time.Time
}

func fromFSNotify(e fsnotify.Event) Event {
	var op Op
	if e.Has(fsnotify.Create) {
		op |= Create
	}
	if e.Has(fsnotify.Write) {
		op |= Write
	}
	if e.Has(fsnotify.Remove) {
		op |= Remove
	}
	if e.Has(fsnotify.Rename) {
		op |= Rename
	}
	return Event{Path: e.Name, Op: op, Time: time.Now()}
}

// Relevant reports whether e can change the set of roots: a creation or
// rename of a marker directory or of anything beneath one.
func Relevant(e Event, markers []string) bool {
	if !e.Op.Has(Create) && !e.Op.Has(Rename) {
		return false
	}
	dir := filepath.Clean(e.Path)
	for {
		if slices.Contains(markers, filepath.Base(dir)) {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}
