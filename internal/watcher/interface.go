// internal/watcher/interface.go
package watcher

import "context"

// Source produces batches of filesystem change events for the directories it
// was asked to watch. Run owns the Events channel and closes it on return.
type Source interface {
	Events() <-chan []Event
	Watch(dir string) error
	Run(ctx context.Context) error
	Close() error
}

// IgnoreFunc reports whether a directory below a watched root is left out,
// together with its subtree. A nil IgnoreFunc ignores nothing.
type IgnoreFunc func(path string) bool

func (f IgnoreFunc) ignored(path string) bool {
	return f != nil && f(path)
}
