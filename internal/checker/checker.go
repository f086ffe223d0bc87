// Package checker defines the per-VCS root predicates and the registry that
// holds them.
package checker

import (
	"errors"
	"fmt"

	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/vfs"
)

// ErrUnknownKind is returned when no checker is registered for a kind.
var ErrUnknownKind = errors.New("checker: unknown vcs kind")

// RootChecker answers root questions for one VCS kind. Implementations must be
// idempotent and cheap: they run once per visited directory.
type RootChecker interface {
	Kind() model.Kind
	// MarkerName is the name of the directory whose presence makes its parent
	// a root, e.g. ".git".
	MarkerName() string
	IsRoot(fsys vfs.FS, dir string) (bool, error)
	// IsIgnored reports whether dir falls in a subtree the VCS ignores for the
	// working copy rooted at root.
	IsIgnored(fsys vfs.FS, root, dir string) (bool, error)
	// DependentRoots suggests other directories that belong to the same logical
	// project as root, such as submodules or linked worktrees.
	DependentRoots(fsys vfs.FS, root string) ([]string, error)
}

// PanicError carries a panic raised inside a checker.
type PanicError struct {
	Kind  model.Kind
	Op    string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("checker %s: %s panicked: %v", e.Kind, e.Op, e.Value)
}

func recoverInto(err *error, c RootChecker, op string) {
	if v := recover(); v != nil {
		*err = &PanicError{Kind: c.Kind(), Op: op, Value: v}
	}
}

// SafeIsRoot calls c.IsRoot, converting a panic into an error.
func SafeIsRoot(c RootChecker, fsys vfs.FS, dir string) (ok bool, err error) {
	defer recoverInto(&err, c, "IsRoot")
	return c.IsRoot(fsys, dir)
}

// SafeIsIgnored calls c.IsIgnored, converting a panic into an error.
func SafeIsIgnored(c RootChecker, fsys vfs.FS, root, dir string) (ok bool, err error) {
	defer recoverInto(&err, c, "IsIgnored")
	return c.IsIgnored(fsys, root, dir)
}

// SafeDependentRoots calls c.DependentRoots, converting a panic into an error.
func SafeDependentRoots(c RootChecker, fsys vfs.FS, root string) (dirs []string, err error) {
	defer recoverInto(&err, c, "DependentRoots")
	return c.DependentRoots(fsys, root)
}
