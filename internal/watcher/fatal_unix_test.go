//go:build !windows

package watcher

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatalFsnotifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"watch limit", syscall.ENOSPC, true},
		{"wrapped fd limit", fmt.Errorf("add: %w", syscall.EMFILE), true},
		{"system fd limit", syscall.ENFILE, true},
		{"permission", syscall.EACCES, false},
		{"other", errors.New("queue overflow"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFatalFsnotifyError(tt.err); got != tt.want {
				t.Errorf("isFatalFsnotifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
