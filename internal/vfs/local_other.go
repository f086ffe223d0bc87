//go:build !linux

package vfs

func isLocalMount(string) bool {
	return true
}
