//go:build linux

package vfs

import "golang.org/x/sys/unix"

// Filesystem magic numbers (statfs f_type) of network and virtual filesystems
// that must not be walked.
var remoteMagic = map[int64]string{
	0x6969:     "nfs",
	0x517B:     "smb",
	0xFF534D42: "cifs",
	0xFE534D42: "smb2",
	0x73757245: "coda",
	0x5346414F: "afs",
	0x564C:     "ncp",
	0x65735546: "fuse",
	0x9FA0:     "proc",
	0x62656572: "sysfs",
}

func isLocalMount(name string) bool {
	var st unix.Statfs_t
	if err := unix.Statfs(name, &st); err != nil {
		// Unknown is treated as local; the walk itself will surface read errors.
		return true
	}
	_, remote := remoteMagic[int64(st.Type)]
	return !remote
}
