// Package fs provides the filesystem abstraction used by every persisted
// memory file, plus fault injection for tests.
//
//   - [FileSystem]: open, remove, rename, stat, mkdir, readdir
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test wrapper that injects write, sync, rename and open errors
//   - [WriteFileAtomic]/[ReadFile]: whole-file helpers built on FileSystem
//
// Production code uses fs.Default:
//
//	err := fs.WriteFileAtomic(fs.Default, path, data, 0o644)
//
// Filesystem operations take no context.Context. Local file I/O is not
// interruptible at the syscall level.
package fs
