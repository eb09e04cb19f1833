package batch

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the file system a Processor reads documents from and writes them
// back to.
type FS interface {
	fs.ReadDirFS
	fs.ReadFileFS
	fs.StatFS
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

type hostFS struct{}

// HostFS returns the operating system's file system. Names are resolved
// against the working directory; absolute names are used as is.
func HostFS() FS {
	return hostFS{}
}

func (hostFS) Open(name string) (fs.File, error) {
	return os.Open(filepath.FromSlash(name))
}

func (hostFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(filepath.FromSlash(name))
}

func (hostFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.FromSlash(name))
}

func (hostFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(filepath.FromSlash(name))
}

func (hostFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(filepath.FromSlash(name), data, perm)
}
