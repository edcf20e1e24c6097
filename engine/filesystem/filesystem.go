package filesystem

import (
	"os"
	"path/filepath"
)

// FileSystem resolves engine paths relative to a root directory, usually the
// directory the loaded project lives in. Relative paths stay relative to that
// root; absolute paths pass through untouched.
type FileSystem struct {
	root string
}

func New() *FileSystem {
	return &FileSystem{}
}

func (fs *FileSystem) SetRootDirectory(path string) {
	fs.root = filepath.Clean(path)
}

func (fs *FileSystem) RootDirectory() string {
	return fs.root
}

// Resolve turns a project-relative path into an absolute one.
func (fs *FileSystem) Resolve(path string) string {
	if filepath.IsAbs(path) || fs.root == "" {
		return path
	}
	return filepath.Join(fs.root, path)
}

func (fs *FileSystem) FileExists(path string) bool {
	info, err := os.Stat(fs.Resolve(path))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(fs.Resolve(path))
}

func GetParentPath(path string) string {
	return filepath.Dir(path)
}
