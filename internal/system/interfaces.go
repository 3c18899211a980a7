// Package system provides abstractions for OS operations to enable testing.
package system

import (
	"io/fs"
	"os"
)

// FileSystem abstracts the read-only file system operations cargo-sandbox needs.
type FileSystem interface {
	// ReadFile reads the named file and returns the contents.
	ReadFile(path string) ([]byte, error)

	// Stat returns file info for the named file.
	Stat(path string) (fs.FileInfo, error)

	// Exists returns true if the path exists.
	Exists(path string) bool

	// IsDir returns true if the path is a directory.
	IsDir(path string) bool
}

// Environment abstracts the process environment.
type Environment interface {
	// Getenv returns the value of the named variable, or "".
	Getenv(key string) string

	// Environ returns the environment as KEY=VALUE strings.
	Environ() []string

	// Getwd returns the current working directory.
	Getwd() (string, error)
}

// Default instances using real OS operations.
var (
	defaultFS  FileSystem  = &osFileSystem{}
	defaultEnv Environment = &osEnvironment{}
)

// DefaultFS returns the default FileSystem implementation using real OS operations.
func DefaultFS() FileSystem {
	return defaultFS
}

// DefaultEnv returns the default Environment implementation.
func DefaultEnv() Environment {
	return defaultEnv
}

// osFileSystem implements FileSystem using real OS operations.
type osFileSystem struct{}

func (f *osFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (f *osFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (f *osFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (f *osFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// osEnvironment implements Environment using the real process environment.
type osEnvironment struct{}

func (e *osEnvironment) Getenv(key string) string { return os.Getenv(key) }
func (e *osEnvironment) Environ() []string        { return os.Environ() }
func (e *osEnvironment) Getwd() (string, error)   { return os.Getwd() }
