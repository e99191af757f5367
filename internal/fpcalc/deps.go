package fpcalc

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// ---------------------------------------------------------------------------
// Interfaces - local to this package, following Go idiom
// ---------------------------------------------------------------------------

// fileStatter checks for the presence of binaries.
type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// envProvider abstracts environment and path lookup operations.
type envProvider interface {
	Getenv(key string) string
	UserHomeDir() (string, error)
	LookPath(file string) (string, error)
}

// process is a started or startable fpcalc invocation.
type process interface {
	StdinPipe() (io.WriteCloser, error)
	StdoutPipe() (io.ReadCloser, error)
	Start() error
	Wait() error
}

// processFactory builds a process; stderr receives the tool's diagnostics.
type processFactory func(ctx context.Context, path string, args []string, stderr io.Writer) process

// ---------------------------------------------------------------------------
// Default implementations - delegate to standard library
// ---------------------------------------------------------------------------

// Compile-time interface verification.
var (
	_ fileStatter = osFileStatter{}
	_ envProvider = osEnvProvider{}
	_ process     = (*exec.Cmd)(nil)
)

// osFileStatter implements fileStatter using the os package.
type osFileStatter struct{}

func (osFileStatter) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// osEnvProvider implements envProvider using os and exec packages.
type osEnvProvider struct{}

func (osEnvProvider) Getenv(key string) string {
	return os.Getenv(key)
}

func (osEnvProvider) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (osEnvProvider) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// execProcess builds an *exec.Cmd bound to ctx.
func execProcess(ctx context.Context, path string, args []string, stderr io.Writer) process {
	// #nosec G204 -- path comes from Resolve, args are built by this package
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = stderr
	return cmd
}
