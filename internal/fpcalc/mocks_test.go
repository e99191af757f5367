package fpcalc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"
)

// ---------------------------------------------------------------------------
// Mock implementations for testing
// ---------------------------------------------------------------------------

type mockFileStatter struct {
	stat func(name string) (os.FileInfo, error)
}

func (m *mockFileStatter) Stat(name string) (os.FileInfo, error) {
	if m.stat != nil {
		return m.stat(name)
	}
	return nil, os.ErrNotExist
}

type mockEnvProvider struct {
	getenv      func(key string) string
	userHomeDir func() (string, error)
	lookPath    func(file string) (string, error)
}

func (m *mockEnvProvider) Getenv(key string) string {
	if m.getenv != nil {
		return m.getenv(key)
	}
	return ""
}

func (m *mockEnvProvider) UserHomeDir() (string, error) {
	if m.userHomeDir != nil {
		return m.userHomeDir()
	}
	return "/mock/home", nil
}

func (m *mockEnvProvider) LookPath(file string) (string, error) {
	if m.lookPath != nil {
		return m.lookPath(file)
	}
	return "", errors.New("not found")
}

type mockFileInfo struct {
	name string
}

func (m mockFileInfo) Name() string       { return m.name }
func (m mockFileInfo) Size() int64        { return 0 }
func (m mockFileInfo) Mode() os.FileMode  { return 0755 }
func (m mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m mockFileInfo) IsDir() bool        { return false }
func (m mockFileInfo) Sys() any           { return nil }

// fakeProcess consumes stdin, then writes output to stdout and exits with exitErr.
type fakeProcess struct {
	output   string
	exitErr  error
	startErr error

	stdinR  *io.PipeReader
	stdinW  *io.PipeWriter
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter

	mu       sync.Mutex
	received bytes.Buffer
	path     string
	args     []string
	done     chan struct{}
}

func newFakeProcess(output string, exitErr error) *fakeProcess {
	p := &fakeProcess{output: output, exitErr: exitErr, done: make(chan struct{})}
	p.stdinR, p.stdinW = io.Pipe()
	p.stdoutR, p.stdoutW = io.Pipe()
	return p
}

// factory returns a processFactory that always hands out p.
func (p *fakeProcess) factory() processFactory {
	return func(_ context.Context, path string, args []string, stderr io.Writer) process {
		p.path, p.args = path, args
		if p.exitErr != nil {
			_, _ = io.WriteString(stderr, "fake failure")
		}
		return p
	}
}

func (p *fakeProcess) StdinPipe() (io.WriteCloser, error) { return p.stdinW, nil }
func (p *fakeProcess) StdoutPipe() (io.ReadCloser, error) { return p.stdoutR, nil }

func (p *fakeProcess) Start() error {
	if p.startErr != nil {
		return p.startErr
	}
	go func() {
		defer close(p.done)
		buf := make([]byte, 4096)
		for {
			n, err := p.stdinR.Read(buf)
			p.mu.Lock()
			p.received.Write(buf[:n])
			p.mu.Unlock()
			if err != nil {
				break
			}
		}
		_, _ = io.WriteString(p.stdoutW, p.output)
		_ = p.stdoutW.Close()
	}()
	return nil
}

func (p *fakeProcess) Wait() error {
	<-p.done
	return p.exitErr
}

func (p *fakeProcess) receivedBytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return bytes.Clone(p.received.Bytes())
}
