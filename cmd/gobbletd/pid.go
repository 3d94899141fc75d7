package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"syscall"
)

var errServerRunning = errors.New("gobbletd is already running")

// pidFile holds the server's process id on disk for the lifetime of the
// server. With lock set, the flock on the open file is what keeps a second
// server off the same path; leftover content from a crashed run is simply
// overwritten.
type pidFile struct {
	path string
	lock bool
	f    *os.File
}

// acquirePIDFile returns nil for an empty path.
func acquirePIDFile(path string, lock bool) (*pidFile, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open pid file: %w", err)
	}
	p := &pidFile{path: path, lock: lock, f: f}

	if lock {
		if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			holder := p.holder()
			f.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				if holder > 0 {
					return nil, fmt.Errorf("%w (pid %d, %s)", errServerRunning, holder, path)
				}
				return nil, fmt.Errorf("%w (%s)", errServerRunning, path)
			}
			return nil, fmt.Errorf("lock pid file: %w", err)
		}
	}

	if err := p.write(os.Getpid()); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *pidFile) write(pid int) error {
	if err := p.f.Truncate(0); err != nil {
		return fmt.Errorf("truncate pid file: %w", err)
	}
	if _, err := p.f.WriteAt([]byte(strconv.Itoa(pid)+"\n"), 0); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return p.f.Sync()
}

// holder reads the pid recorded in the file, or 0 when there is none.
func (p *pidFile) holder() int {
	buf := make([]byte, 32)
	n, _ := p.f.ReadAt(buf, 0)
	pid, err := strconv.Atoi(string(bytes.TrimSpace(buf[:n])))
	if err != nil {
		return 0
	}
	return pid
}

// Release removes the file and drops the lock. Safe on a nil pidFile.
func (p *pidFile) Release() error {
	if p == nil || p.f == nil {
		return nil
	}
	var errs []error
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, err)
	}
	if p.lock {
		errs = append(errs, syscall.Flock(int(p.f.Fd()), syscall.LOCK_UN))
	}
	errs = append(errs, p.f.Close())
	p.f = nil
	return errors.Join(errs...)
}
