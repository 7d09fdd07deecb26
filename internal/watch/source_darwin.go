//go:build darwin

package watch

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

type kqueueSource struct {
	kq   int
	fd   int
	done chan struct{}
}

func newEventSource(path string, onEvent func()) (eventSource, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("watch: kqueue failed: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		unix.Close(kq)
		return nil, err
	}

	fd, err := unix.Open(absPath, unix.O_RDONLY, 0)
	if err != nil {
		unix.Close(kq)
		return nil, fmt.Errorf("watch: failed to open %s: %w", absPath, err)
	}

	event := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_VNODE,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
		Fflags: unix.NOTE_WRITE | unix.NOTE_ATTRIB | unix.NOTE_RENAME | unix.NOTE_DELETE,
	}
	if _, err := unix.Kevent(kq, []unix.Kevent_t{event}, nil, nil); err != nil {
		unix.Close(fd)
		unix.Close(kq)
		return nil, fmt.Errorf("watch: failed to register kevent for %s: %w", absPath, err)
	}

	s := &kqueueSource{kq: kq, fd: fd, done: make(chan struct{})}
	go s.loop(onEvent)
	return s, nil
}

func (s *kqueueSource) loop(onEvent func()) {
	events := make([]unix.Kevent_t, 8)
	for {
		n, err := unix.Kevent(s.kq, nil, events, nil)
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if err == unix.EINTR {
				continue
			}
			continue
		}
		for i := 0; i < n; i++ {
			onEvent()
		}
	}
}

func (s *kqueueSource) Close() error {
	close(s.done)
	unix.Close(s.fd)
	return unix.Close(s.kq)
}
