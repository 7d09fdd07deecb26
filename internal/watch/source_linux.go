//go:build linux

package watch

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

type inotifySource struct {
	fd      int
	onEvent func()
	done    chan struct{}
}

func newEventSource(path string, onEvent func()) (eventSource, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("watch: inotify_init failed: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	// Watch the containing directory rather than the file itself: an
	// editor's save-as-rename replaces the inode, which would silently
	// drop a watch held directly on the old file.
	dir := filepath.Dir(absPath)
	name := filepath.Base(absPath)
	_, err = unix.InotifyAddWatch(fd, dir, unix.IN_MODIFY|unix.IN_CLOSE_WRITE|unix.IN_MOVED_TO|unix.IN_CREATE)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("watch: failed to watch %s: %w", dir, err)
	}

	s := &inotifySource{fd: fd, onEvent: onEvent, done: make(chan struct{})}
	go s.loop(name)
	return s, nil
}

func (s *inotifySource) loop(name string) {
	buf := make([]byte, unix.SizeofInotifyEvent*16)
	for {
		n, err := unix.Read(s.fd, buf)
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			continue
		}

		offset := 0
		for offset+unix.SizeofInotifyEvent <= n {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			eventLen := int(event.Len)
			var eventName string
			if eventLen > 0 && offset+unix.SizeofInotifyEvent+eventLen <= n {
				nameBytes := buf[offset+unix.SizeofInotifyEvent : offset+unix.SizeofInotifyEvent+eventLen]
				eventName = cString(nameBytes)
			}
			offset += unix.SizeofInotifyEvent + eventLen

			if eventName == "" || eventName == name {
				s.onEvent()
			}
		}
	}
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func (s *inotifySource) Close() error {
	close(s.done)
	return unix.Close(s.fd)
}
