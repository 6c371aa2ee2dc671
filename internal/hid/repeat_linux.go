//go:build linux

package hid

import (
	"errors"
	"fmt"
	"unsafe"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

// ErrNoRepeatSettings is returned when no keyboard reports repeat settings.
var ErrNoRepeatSettings = errors.New("no keyboard reports repeat settings")

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocRead = 2
)

func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr((dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift))
}

// EVIOCGREP = _IOR('E', 0x03, unsigned int[2])
func evioCGRep() uintptr {
	return ioc(iocRead, uint32('E'), 0x03, uint32(unsafe.Sizeof([2]uint32{})))
}

func readRepeat(path string) (delayMs, rateMs int, err error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return 0, 0, err
	}
	defer unix.Close(fd)

	var rep [2]uint32
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGRep(), uintptr(unsafe.Pointer(&rep)))
	if errno != 0 {
		return 0, 0, errno
	}
	return int(rep[0]), int(rep[1]), nil
}

// SystemRepeat returns the auto-repeat delay and period of the first
// keyboard that reports them.
func SystemRepeat() (delayMs, rateMs int, err error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list input devices: %w", err)
	}
	for _, p := range paths {
		delay, rate, err := readRepeat(p.Path)
		if err == nil && delay > 0 && rate > 0 {
			return delay, rate, nil
		}
	}
	return 0, 0, ErrNoRepeatSettings
}
