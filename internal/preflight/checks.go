package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is
// readable, writable, and traversable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return statError(name, path, err)
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckScanRoot verifies a scan include path. A root may be a single subtitle
// file; directories additionally need write access because engine outputs
// are written next to the subtitles they re-time.
func CheckScanRoot(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return statError(name, path, err)
	}
	if !info.IsDir() {
		if err := unix.Access(path, unix.R_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (file root, read ok)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

func statError(name, path string, err error) Result {
	if os.IsNotExist(err) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
	}
	return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
}
