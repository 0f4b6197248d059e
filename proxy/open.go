package proxy

import (
	"fmt"
	"os/exec"
	"runtime"
)

// startDetached is replaced in tests
var startDetached = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// openerCommand returns the command that opens path with the desktop's
// default handler.
func openerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	default:
		return "xdg-open", []string{path}
	}
}

// Open opens path in the default application without waiting for it.
func Open(path string) error {
	name, args := openerCommand(runtime.GOOS, path)
	if err := startDetached(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return nil
}
