package utils

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenURL opens target with the OS default handler. The child is detached so
// the caller does not wait for the browser.
func OpenURL(target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open '%s': %w", target, err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}
