// Package open hands application paths to the system's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/readalong-cli/readalong/constant"
)

// Start opens path with the default handler without waiting for it.
func Start(path string) error {
	cmd, err := Command(runtime.GOOS, path)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Command returns the command opening path on goos.
func Command(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", path), nil
	case constant.Darwin:
		return exec.Command("open", path), nil
	case constant.Linux:
		return exec.Command("xdg-open", path), nil
	case constant.Android:
		return exec.Command("termux-open", path), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}
