package export

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Opener shows a document to the user.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// OpenerFunc adapts a function to [Opener].
type OpenerFunc func(ctx context.Context, path string) error

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, path string) error { return f(ctx, path) }

// SystemOpener opens files with the platform's default viewer.
type SystemOpener struct{}

// Open starts the viewer and returns without waiting for it to exit.
func (SystemOpener) Open(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
