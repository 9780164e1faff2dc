package ops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Desktop provides the desktop.* input and capture operations, backed
// by xdotool for input synthesis and ffmpeg/scrot for screenshots.
type Desktop struct {
	ScreenshotDir string
}

func NewDesktop(screenshotDir string) *Desktop {
	if screenshotDir == "" {
		screenshotDir = "screenshots"
	}
	return &Desktop{ScreenshotDir: screenshotDir}
}

func (d *Desktop) Register(r *Registry) {
	r.Register(Func{"desktop.type", "Type a string of text into the focused window.", d.typeText})
	r.Register(Func{"desktop.key", "Press a key or key combination (e.g. 'Return', 'alt+Tab').", d.key})
	r.Register(Func{"desktop.move", "Move the mouse cursor to the given coordinates.", d.move})
	r.Register(Func{"desktop.click", "Click a mouse button (1=left, 2=middle, 3=right).", d.click})
	r.Register(Func{"desktop.screenshot", "Capture the desktop to a PNG file.", d.screenshot})
}

func (d *Desktop) typeText(ctx context.Context, params map[string]any) (any, error) {
	text, err := stringParam(params, "text")
	if err != nil {
		return nil, err
	}
	return d.xdotool(ctx, "type", text)
}

func (d *Desktop) key(ctx context.Context, params map[string]any) (any, error) {
	key, err := stringParam(params, "key")
	if err != nil {
		return nil, err
	}
	return d.xdotool(ctx, "key", key)
}

func (d *Desktop) move(ctx context.Context, params map[string]any) (any, error) {
	x := intParam(params, "x", 0)
	y := intParam(params, "y", 0)
	return d.xdotool(ctx, "mousemove", strconv.Itoa(x), strconv.Itoa(y))
}

func (d *Desktop) click(ctx context.Context, params map[string]any) (any, error) {
	button := optStringParam(params, "button", "1")
	return d.xdotool(ctx, "click", button)
}

func (d *Desktop) screenshot(ctx context.Context, params map[string]any) (any, error) {
	os.MkdirAll(d.ScreenshotDir, 0755)
	filename := fmt.Sprintf("desktop_%d.png", time.Now().Unix())
	path := filepath.Join(d.ScreenshotDir, filename)

	// ffmpeg first, scrot as fallback.
	cmd := exec.CommandContext(ctx, "ffmpeg", "-f", "x11grab", "-i", ":0.0", "-frames:v", "1", path, "-y")
	output, err := cmd.CombinedOutput()
	if err != nil {
		cmd = exec.CommandContext(ctx, "scrot", path)
		output, err = cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("failed to capture desktop: %v\noutput: %s", err, string(output))
		}
	}

	absPath, _ := filepath.Abs(path)
	return fmt.Sprintf("Desktop screenshot saved to %s", absPath), nil
}

func (d *Desktop) xdotool(ctx context.Context, args ...string) (any, error) {
	cmd := exec.CommandContext(ctx, "xdotool", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if strings.Contains(err.Error(), "executable file not found") {
			return nil, fmt.Errorf("xdotool is not installed")
		}
		return nil, fmt.Errorf("xdotool %s failed: %v\noutput: %s", args[0], err, string(output))
	}
	return fmt.Sprintf("Successfully executed action: %s", args[0]), nil
}
