package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"newsroom/internal/config"
	"newsroom/internal/services"
	"newsroom/internal/services/llm"
)

// CheckLLM verifies that the text model API is reachable and the key is
// valid. It uses a 30-second timeout and a single attempt.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config(cfg), llm.WithRetryMaxAttempts(1), llm.WithLimiter(nil))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API reachable (%s)", cfg.Model)}
}

// CheckYouTube verifies the discovery settings are usable.
func CheckYouTube(cfg config.YouTube) Result {
	const name = "YouTube"
	switch {
	case strings.TrimSpace(cfg.APIKey) == "":
		return Result{Name: name, Detail: "API key missing (discovery disabled)"}
	case strings.TrimSpace(cfg.ChannelID) == "":
		return Result{Name: name, Detail: "channel_id missing (discovery disabled)"}
	}
	return Result{Name: name, Passed: true, Detail: "channel " + cfg.ChannelID}
}

// CheckImages verifies the image model settings.
func CheckImages(cfg config.Images) Result {
	const name = "Image model"
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid base_url %q", cfg.BaseURL)}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Model}
}

// CheckPublish verifies the webhook sink settings.
func CheckPublish(cfg config.Publish) Result {
	const name = "Publish webhook"
	parsed, err := url.ParseRequestURI(strings.TrimSpace(cfg.URL))
	if err != nil || parsed.Host == "" {
		return Result{Name: name, Detail: "url missing or invalid"}
	}
	return Result{Name: name, Passed: true, Detail: parsed.Host}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckContextDir reports whether user templates are present. A missing
// directory passes since the embedded defaults cover every template.
func CheckContextDir(path string) Result {
	const name = "Context templates"
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return Result{Name: name, Passed: true, Detail: "using built-in templates"}
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	case !info.IsDir():
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path + " (overrides built-in templates)"}
}

func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	if errors.Is(err, services.ErrConfiguration) {
		return "not configured: " + err.Error()
	}
	return err.Error()
}
