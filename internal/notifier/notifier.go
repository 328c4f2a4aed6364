// Package notifier delivers reminder text to the carelog tray companion
// over its localhost webhook.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/scheduler"
)

const (
	secretHeader   = "X-Carelog-Secret"
	trayExecPrefix = "carelog-tray"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess

	ErrTrayNotRunning = errors.New("carelog-tray is not running")
)

type WebhookPayload struct {
	Title      string `json:"title,omitempty"`
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

type Notifier struct {
	client *resty.Client
}

var _ scheduler.Sender = (*Notifier)(nil)

func New() *Notifier {
	client := resty.New().
		SetTimeout(constants.NotifyRequestTimeout).
		SetRetryCount(constants.NotifyMaxRetries).
		SetRetryWaitTime(constants.NotifyRetryDelay).
		SetHeader("Content-Type", "application/json")
	return &Notifier{client: client}
}

// Notify sends text to the running tray app.
func (n *Notifier) Notify(ctx context.Context, title, text string) error {
	trayAppConfigPath, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}

	port, secret, err := findAndValidateTrayProcess(filepath.Join(trayAppConfigPath, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	return n.send(ctx, port, secret, WebhookPayload{
		Title:      title,
		Text:       text,
		DurationMs: constants.NotificationDurationMs,
	})
}

// Send implements scheduler.Sender.
func (n *Notifier) Send(ctx context.Context, note scheduler.Notification) error {
	return n.Notify(ctx, note.Content.Title, note.Content.Body)
}

// GetTrayAppConfigDir returns the directory holding the tray lockfile.
// The tray may point it elsewhere through lockfile_dir in its settings.json.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayConfigDir, "settings.json"))
	if err != nil {
		return trayConfigDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err == nil {
		if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
			return *store.Settings.LockfileDir, nil
		}
	}
	return trayConfigDir, nil
}

// findAndValidateTrayProcess reads a "port|pid|secret" lockfile and checks
// that pid belongs to a live tray process.
func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := strings.TrimSpace(parts[0])
	if port == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), trayExecPrefix) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, trayExecPrefix, process.Executable())
	}

	return port, secret, nil
}

func (n *Notifier) send(ctx context.Context, port, secret string, payload WebhookPayload) error {
	res, err := n.client.R().
		SetContext(ctx).
		SetHeader(secretHeader, secret).
		SetBody(payload).
		Post(fmt.Sprintf("http://127.0.0.1:%s", port))
	if err != nil {
		return fmt.Errorf("failed to reach tray app: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("notification failed with status %d: %s", res.StatusCode(), strings.TrimSpace(res.String()))
	}
	return nil
}
