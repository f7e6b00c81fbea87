package startup

import (
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

const (
	appID   = "com.pixpmusic.gopher-resolume"
	appName = "GopherResolume"
)

// Enable registers the bridge to launch at login with the given arguments
func Enable(args ...string) error {
	execPath, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "locate executable")
	}

	switch runtime.GOOS {
	case "darwin":
		return writeFile(macOSPlistPath(), launchAgent(execPath, args))
	case "linux":
		return writeFile(linuxDesktopPath(), desktopEntry(execPath, args))
	case "windows":
		return enableWindows(commandLine(execPath, args))
	default:
		return errors.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// Disable removes the login item
func Disable() error {
	switch runtime.GOOS {
	case "darwin":
		return removeFile(macOSPlistPath())
	case "linux":
		return removeFile(linuxDesktopPath())
	case "windows":
		return disableWindows()
	default:
		return errors.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// IsEnabled checks if the bridge is registered for startup
func IsEnabled() bool {
	switch runtime.GOOS {
	case "darwin":
		return exists(macOSPlistPath())
	case "linux":
		return exists(linuxDesktopPath())
	case "windows":
		return exec.Command("reg", "query", windowsRegistryKey, "/v", appName).Run() == nil
	default:
		return false
	}
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create startup dir")
	}
	return errors.Wrapf(os.WriteFile(path, []byte(content), 0644), "write %s", path)
}

func removeFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(err, "remove %s", path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// --- macOS ---

func macOSPlistPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents", appID+".plist")
}

func launchAgent(execPath string, args []string) string {
	var b strings.Builder
	for _, a := range append([]string{execPath}, args...) {
		fmt.Fprintf(&b, "        <string>%s</string>\n", html.EscapeString(a))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
%s    </array>
    <key>RunAtLoad</key>
    <true/>
</dict>
</plist>
`, appID, b.String())
}

// --- Linux ---

func linuxDesktopPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "autostart", "gopher-resolume.desktop")
}

func desktopEntry(execPath string, args []string) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Launchpad bridge for Resolume
Exec=%s
Hidden=false
NoDisplay=false
X-GNOME-Autostart-enabled=true
`, appName, commandLine(execPath, args))
}

// commandLine quotes arguments containing spaces
func commandLine(execPath string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{execPath}, args...) {
		if strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// --- Windows ---

const windowsRegistryKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func enableWindows(command string) error {
	cmd := exec.Command("reg", "add", windowsRegistryKey,
		"/v", appName,
		"/t", "REG_SZ",
		"/d", command,
		"/f")
	return errors.Wrap(cmd.Run(), "add registry run key")
}

func disableWindows() error {
	output, err := exec.Command("reg", "delete", windowsRegistryKey, "/v", appName, "/f").CombinedOutput()
	// a missing value means already disabled
	if err != nil && !strings.Contains(string(output), "unable to find") {
		return errors.Wrap(err, "delete registry run key")
	}
	return nil
}
