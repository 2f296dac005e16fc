package ui

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os/exec"
	"runtime"
)

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return l.command(title, message).Run()
}

func (l *LinuxNotificationSender) command(title, message string) *exec.Cmd {
	return exec.Command("notify-send", "--app-name=igfollow", "--", title, message)
}

// MacOSNotificationSender sends notifications on macOS using osascript.
// Title and message travel as script arguments, never as script text.
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	return m.command(title, message).Run()
}

func (m *MacOSNotificationSender) command(title, message string) *exec.Cmd {
	return exec.Command("osascript",
		"-e", "on run argv",
		"-e", "display notification (item 2 of argv) with title (item 1 of argv)",
		"-e", "end run",
		title, message)
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	return w.command(title, message).Run()
}

// the toast XML sits in a single-quoted here-string, so PowerShell expands
// nothing inside it; escaping covers the XML itself and any quote that
// could close the string
func (w *WindowsNotificationSender) command(title, message string) *exec.Cmd {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @'
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
'@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("igfollow").Show($toast)
	`, escapeXML(title), escapeXML(message))

	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Notifier handles cross-platform notifications
type Notifier struct {
	sender NotificationSender
}

// NewNotifier creates a new Notifier based on the current platform
func NewNotifier() *Notifier {
	var sender NotificationSender

	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	case "windows":
		sender = &WindowsNotificationSender{}
	}

	return &Notifier{sender: sender}
}

// NewNotifierWithSender creates a Notifier with an explicit sender; nil disables
// desktop notifications
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

// SendNotification prints to the console and sends a desktop notification.
// The returned error only concerns the desktop notification.
func (n *Notifier) SendNotification(title, message string) error {
	if !IsQuietMode() {
		fmt.Fprintf(Out, "\n%s: %s\n", Cyan(title), Yellow(message))
	}
	return n.send(title, message)
}

// SendError sends a desktop notification for a failed run. Nothing is printed:
// the error itself is reported by the caller.
func (n *Notifier) SendError(title, message string) error {
	return n.send(title, message)
}

func (n *Notifier) send(title, message string) error {
	if n.sender == nil {
		return nil
	}
	if err := n.sender.Send(title, message); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}
