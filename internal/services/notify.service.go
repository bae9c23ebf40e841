package services

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier displays an OS-level alert. Fire-and-forget: implementations do
// not report delivery.
type Notifier interface {
	Notify(title, body string)
}

// DesktopNotifier shows native desktop notifications.
type DesktopNotifier struct{}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{}
}

func (n *DesktopNotifier) Notify(title, body string) {
	if err := beeep.Notify(title, body, ""); err != nil {
		slog.Warn("[ALERT] could not display desktop notification", "title", title, "err", err)
	}
}
