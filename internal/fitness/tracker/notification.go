package tracker

import (
	log "github.com/sirupsen/logrus"
)

type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityDestructive Severity = "destructive"
	SeverityError       Severity = "error"
)

// Notification is a transient, user visible message.
type Notification struct {
	Severity    Severity
	Message     string
	Description string
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// LogNotifier writes notifications to the logger.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	entry := log.WithField("severity", n.Severity)
	if n.Description != "" {
		entry = entry.WithField("description", n.Description)
	}
	switch n.Severity {
	case SeverityError:
		entry.Error(n.Message)
	case SeverityDestructive:
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}
}

func notifyError(notifier Notifier, message string, err error) {
	notifier.Notify(Notification{
		Severity:    SeverityError,
		Message:     message,
		Description: err.Error(),
	})
}
