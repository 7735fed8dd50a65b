package logger

import (
	"log/slog"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under "user_id". Nil yields an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// EntryID records a vault entry identifier under "entry_id".
func EntryID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("entry_id", id)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Status(status string) slog.Attr {
	return slog.String("status", status)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
