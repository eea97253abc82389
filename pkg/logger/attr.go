package logger

import (
	"fmt"
	"log/slog"
)

// Error records a single error under the key "error". Nil yields an empty
// attribute that slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// SessionID records a session token's text form under the key "session_id".
func SessionID(id fmt.Stringer) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.String("session_id", id.String())
}

// Permissions records a permission mask under the key "permissions".
func Permissions(mask any) slog.Attr {
	return slog.Any("permissions", mask)
}

// RequestID records the request trace identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// ClientIP records the requester address under the key "client_ip".
func ClientIP(ip string) slog.Attr {
	if ip == "" {
		return slog.Attr{}
	}
	return slog.String("client_ip", ip)
}

// Component records which subsystem produced the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
