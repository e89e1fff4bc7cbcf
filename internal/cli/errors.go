package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harun/sesh/pkg/sesherr"
)

// userMessage turns a command error into the line shown to the user.
func userMessage(err error) string {
	switch sesherr.KindOf(err) {
	case sesherr.ErrNoActiveSession:
		return "No active Sesh to stop"
	case sesherr.ErrSessionAlreadyActive:
		return withReason("A Sesh is already in progress", err)
	case sesherr.ErrInvalidTag:
		name, _ := sesherr.TagName(err)
		return fmt.Sprintf("Invalid tag (%s)", name)
	case sesherr.ErrCorruptData:
		return withReason("Session data is corrupt", err)
	case sesherr.ErrStorageUnavailable:
		return withReason("Storage error", err)
	case sesherr.ErrMigration:
		return withReason("Database migration failed", err)
	default:
		return err.Error()
	}
}

func withReason(msg string, err error) string {
	var e *sesherr.Error
	if !errors.As(err, &e) {
		return msg
	}
	var parts []string
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (%s)", msg, strings.Join(parts, ": "))
}
