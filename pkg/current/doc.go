// Package current persists the active work session in a JSON sidecar file.
//
// Invariants:
// - At most one session is stored; absence of the file means no session.
// - An empty, null or {} payload also means no session.
// - A payload that exists but cannot be understood is ErrCorruptData,
//   never "no session".
// - Writes are atomic (temporary file plus rename).
//
// Usage:
//
//	rec := current.NewRecord("/home/me/.sesh", logger)
//	_ = rec.Write(&current.Session{Title: "fix login", StartTime: time.Now()})
//	s, _ := rec.Pop()
//	_ = s
package current
