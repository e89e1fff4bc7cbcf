// Package session manages the lifecycle of work sessions.
//
// A Store is either idle or has exactly one active session. Start moves it
// from idle to active, Stop commits the active session to the ledger and
// returns to idle, and Reset clears everything.
//
// Invariants:
// - At most one session is active; the current-session file is the only
//   source of truth for that.
// - Start while active and Stop while idle fail without writing anything.
// - Tags are merged as sets keyed on name.
//
// Usage:
//
//	store, _ := session.Open(ctx, session.Options{Root: "/tmp/sesh"})
//	defer store.Close()
//	tokens, _ := session.ParseTokens([]string{"fix", "+bug", "in", "login"})
//	_, _ = store.Start(ctx, nil, tokens)
//	ref, _ := store.Stop(ctx, nil, "done")
//	_ = ref
package session
