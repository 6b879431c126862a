package council

import (
	"council/internal/backend"
)

// Session-lifecycle glue: the policy that a client must always have a
// session lives here, not in the store.

// EnsureSession refreshes the session list and guarantees a current
// session: an empty backend gets exactly one new session, which becomes
// current; otherwise the first listed session is selected when nothing is.
func EnsureSession(gw Gateway, store *SessionStore) (created bool, err error) {
	sessions, err := store.RefreshList()
	if err != nil {
		return false, err
	}
	if len(sessions) == 0 {
		session, err := gw.CreateSession()
		if err != nil {
			return false, err
		}
		store.Select(session.ID)
		// Best effort; the created session is already current.
		_, _ = store.RefreshList()
		return true, nil
	}
	if store.Current() == "" {
		store.Select(sessions[0].ID)
	}
	return false, nil
}

// LoadHistory switches the displayed state to the given session: activity
// and transcript are cleared first, then the fetched history is appended in
// backend order. The clear always happens, even when the fetch fails, so
// stale content from the previous session can never interleave with the new
// one.
func LoadHistory(gw Gateway, store *SessionStore, registry *Registry, transcript *Transcript, sessionID string) error {
	registry.ResetAll()
	transcript.Clear()
	store.Select(sessionID)

	detail, err := gw.FetchSession(sessionID)
	if err != nil {
		if backend.IsNotFound(err) {
			transcript.AppendSystemNotice("Session no longer exists on the server.")
		} else {
			transcript.AppendSystemNotice(connectNotice)
		}
		return err
	}
	if len(detail.History) == 0 {
		transcript.AppendSystemNotice("New Session Established.")
		return nil
	}
	for _, turn := range detail.History {
		transcript.AppendMessage(turn.Speaker, turn.Text, turn.Speaker == ChairmanName)
	}
	transcript.AppendSystemNotice("History loaded.")
	return nil
}
