package content

import "time"

// Session is a signed-in admin. Any session grants full access.
type Session struct {
	UserID   string
	Email    string
	IssuedAt time.Time
}

// Viewer is whoever a query runs on behalf of. It is passed explicitly to
// every read path.
type Viewer struct {
	Session *Session
}

// Anonymous is the viewer of an unauthenticated request.
var Anonymous = Viewer{}

// ViewerFor wraps a session; a nil session yields Anonymous.
func ViewerFor(s *Session) Viewer {
	return Viewer{Session: s}
}

// Authenticated reports whether the viewer carries a session.
func (v Viewer) Authenticated() bool {
	return v.Session != nil
}

// Visible reports whether v may see it. Drafts are hidden from anonymous viewers.
func Visible(it Item, v Viewer) bool {
	return !it.IsDraft || v.Authenticated()
}

// FilterVisible returns the items v may see, keeping their order.
func FilterVisible(items []Item, v Viewer) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if Visible(it, v) {
			out = append(out, it)
		}
	}
	return out
}
