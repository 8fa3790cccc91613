package policy

// Admins authorizes admin commands: only private chats whose sender is on
// the allowlist pass. Everyone else is ignored without a reply.
type Admins struct {
	allowed map[int64]bool
}

// New creates a policy that authorizes only the given user IDs.
func New(userIDs []int64) *Admins {
	allowed := make(map[int64]bool, len(userIDs))
	for _, id := range userIDs {
		allowed[id] = true
	}
	return &Admins{allowed: allowed}
}

// Allow reports whether userID may run admin commands in chatID. In a
// private chat the chat ID equals the sender ID.
func (a *Admins) Allow(chatID, userID int64) bool {
	if userID == 0 || chatID != userID {
		return false
	}
	return a.allowed[userID]
}

// Len returns the number of allowed admins.
func (a *Admins) Len() int { return len(a.allowed) }
