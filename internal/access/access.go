// Package access decides which Telegram users may drive the bot.
package access

// DeniedMessage is shown for every rejected update.
const DeniedMessage = "🚫 Bạn không có quyền sử dụng bot này."

// Gate allows a single Telegram user. The zero Gate lets everyone through.
type Gate struct {
	AllowedUserID int64
}

func New(allowedUserID int64) Gate {
	return Gate{AllowedUserID: allowedUserID}
}

// Open reports whether the gate is disabled.
func (g Gate) Open() bool {
	return g.AllowedUserID == 0
}

func (g Gate) Allowed(userID int64) bool {
	if g.Open() {
		return true
	}
	return userID == g.AllowedUserID
}
