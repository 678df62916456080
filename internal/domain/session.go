package domain

import "time"

// Session binds an issued token pair to a user and the client it was
// issued to. Sessions live in Redis and expire with their refresh
// token; deleting one revokes both tokens of the pair.
type Session struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Token        string        `json:"token"`
	RefreshToken string        `json:"refresh_token"`
	RememberMe   bool          `json:"remember_me"`
	IPAddress    string        `json:"ip_address"`
	UserAgent    string        `json:"user_agent"`
	TTL          time.Duration `json:"ttl"`
	CreatedAt    time.Time     `json:"created_at"`
}
