package dto

// UserProfile is the subset of Google's userinfo payload the form uses.
type UserProfile struct {
	Sub     string `json:"sub,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

type LoginURLResponse struct {
	URL string `json:"url"`
}

type LoginResponse struct {
	SessionToken string       `json:"session_token"`
	SignedIn     bool         `json:"signed_in"`
	User         *UserProfile `json:"user,omitempty"`
}

// SessionState is what the client renders on load: the signed-in view when
// User is set, the login button otherwise.
type SessionState struct {
	SignedIn bool         `json:"signed_in"`
	User     *UserProfile `json:"user,omitempty"`
	LoginURL string       `json:"login_url,omitempty"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Gateway   string `json:"gateway"`
}
