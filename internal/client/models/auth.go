package models

// CSRFResponse is the body of GET get/csrf/.
type CSRFResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// CheckResponse is the body of GET check/. IsAuthenticated is the literal
// string "true" or "false".
type CheckResponse struct {
	IsAuthenticated string `json:"isAuthenticated"`
	User            *User  `json:"user"`
}

// Authenticated reports whether the server vouched for the session cookie.
func (c CheckResponse) Authenticated() bool {
	return c.IsAuthenticated == "true"
}

// LoginRequest carries the identifier under the server's "email" key.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body of a successful POST login/.
type LoginResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// RegisterResponse echoes the created account.
type RegisterResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

const (
	LogoutSuccess = "Success"
	LogoutFailed  = "Failed"
)

// LogoutResponse is the body of POST logout/. Message is LogoutSuccess when a
// session was ended and LogoutFailed when there was none.
type LogoutResponse struct {
	Message string `json:"message"`
}

// AvailabilityResponse is the body of the check/email/ and check/username/
// lookups.
type AvailabilityResponse struct {
	Available bool `json:"available"`
}
