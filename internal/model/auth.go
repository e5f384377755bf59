package model

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserProfile `json:"user"`
}

// RegisterParams contains self-registration input.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}
