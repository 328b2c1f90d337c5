package auth

// TokenPair is the credential pair issued by the API on login, registration
// and refresh. The access token is a short-lived bearer JWT; the refresh
// token is the longer-lived credential exchanged for a new pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Sector is the language sector a student registers under.
type Sector int

const (
	SectorAzerbaijani Sector = 0
	SectorRussian     Sector = 1
	SectorEnglish     Sector = 2
)

// RegisterData holds the registration form. ProfilePicture, when set, is a
// local file path sent as a multipart file part.
type RegisterData struct {
	Username       string
	Password       string
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	RoleID         int
	Group          int
	Sector         Sector
	ProfilePicture string
}

// RegisterResult is the outcome of a successful registration: the created
// user's id (needed for email verification) and any server message.
type RegisterResult struct {
	ID      string
	Message string
}

// User is the current user's profile as returned by /auth/me.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
	Group       int    `json:"group"`
	Sector      Sector `json:"sector"`
}
