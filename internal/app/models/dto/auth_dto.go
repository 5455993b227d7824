package dto

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ab1234@school.edu"`
	UNI      string `json:"uni" binding:"required,min=6,max=7" example:"ab1234"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest is the payload for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// CreateAccountRequest is the admin payload for provisioning an account
// with an explicit role
type CreateAccountRequest struct {
	Email    string `json:"email" binding:"required,email"`
	UNI      string `json:"uni" binding:"required,min=6,max=7"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=STUDENT PROFESSOR ADMIN"`
}

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int    `json:"expiresIn" example:"3600"`
	RefreshExpiresIn int    `json:"refreshExpiresIn" example:"2592000"`
	TokenType        string `json:"tokenType" example:"Bearer"`
}
