package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type AccountInfo struct {
	ID              int64  `json:"id"`
	Platform        string `json:"platform"`
	AccountName     string `json:"account_name"`
	AccountUsername string `json:"account_username"`
	ProfilePicture  string `json:"profile_picture"`
	AccountStatus   string `json:"account_status"`
}
