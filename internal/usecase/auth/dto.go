package auth

// IssueTokenRequest carries the credentials exchanged for a bearer token.
type IssueTokenRequest struct {
	ClientID string
	APIKey   string
}

// IssueTokenResponse is the issued bearer token.
type IssueTokenResponse struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}
