package applejwt

import "time"

// AlgorithmES256 is the only signing algorithm Apple accepts for client secrets.
const AlgorithmES256 = "ES256"

// SigningHeader is the JOSE header of an Apple client secret.
type SigningHeader struct {
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid"`
}

// ClaimSet is the payload of an Apple client secret. Times are Unix seconds.
type ClaimSet struct {
	Issuer    string `json:"iss"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	Audience  string `json:"aud"`
	Subject   string `json:"sub"`
}

// Lifetime returns the validity window covered by the claim set.
func (c ClaimSet) Lifetime() time.Duration {
	return time.Duration(c.ExpiresAt-c.IssuedAt) * time.Second
}

// Claims represents the normalized claims of a verified client secret.
type Claims struct {
	KeyID     string
	Issuer    string
	Subject   string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
