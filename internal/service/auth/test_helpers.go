package auth

import "time"

// NewTestJWTService creates a JWT service with an injected clock for
// predictable expiry testing. The refresh lifetime is fixed at ten times
// the access lifetime, which is enough for the type and expiry tests.
func NewTestJWTService(
	secret string,
	tokenLifetime time.Duration,
	timeFunc func() time.Time,
) JWTService {
	return &hmacJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        tokenLifetime,
		refreshTokenLifetime: 10 * tokenLifetime,
		timeFunc:             timeFunc,
		clockSkew:            0,
	}
}
