package notes

import "github.com/goliatone/go-notes/middleware/jwtware"

// TokenVerifierFunc adapts a function into a TokenVerifier
type TokenVerifierFunc func(tokenString string) (*Claims, error)

// Verify satisfies the TokenVerifier interface
func (f TokenVerifierFunc) Verify(tokenString string) (*Claims, error) {
	if f == nil {
		return nil, ErrInvalidToken
	}
	return f(tokenString)
}

type verifierAdapter struct {
	verifier TokenVerifier
}

// validatorFor exposes a TokenVerifier to the jwtware middleware
func validatorFor(v TokenVerifier) jwtware.TokenValidator {
	return verifierAdapter{verifier: v}
}

func (a verifierAdapter) Validate(tokenString string) (jwtware.Claims, error) {
	claims, err := a.verifier.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
