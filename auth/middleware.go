package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/entreflow-go/apperror"
)

// ParseSession validates a signed session token and returns its claims.
func (s *AuthService) ParseSession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperror.NewAuthError("unexpected signing method", nil)
		}
		return []byte(s.authCfg.JWTSecret), nil
	})
	if err != nil {
		return nil, apperror.NewAuthError("Not Authenticated", err)
	}
	if !token.Valid || claims.TokenType != tokenTypeSession {
		return nil, apperror.NewAuthError("Not Authenticated", nil)
	}
	return claims, nil
}

// Middleware rejects requests without a valid Bearer session token and
// stores the claims in the request context for downstream handlers.
func (s *AuthService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			WriteError(w, apperror.NewAuthError("Not Authenticated", nil))
			return
		}

		claims, err := s.ParseSession(tokenString)
		if err != nil {
			WriteError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContextWithClaims(r.Context(), claims)))
	})
}
