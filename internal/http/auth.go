package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"finboard/internal/core"
	"finboard/internal/log"
)

type contextKey string

const userContextKey contextKey = "user"

// Claims are the identity provider's token claims. The subject is the user id.
type Claims struct {
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	jwt.RegisteredClaims
}

var errMissingToken = errors.New("missing bearer token")

// parseToken extracts and validates the bearer token of r.
func (s *Server) parseToken(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, errMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.JWTIssuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// authenticate resolves the caller from the bearer token, records their
// profile and puts the stored user in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		claims, err := s.parseToken(r)
		if err != nil {
			s.metrics.authFailures.Add(1)
			log.FromContext(ctx).WithComponent(log.ComponentAuth).WarnContext(ctx, "Authentication failed",
				log.FieldError, err, log.FieldClientIP, extractClientIP(r))
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}

		profile := core.User{
			ID:        claims.Subject,
			Email:     claims.Email,
			FirstName: claims.GivenName,
			LastName:  claims.FamilyName,
		}
		if err := s.deps.Store.UpsertUser(ctx, profile); err != nil {
			writeError(w, r, err)
			return
		}
		user, err := s.deps.Store.GetUser(ctx, claims.Subject)
		if err != nil {
			writeError(w, r, err)
			return
		}

		logger := log.FromContext(ctx).With(log.FieldUserID, user.ID)
		ctx = log.NewContext(ctx, logger)
		ctx = context.WithValue(ctx, userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated user. Only valid under authenticate.
func currentUser(r *http.Request) core.User {
	user, _ := r.Context().Value(userContextKey).(core.User)
	return user
}
