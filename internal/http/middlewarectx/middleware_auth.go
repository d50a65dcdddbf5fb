// Package middlewarectx contém os middlewares HTTP do serviço.
//
// JWTMiddleware valida o token JWT do cabeçalho Authorization e, em caso
// de sucesso, injeta o UID, o nome e o papel do usuário no contexto da
// requisição. Falha de validação retorna HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/automatize/funnel-tracker/internal/http/response"
	libjwt "github.com/automatize/funnel-tracker/internal/lib/jwt"
	"github.com/automatize/funnel-tracker/internal/lib/sl"
)

// Key é o tipo das chaves de contexto da requisição.
type Key string

const (
	// UserUID é a chave do UID do usuário no contexto
	UserUID Key = "user_uid"
	// User é a chave do nome do usuário no contexto
	User Key = "username"
	// Role é a chave do papel do usuário no contexto
	Role Key = "role"
)

// TokenParser descreve a validação de um token de sessão.
type TokenParser interface {
	ParseToken(tokenStr string) (*libjwt.CustomClaims, error)
}

// JWTMiddleware retorna o middleware que valida o JWT do cabeçalho
// Authorization e popula o contexto com a identidade do usuário.
func JWTMiddleware(maker TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "middlewarectx.JWTMiddleware"

			log = log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, User, claims.Username)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserUID extrai o UID do usuário do contexto da requisição.
// Retorna string vazia quando não há identidade resolvida.
func GetUserUID(ctx context.Context) string {
	uid, _ := ctx.Value(UserUID).(string)
	return uid
}
