// Package jwt implementa a geração e o parsing de tokens JWT com claims
// próprias do serviço.
//
// CustomClaims estende as claims padrão com o UID, o nome e o papel do
// usuário, que é a identidade usada por todo o rastreador de funil.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims descreve os dados do usuário embutidos no token.
type CustomClaims struct {
	UserUID              string `json:"user_uid"` // Identificador estável do usuário
	Username             string `json:"username"` // Nome do usuário
	Role                 string `json:"role"`     // Papel do usuário, admin ou user
	jwt.RegisteredClaims        // Claims padrão do JWT (ExpiresAt, IssuedAt etc.)
}

// GenerateToken cria um token JWT assinado com a chave secreta,
// válido pelo TTL configurado.
func (j *MakerImpl) GenerateToken(userUID, username, role string) (string, error) {
	claims := CustomClaims{
		UserUID:  userUID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken valida a assinatura e a validade do token e retorna as
// CustomClaims quando o token é aceito.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
