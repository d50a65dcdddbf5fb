package jwt

import "time"

// Maker define a interface de geração e validação de tokens JWT.
type Maker interface {
	GenerateToken(userUID, username, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implementa Maker usando uma chave secreta HMAC
// e um tempo de vida fixo para os tokens emitidos.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker cria um MakerImpl a partir da chave secreta e do TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
