// Package password implementa o hash e a verificação segura de senhas.
//
// GetHash gera o hash bcrypt da senha para armazenamento.
// CompareHash confere se a senha informada corresponde ao hash guardado.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GetHash recebe a senha do usuário e retorna o hash bcrypt correspondente.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash compara o hash bcrypt armazenado com a senha informada.
// Retorna nil quando a senha confere, senão um erro.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
