package models

import "time"

// User representa um usuário autenticável do serviço. O UID é gerado pelo
// banco (uuid) e é a identidade usada em todas as tabelas do funil.
type User struct {
	UID          string
	Email        string
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// DummyRegister recebe o corpo JSON do cadastro de usuário.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin recebe o corpo JSON do login.
type DummyLogin struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
}
