package models

import "time"

// Status de um trial gratuito. Não existe transição de expired de volta
// para active: cada produto pode ser testado uma única vez por usuário.
const (
	TrialActive  = "active"
	TrialExpired = "expired"
)

// FreeTrial representa a concessão de acesso gratuito e temporário a um
// produto. A dupla (user_uid, product_slug) é única no banco; a violação
// dessa restrição é o sinal de "já testado".
type FreeTrial struct {
	ID           int
	UserUID      string
	ProductSlug  string
	ProductTitle string
	Status       string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// TrialExpiredNotice é a mensagem publicada no broker quando a varredura
// marca um trial como expirado.
type TrialExpiredNotice struct {
	UserUID      string    `json:"user_uid"`
	ProductSlug  string    `json:"product_slug"`
	ProductTitle string    `json:"product_title"`
	ExpiredAt    time.Time `json:"expired_at"`
}

// DummyActivateTrial recebe o corpo JSON da ativação de trial.
type DummyActivateTrial struct {
	ProductSlug  string `json:"product_slug" validate:"required"`
	ProductTitle string `json:"product_title" validate:"required"`
}
