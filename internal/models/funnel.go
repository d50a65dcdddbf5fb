// Package models contém as estruturas de domínio do rastreador de funil:
// eventos imutáveis, sessões abandonadas, trials gratuitos e usuários,
// além dos tipos auxiliares usados para receber dados de requisições JSON.
package models

import "time"

// Tipos de evento de funil aceitos pelo registrador de eventos.
const (
	EventCartUpdated  = "cart_updated"
	EventCartCleared  = "cart_cleared"
	EventCheckoutView = "checkout_view"
	EventOrderCreated = "order_created"
)

// Estágios possíveis de uma sessão abandonada.
const (
	StageCart     = "cart"
	StageCheckout = "checkout"
)

// Status de uma sessão abandonada. Os status cleared e converted
// são terminais: uma vez atingidos, a linha é congelada.
const (
	SessionOpen      = "open"
	SessionCleared   = "cleared"
	SessionConverted = "converted"
)

// FunnelEvent é um fato imutável do funil de vendas. Nunca é alterado
// nem removido depois de gravado. Metadata é um payload opaco, armazenado
// como JSON sem validação de esquema.
type FunnelEvent struct {
	ID        int
	UserUID   string
	EventType string
	Metadata  map[string]any
	CreatedAt time.Time
}

// CartLineSnapshot é uma cópia por valor de um item do carrinho no momento
// do upsert. Campos opcionais são serializados como null explícito, nunca
// omitidos, para que os consumidores tenham sempre o mesmo formato.
type CartLineSnapshot struct {
	Slug             string   `json:"slug"`
	Title            string   `json:"title"`
	Price            float64  `json:"price"`
	Quantity         int      `json:"quantity"`
	Image            *string  `json:"image"`
	AcquisitionType  string   `json:"acquisition_type"`
	RentalMonths     *int     `json:"rental_months"`
	IsPackage        bool     `json:"is_package"`
	PackageID        *string  `json:"package_id"`
	SubscriptionPlan *string  `json:"subscription_plan"`
	IncludedProducts []string `json:"included_products"`
}

// AbandonedSession é o agregado mutável de uma sessão de compra em andamento.
// Invariante: no máximo uma linha com status open por usuário; a troca de
// estágio (cart → checkout) reaproveita a mesma linha, preservando o ID.
type AbandonedSession struct {
	ID          int
	UserUID     string
	Stage       string
	Status      string
	CartItems   []CartLineSnapshot
	TotalAmount float64
	LastEventAt time.Time
	UpdatedAt   time.Time
	CreatedAt   time.Time
}

// DummyFunnelEvent recebe o corpo JSON do registro de evento.
type DummyFunnelEvent struct {
	EventType string         `json:"event_type" validate:"required,oneof=cart_updated cart_cleared checkout_view order_created"`
	Metadata  map[string]any `json:"metadata"`
}

// DummyCartLine recebe um item do carrinho vindo da requisição,
// antes da conversão para CartLineSnapshot.
type DummyCartLine struct {
	Slug             string   `json:"slug" validate:"required"`
	Title            string   `json:"title" validate:"required"`
	Price            float64  `json:"price" validate:"gte=0"`
	Quantity         int      `json:"quantity" validate:"required,gt=0"`
	Image            *string  `json:"image"`
	AcquisitionType  string   `json:"acquisition_type" validate:"required"`
	RentalMonths     *int     `json:"rental_months"`
	IsPackage        bool     `json:"is_package"`
	PackageID        *string  `json:"package_id"`
	SubscriptionPlan *string  `json:"subscription_plan"`
	IncludedProducts []string `json:"included_products"`
}

// DummyTrackSession recebe o corpo JSON do rastreamento de carrinho/checkout.
type DummyTrackSession struct {
	Stage       string          `json:"stage" validate:"required,oneof=cart checkout"`
	Items       []DummyCartLine `json:"items" validate:"dive"`
	TotalAmount float64         `json:"total_amount" validate:"gte=0"`
}

// DummyCloseSession recebe o corpo JSON do encerramento de sessões abertas.
type DummyCloseSession struct {
	Status string `json:"status" validate:"required,oneof=cleared converted"`
}
