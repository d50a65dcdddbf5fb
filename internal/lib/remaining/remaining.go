// Package remaining formata o tempo restante de um trial para exibição.
// O valor é sempre derivado na hora da chamada, nunca armazenado.
package remaining

import (
	"fmt"
	"time"
)

// Expired é o texto exibido quando o trial já passou da data de expiração.
const Expired = "Expirado"

// Until formata a duração entre now e expiresAt.
// Com 24h ou mais restantes o formato é dias+horas ("2d 3h");
// com menos de 24h, horas+minutos ("1h 30min").
// Se expiresAt já passou (ou é exatamente agora), retorna Expired.
func Until(now, expiresAt time.Time) string {
	if !now.Before(expiresAt) {
		return Expired
	}

	left := expiresAt.Sub(now)
	if left >= 24*time.Hour {
		days := int(left.Hours()) / 24
		hours := int(left.Hours()) % 24
		return fmt.Sprintf("%dd %dh", days, hours)
	}

	hours := int(left.Hours())
	minutes := int(left.Minutes()) % 60
	return fmt.Sprintf("%dh %dmin", hours, minutes)
}
