// Package repository implementa o armazenamento do rastreador de funil
// sobre PostgreSQL: eventos de funil (apenas inserção), sessões abandonadas
// (upsert e encerramento), trials gratuitos (ativação e varredura de
// expiração) e usuários.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	// Registro do driver pgx para uso com database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage encapsula a conexão com o PostgreSQL e implementa os métodos
// de acesso às tabelas do funil.
type Storage struct {
	DB *sql.DB
}

// New abre a conexão com o PostgreSQL e valida com um ping.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady verifica se o esquema do serviço foi aplicado.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'funnel_events'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table funnel_events missing or query error: %w", err)
	}
	return nil
}
