package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automatize/funnel-tracker/internal/models"
)

func TestStorage_SaveFunnelEvent(t *testing.T) {
	type args struct {
		ctx   context.Context
		event models.FunnelEvent
	}

	tests := []struct {
		name   string
		args   args
		wantID int
	}{
		{
			name: "successful save event",
			args: args{
				ctx: context.Background(),
				event: models.FunnelEvent{
					UserUID:   "550e8400-e29b-41d4-a716-446655440000",
					EventType: models.EventCartUpdated,
					Metadata:  map[string]any{"items_count": 2, "total_amount": 99.8},
					CreatedAt: time.Now(),
				},
			},
			wantID: 1,
		},
		{
			name: "save event with empty metadata",
			args: args{
				ctx: context.Background(),
				event: models.FunnelEvent{
					UserUID:   "550e8400-e29b-41d4-a716-446655440000",
					EventType: models.EventOrderCreated,
					CreatedAt: time.Now(),
				},
			},
			wantID: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			gotID, err := storage.SaveFunnelEvent(tt.args.ctx, tt.args.event)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}

func TestStorage_ListFunnelEvents(t *testing.T) {
	userUID := uuid.New().String()

	tests := []struct {
		name      string
		limit     int
		offset    int
		wantCount int
		wantFirst string
		setup     func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name:      "newest first with pagination",
			limit:     2,
			offset:    0,
			wantCount: 2,
			wantFirst: models.EventOrderCreated,
			setup: func(t *testing.T, factory *TestDataFactory) {
				base := time.Now().Add(-time.Hour)
				factory.CreateFunnelEvent(t, userUID, models.EventCartUpdated, nil, base)
				factory.CreateFunnelEvent(t, userUID, models.EventCheckoutView, nil, base.Add(time.Minute))
				factory.CreateFunnelEvent(t, userUID, models.EventOrderCreated, nil, base.Add(2*time.Minute))
			},
		},
		{
			name:      "no events for user",
			limit:     10,
			offset:    0,
			wantCount: 0,
			setup:     func(_ *testing.T, _ *TestDataFactory) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			got, err := storage.ListFunnelEvents(context.Background(), userUID, tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, got[0].EventType)
			}
		})
	}
}

func TestStorage_FindOpenSession(t *testing.T) {
	userUID := uuid.New().String()

	tests := []struct {
		name    string
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory) int
	}{
		{
			name: "finds the open session regardless of stage",
			setup: func(t *testing.T, factory *TestDataFactory) int {
				return factory.CreateSession(t, userUID, models.StageCheckout, models.SessionOpen,
					nil, 49.9, time.Now())
			},
		},
		{
			name:    "closed sessions are invisible",
			wantErr: ErrSessionNotFound,
			setup: func(t *testing.T, factory *TestDataFactory) int {
				factory.CreateSession(t, userUID, models.StageCart, models.SessionCleared,
					nil, 49.9, time.Now())
				return 0
			},
		},
		{
			name:    "no session at all",
			wantErr: ErrSessionNotFound,
			setup:   func(_ *testing.T, _ *TestDataFactory) int { return 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			sessionID := tt.setup(t, factory)

			got, err := storage.FindOpenSession(context.Background(), userUID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, sessionID, got.ID)
			assert.Equal(t, models.SessionOpen, got.Status)
		})
	}
}

func TestStorage_UpdateOpenSession_PreservesRowIdentity(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	userUID := uuid.New().String()
	factory := NewTestDataFactory(storage)
	sessionID := factory.CreateSession(t, userUID, models.StageCart, models.SessionOpen,
		[]models.CartLineSnapshot{{Slug: "bots-automacao", Title: "Bots", Price: 49.9, Quantity: 1, AcquisitionType: "purchase"}},
		49.9, time.Now())

	now := time.Now()
	rows, err := storage.UpdateOpenSession(context.Background(), models.AbandonedSession{
		ID:          sessionID,
		UserUID:     userUID,
		Stage:       models.StageCheckout,
		Status:      models.SessionOpen,
		CartItems:   nil,
		TotalAmount: 49.9,
		LastEventAt: now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	got, err := storage.FindOpenSession(context.Background(), userUID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got.ID, "a troca de estágio mantém o mesmo ID")
	assert.Equal(t, models.StageCheckout, got.Stage)

	verification := NewTestVerification(storage)
	verification.VerifyOpenSessionCount(t, userUID, 1)
}

func TestStorage_CloseOpenSessions(t *testing.T) {
	userUID := uuid.New().String()

	tests := []struct {
		name             string
		status           string
		wantRowsAffected int
		setup            func(t *testing.T, factory *TestDataFactory) int
	}{
		{
			name:             "closes the open session as converted",
			status:           models.SessionConverted,
			wantRowsAffected: 1,
			setup: func(t *testing.T, factory *TestDataFactory) int {
				return factory.CreateSession(t, userUID, models.StageCheckout, models.SessionOpen,
					nil, 120.0, time.Now())
			},
		},
		{
			name:             "no-op without open sessions",
			status:           models.SessionCleared,
			wantRowsAffected: 0,
			setup: func(t *testing.T, factory *TestDataFactory) int {
				return factory.CreateSession(t, userUID, models.StageCart, models.SessionConverted,
					nil, 120.0, time.Now())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			sessionID := tt.setup(t, factory)

			got, err := storage.CloseOpenSessions(context.Background(), userUID, tt.status, time.Now())
			require.NoError(t, err)
			assert.Equal(t, tt.wantRowsAffected, got)

			verification := NewTestVerification(storage)
			verification.VerifyOpenSessionCount(t, userUID, 0)
			if tt.wantRowsAffected > 0 {
				verification.VerifySessionStatus(t, sessionID, tt.status)
			}
		})
	}
}

func TestStorage_InsertTrial(t *testing.T) {
	userUID := uuid.New().String()

	tests := []struct {
		name    string
		trial   models.FreeTrial
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name: "successful insert trial",
			trial: models.FreeTrial{
				UserUID:      userUID,
				ProductSlug:  "bots-automacao",
				ProductTitle: "Bots de Automação",
				Status:       models.TrialActive,
				ExpiresAt:    time.Now().Add(48 * time.Hour),
				CreatedAt:    time.Now(),
			},
			setup: func(_ *testing.T, _ *TestDataFactory) {},
		},
		{
			name: "duplicate product for the same user",
			trial: models.FreeTrial{
				UserUID:      userUID,
				ProductSlug:  "bots-automacao",
				ProductTitle: "Bots de Automação",
				Status:       models.TrialActive,
				ExpiresAt:    time.Now().Add(48 * time.Hour),
				CreatedAt:    time.Now(),
			},
			wantErr: ErrTrialExists,
			setup: func(t *testing.T, factory *TestDataFactory) {
				// O trial anterior já expirou e ainda assim bloqueia
				factory.CreateTrial(t, userUID, "bots-automacao", "Bots de Automação",
					models.TrialExpired, time.Now().Add(-time.Hour))
			},
		},
		{
			name: "same product for another user",
			trial: models.FreeTrial{
				UserUID:      uuid.New().String(),
				ProductSlug:  "bots-automacao",
				ProductTitle: "Bots de Automação",
				Status:       models.TrialActive,
				ExpiresAt:    time.Now().Add(48 * time.Hour),
				CreatedAt:    time.Now(),
			},
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateTrial(t, userUID, "bots-automacao", "Bots de Automação",
					models.TrialActive, time.Now().Add(time.Hour))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			gotID, err := storage.InsertTrial(context.Background(), tt.trial)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, gotID)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, gotID)
		})
	}
}

func TestStorage_ExpireDueTrials(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	userUID := uuid.New().String()
	factory := NewTestDataFactory(storage)
	dueID := factory.CreateTrial(t, userUID, "bots-automacao", "Bots",
		models.TrialActive, time.Now().Add(-time.Minute))
	aliveID := factory.CreateTrial(t, userUID, "crm-simples", "CRM",
		models.TrialActive, time.Now().Add(time.Hour))
	alreadyExpiredID := factory.CreateTrial(t, userUID, "relatorios", "Relatórios",
		models.TrialExpired, time.Now().Add(-time.Hour))

	got, err := storage.ExpireDueTrials(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dueID, got[0].ID)
	assert.Equal(t, models.TrialExpired, got[0].Status)

	verification := NewTestVerification(storage)
	verification.VerifyTrialStatus(t, dueID, models.TrialExpired)
	verification.VerifyTrialStatus(t, aliveID, models.TrialActive)
	verification.VerifyTrialStatus(t, alreadyExpiredID, models.TrialExpired)

	// Segunda varredura não encontra nada: idempotente
	got, err = storage.ExpireDueTrials(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorage_CountActiveTrials(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	userUID := uuid.New().String()
	factory := NewTestDataFactory(storage)
	factory.CreateTrial(t, userUID, "bots-automacao", "Bots",
		models.TrialActive, time.Now().Add(time.Hour))
	factory.CreateTrial(t, userUID, "crm-simples", "CRM",
		models.TrialExpired, time.Now().Add(-time.Hour))

	count, err := storage.CountActiveTrials(context.Background(), userUID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStorage_TrialExists(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	userUID := uuid.New().String()
	factory := NewTestDataFactory(storage)
	factory.CreateTrial(t, userUID, "bots-automacao", "Bots",
		models.TrialExpired, time.Now().Add(-time.Hour))

	exists, err := storage.TrialExists(context.Background(), userUID, "bots-automacao")
	require.NoError(t, err)
	assert.True(t, exists, "trial expirado ainda conta como testado")

	exists, err = storage.TrialExists(context.Background(), userUID, "crm-simples")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStorage_RegisterUser(t *testing.T) {
	tests := []struct {
		name    string
		user    models.User
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name: "successful register user",
			user: models.User{
				Email:        "test@example.com",
				Username:     "testuser",
				PasswordHash: "hashedpassword",
				Role:         "user",
			},
			setup: func(_ *testing.T, _ *TestDataFactory) {},
		},
		{
			name: "duplicate username",
			user: models.User{
				Email:        "other@example.com",
				Username:     "testuser",
				PasswordHash: "hashedpassword2",
				Role:         "user",
			},
			wantErr: ErrUserExists,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, uuid.New().String(), "testuser", "test@example.com", "hashedpassword", "user")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			uid, err := storage.RegisterUser(context.Background(), tt.user)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, uid)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, uid)
		})
	}
}

func TestStorage_GetUserByUsername(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	userUID := uuid.New().String()
	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, userUID, "testuser", "test@example.com", "hashedpassword", "user")

	got, err := storage.GetUserByUsername(context.Background(), "testuser")
	require.NoError(t, err)
	assert.Equal(t, userUID, got.UID)
	assert.Equal(t, "test@example.com", got.Email)

	_, err = storage.GetUserByUsername(context.Background(), "nonexistent")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCheckDatabaseReady(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(t *testing.T, storage *Storage)
		wantError    bool
		errorContain string
	}{
		{
			name: "table exists",
			setup: func(_ *testing.T, _ *Storage) {
				// Tabela já criada no setupTestDatabase
			},
			wantError: false,
		},
		{
			name: "table missing",
			setup: func(t *testing.T, storage *Storage) {
				_, err := storage.DB.Exec(`DROP TABLE IF EXISTS free_trials CASCADE`)
				require.NoError(t, err)
				_, err = storage.DB.Exec(`DROP TABLE IF EXISTS abandoned_carts CASCADE`)
				require.NoError(t, err)
				_, err = storage.DB.Exec(`DROP TABLE IF EXISTS funnel_events CASCADE`)
				require.NoError(t, err)
			},
			wantError:    true,
			errorContain: "missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()
			tt.setup(t, storage)

			err := CheckDatabaseReady(storage)
			if tt.wantError {
				require.Error(t, err)
				if tt.errorContain != "" {
					assert.Contains(t, err.Error(), tt.errorContain)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}
