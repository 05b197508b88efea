package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate crea el esquema si no existe. Cada sentencia es idempotente
// (CREATE TABLE IF NOT EXISTS) y se ejecuta en orden; la primera que falle
// aborta el arranque.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			telegram_id BIGINT NOT NULL UNIQUE,
			role VARCHAR(20) NOT NULL DEFAULT 'guest',
			region VARCHAR(50) NOT NULL DEFAULT '',
			phone VARCHAR(30) NOT NULL DEFAULT '',
			company VARCHAR(120) NOT NULL DEFAULT '',
			comment VARCHAR(500) NOT NULL DEFAULT '',
			is_banned BOOLEAN NOT NULL DEFAULT FALSE,
			plan VARCHAR(10) NOT NULL DEFAULT 'free',
			plan_expires_at TIMESTAMPTZ,
			last_active TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_telegram ON users(telegram_id)`,

		`CREATE TABLE IF NOT EXISTS lots (
			id BIGSERIAL PRIMARY KEY,
			owner_user_id BIGINT NOT NULL REFERENCES users(id),
			type VARCHAR(10) NOT NULL,
			crop VARCHAR(50) NOT NULL,
			volume_tons NUMERIC(12,2) NOT NULL CHECK (volume_tons > 0),
			region VARCHAR(50) NOT NULL,
			location VARCHAR(100) NOT NULL DEFAULT '',
			price VARCHAR(50) NOT NULL,
			comment VARCHAR(700) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			views_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lots_active ON lots(status, type, crop, region)`,
		`CREATE INDEX IF NOT EXISTS idx_lots_owner ON lots(owner_user_id)`,

		`CREATE TABLE IF NOT EXISTS counter_offers (
			id BIGSERIAL PRIMARY KEY,
			lot_id BIGINT NOT NULL REFERENCES lots(id),
			sender_user_id BIGINT NOT NULL REFERENCES users(id),
			offered_price NUMERIC(12,2) NOT NULL CHECK (offered_price > 0),
			message VARCHAR(500) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_counter_offers_lot ON counter_offers(lot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_counter_offers_sender ON counter_offers(sender_user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_counter_offers_status ON counter_offers(status)`,

		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id BIGSERIAL PRIMARY KEY,
			user1_id BIGINT NOT NULL REFERENCES users(id),
			user2_id BIGINT NOT NULL REFERENCES users(id),
			lot_id BIGINT REFERENCES lots(id),
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (user1_id < user2_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_sessions_users ON chat_sessions(user1_id, user2_id, status)`,

		`CREATE TABLE IF NOT EXISTS chat_messages (
			id BIGSERIAL PRIMARY KEY,
			session_id BIGINT NOT NULL REFERENCES chat_sessions(id),
			sender_user_id BIGINT NOT NULL REFERENCES users(id),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS contact_requests (
			id BIGSERIAL PRIMARY KEY,
			from_user_id BIGINT NOT NULL REFERENCES users(id),
			to_user_id BIGINT NOT NULL REFERENCES users(id),
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			responded_at TIMESTAMPTZ,
			UNIQUE (from_user_id, to_user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS vehicles (
			id BIGSERIAL PRIMARY KEY,
			owner_user_id BIGINT NOT NULL REFERENCES users(id),
			body_type VARCHAR(20) NOT NULL,
			capacity_tons NUMERIC(12,2) NOT NULL CHECK (capacity_tons > 0),
			count_units INTEGER NOT NULL DEFAULT 1 CHECK (count_units > 0),
			base_region VARCHAR(50) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'available',
			comment VARCHAR(500) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_owner ON vehicles(owner_user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_region ON vehicles(base_region, status)`,

		`CREATE TABLE IF NOT EXISTS shipments (
			id BIGSERIAL PRIMARY KEY,
			creator_user_id BIGINT NOT NULL REFERENCES users(id),
			cargo_type VARCHAR(50) NOT NULL,
			volume_tons NUMERIC(12,2) NOT NULL CHECK (volume_tons > 0),
			from_region VARCHAR(50) NOT NULL,
			from_location VARCHAR(100) NOT NULL DEFAULT '',
			to_region VARCHAR(50) NOT NULL,
			to_location VARCHAR(100) NOT NULL DEFAULT '',
			comment VARCHAR(500) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_creator ON shipments(creator_user_id)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key VARCHAR(50) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS web_admins (
			id UUID PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'admin',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS broadcasts (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'draft',
			total_users INTEGER NOT NULL DEFAULT 0,
			sent_count INTEGER NOT NULL DEFAULT 0,
			failed_count INTEGER NOT NULL DEFAULT 0,
			last_user_id BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			started_at TIMESTAMPTZ,
			completed_at TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS sync_events (
			seq BIGSERIAL PRIMARY KEY,
			id CHAR(26) NOT NULL UNIQUE,
			event_type VARCHAR(50) NOT NULL,
			payload JSONB NOT NULL,
			processed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_events_unprocessed ON sync_events(processed, seq)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
