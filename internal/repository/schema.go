package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS airlines (
	id         BIGSERIAL PRIMARY KEY,
	code       TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS aircraft (
	id             BIGSERIAL PRIMARY KEY,
	model          TEXT NOT NULL,
	total_capacity INT NOT NULL,
	seat_map       JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS flights (
	id               BIGSERIAL PRIMARY KEY,
	flight_number    TEXT NOT NULL,
	airline_id       BIGINT NOT NULL REFERENCES airlines (id),
	aircraft_id      BIGINT NOT NULL REFERENCES aircraft (id),
	from_airport     TEXT NOT NULL,
	to_airport       TEXT NOT NULL,
	departure_time   TIMESTAMPTZ NOT NULL,
	arrival_time     TIMESTAMPTZ NOT NULL,
	base_price_cents BIGINT NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bookings (
	id                  BIGSERIAL PRIMARY KEY,
	booking_reference   TEXT NOT NULL,
	ticket_number       TEXT NOT NULL DEFAULT '',
	user_id             BIGINT NOT NULL,
	flight_id           BIGINT NOT NULL REFERENCES flights (id),
	seat_number         TEXT NOT NULL,
	passenger_name      TEXT NOT NULL,
	passenger_email     TEXT NOT NULL,
	passenger_phone     TEXT NOT NULL DEFAULT '',
	passenger_id_number TEXT NOT NULL DEFAULT '',
	passenger_id_type   TEXT NOT NULL DEFAULT '',
	amount_cents        BIGINT NOT NULL,
	currency            TEXT NOT NULL,
	status              TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'cancelled')),
	issued_at           TIMESTAMPTZ,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT bookings_reference_key UNIQUE (booking_reference)
);

CREATE UNIQUE INDEX IF NOT EXISTS bookings_flight_seat_active_key
	ON bookings (flight_id, seat_number)
	WHERE status IN ('pending', 'confirmed');

CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id);

CREATE TABLE IF NOT EXISTS payments (
	id                    BIGSERIAL PRIMARY KEY,
	booking_id            BIGINT NOT NULL REFERENCES bookings (id),
	amount_cents          BIGINT NOT NULL,
	currency              TEXT NOT NULL,
	method                TEXT NOT NULL,
	card_brand            TEXT NOT NULL DEFAULT '',
	card_last4            TEXT NOT NULL DEFAULT '',
	transaction_id        TEXT NOT NULL DEFAULT '',
	refund_transaction_id TEXT NOT NULL DEFAULT '',
	status                TEXT NOT NULL CHECK (status IN ('pending', 'success', 'failed', 'refunded')),
	failure_reason        TEXT NOT NULL DEFAULT '',
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS payments_booking_success_key
	ON payments (booking_id)
	WHERE status = 'success';
`

// Migrate creates the tables and uniqueness constraints if they do not exist.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
