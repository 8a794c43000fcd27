package database

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema, applied once at startup.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    userid       BIGSERIAL PRIMARY KEY,
    email        TEXT NOT NULL UNIQUE,
    name         TEXT NOT NULL,
    passwordhash TEXT NOT NULL,
    role         TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
    createdat    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS book (
    openlibraryid TEXT PRIMARY KEY,
    isbn          TEXT NOT NULL DEFAULT '',
    title         TEXT NOT NULL,
    author        TEXT NOT NULL DEFAULT '',
    releaseyear   INT NOT NULL DEFAULT 0,
    publisher     TEXT,
    language      TEXT,
    pages         INT
);

CREATE TABLE IF NOT EXISTS stock (
    stockid       BIGSERIAL PRIMARY KEY,
    openlibraryid TEXT NOT NULL REFERENCES book(openlibraryid),
    quality       INT NOT NULL CHECK (quality BETWEEN 1 AND 5),
    quantity      INT NOT NULL CHECK (quantity >= 0),
    UNIQUE (openlibraryid, quality)
);

CREATE TABLE IF NOT EXISTS wishlist (
    userid        BIGINT NOT NULL REFERENCES users(userid),
    openlibraryid TEXT NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    author        TEXT NOT NULL DEFAULT '',
    coverurl      TEXT NOT NULL DEFAULT '',
    releaseyear   INT NOT NULL DEFAULT 0,
    createdat     TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (userid, openlibraryid)
);

CREATE TABLE IF NOT EXISTS rentals (
    rentalid   BIGSERIAL PRIMARY KEY,
    userid     BIGINT NOT NULL REFERENCES users(userid),
    stockid    BIGINT NOT NULL REFERENCES stock(stockid),
    status     TEXT NOT NULL DEFAULT 'pending'
               CHECK (status IN ('pending', 'approved', 'dismissed', 'not_returned', 'completed')),
    note       TEXT,
    startdate  TIMESTAMPTZ,
    enddate    TIMESTAMPTZ,
    createdat  TIMESTAMPTZ NOT NULL DEFAULT now(),
    decidedat  TIMESTAMPTZ,
    decidedby  BIGINT REFERENCES users(userid),
    returnedat TIMESTAMPTZ,
    returnedby BIGINT REFERENCES users(userid)
);

CREATE INDEX IF NOT EXISTS idx_rentals_status ON rentals(status);
CREATE INDEX IF NOT EXISTS idx_rentals_userid ON rentals(userid);
`

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (lower(email))`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
