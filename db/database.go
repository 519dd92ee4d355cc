package db

import (
	"database/sql"
	"fmt"
	"log"

	"MwFM/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// Connect establishes a connection to the database.
func Connect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return conn, nil
}

// createTracksTableSQL is the tracks DDL. id, user_id and plays are BIGINT:
// the models use int64, and user_id must match the BIGINT users.id column
// gorm migrates, or MySQL rejects the foreign key as incompatible.
const createTracksTableSQL = `
	CREATE TABLE IF NOT EXISTS tracks (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		artist VARCHAR(255),
		album VARCHAR(255),
		release_date VARCHAR(64),
		language VARCHAR(64),
		country VARCHAR(64),
		genre VARCHAR(128),
		explicit BOOLEAN NOT NULL DEFAULT FALSE,
		bpm INT NOT NULL DEFAULT 0,
		audio_path VARCHAR(767) NOT NULL,
		cover_path VARCHAR(767),
		plays BIGINT NOT NULL DEFAULT 0,
		top_monday BOOLEAN NOT NULL DEFAULT FALSE,
		user_id BIGINT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_track_owner FOREIGN KEY (user_id) REFERENCES users(id)
	);
	`

// InitSchema creates the tracks table if it doesn't exist. The users table is
// migrated separately through gorm (see gorm.go), so it must exist before the
// foreign key here can be created.
func InitSchema(conn *sql.DB) error {
	if _, err := conn.Exec(createTracksTableSQL); err != nil {
		return fmt.Errorf("failed to create tracks table: %w", err)
	}

	log.Println("Tracks table initialized successfully (or already exists).")
	return nil
}
