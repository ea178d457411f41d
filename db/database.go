package db

import (
	"database/sql"
	"fmt"
	"log"

	"MixFM/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't
// exist. Uniqueness of link pairs and single ownership of songs are
// enforced here, at the storage layer, so concurrent links cannot race
// past an application-level check.
func InitDB() error {
	for _, stmt := range schemaStatements {
		if _, err := DB.Exec(stmt.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.name, err)
		}
	}
	log.Println("Database schema initialized (or already present).")
	return nil
}

var schemaStatements = []struct {
	name  string
	query string
}{
	{"users", `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`},
	{"songs", `
	CREATE TABLE IF NOT EXISTS songs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		artist VARCHAR(255),
		duration FLOAT,
		file_path VARCHAR(767),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`},
	{"playlists", `
	CREATE TABLE IF NOT EXISTS playlists (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`},
	{"user_playlists", `
	CREATE TABLE IF NOT EXISTS user_playlists (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		playlist_id INT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_up_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_up_playlist FOREIGN KEY (playlist_id) REFERENCES playlists(id),
		CONSTRAINT uq_user_playlist UNIQUE (user_id, playlist_id)
	);
	`},
	{"user_songs", `
	CREATE TABLE IF NOT EXISTS user_songs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		song_id INT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_us_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_us_song FOREIGN KEY (song_id) REFERENCES songs(id),
		CONSTRAINT uq_song_owner UNIQUE (song_id)
	);
	`},
	{"playlist_songs", `
	CREATE TABLE IF NOT EXISTS playlist_songs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		playlist_id INT NOT NULL,
		song_id INT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_ps_playlist FOREIGN KEY (playlist_id) REFERENCES playlists(id),
		CONSTRAINT fk_ps_song FOREIGN KEY (song_id) REFERENCES songs(id),
		CONSTRAINT uq_playlist_song UNIQUE (playlist_id, song_id)
	);
	`},
}
