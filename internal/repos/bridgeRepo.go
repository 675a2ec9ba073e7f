package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/wheelibin/huectl/internal/models"
)

const initSchema = `
  CREATE TABLE IF NOT EXISTS bridge (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    ip TEXT NOT NULL,
    username TEXT,
    client_id TEXT,
    updated_at TIMESTAMP
  );
`

// BridgeRepo caches the single bridge this machine talks to.
type BridgeRepo struct {
	logger *log.Logger
	db     *sql.DB
}

func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("Error opening bridge cache (%s): %w", path, err)
	}
	return db, nil
}

func NewBridgeRepo(logger *log.Logger, db *sql.DB) (*BridgeRepo, error) {

	_, err := db.Exec(initSchema)
	if err != nil {
		return nil, fmt.Errorf("Error initialising bridge schema: %w", err)
	}

	return &BridgeRepo{logger: logger, db: db}, nil
}

// Get returns the cached bridge, or nil if nothing has been cached yet.
func (r *BridgeRepo) Get() (*models.Bridge, error) {
	row := r.db.QueryRow(`SELECT ip, username, client_id, updated_at FROM bridge WHERE id = 1;`)

	var b models.Bridge
	var username, clientID sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(&b.IP, &username, &clientID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Error reading cached bridge: %w", err)
	}

	b.Username = username.String
	b.ClientID = clientID.String
	b.UpdatedAt = updatedAt.Time
	return &b, nil
}

// SaveIP stores the bridge address, keeping any username already cached for the same bridge.
func (r *BridgeRepo) SaveIP(ip string) error {
	_, err := r.db.Exec(
		`INSERT INTO bridge (id, ip, updated_at) VALUES (1, $1, $2)
     ON CONFLICT(id) DO UPDATE SET
       username = CASE WHEN bridge.ip = excluded.ip THEN bridge.username ELSE NULL END,
       client_id = CASE WHEN bridge.ip = excluded.ip THEN bridge.client_id ELSE NULL END,
       ip = excluded.ip,
       updated_at = excluded.updated_at;`,
		ip,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("Error caching bridge ip (%s): %w", ip, err)
	}
	r.logger.Debug("cached bridge ip", "ip", ip)
	return nil
}

// Save stores the bridge together with the credentials it granted.
func (r *BridgeRepo) Save(b models.Bridge) error {
	_, err := r.db.Exec(
		`INSERT INTO bridge (id, ip, username, client_id, updated_at) VALUES (1, $1, $2, $3, $4)
     ON CONFLICT(id) DO UPDATE SET
       ip = excluded.ip,
       username = excluded.username,
       client_id = excluded.client_id,
       updated_at = excluded.updated_at;`,
		b.IP,
		b.Username,
		b.ClientID,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("Error caching bridge (%s): %w", b.IP, err)
	}
	r.logger.Debug("cached bridge", "ip", b.IP, "clientId", b.ClientID)
	return nil
}

func (r *BridgeRepo) Clear() error {
	_, err := r.db.Exec(`DELETE FROM bridge;`)
	if err != nil {
		return fmt.Errorf("Error clearing bridge cache: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (r *BridgeRepo) Close() error {
	return r.db.Close()
}
