package sqlite

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"FindIt/internal/cli/model"
	"FindIt/internal/cli/repo"
	"FindIt/internal/core/claim"
	"FindIt/internal/core/thread"
)

// ThreadRepositorySQLite: локальная реплика заявок и лент (SQLite).
type ThreadRepositorySQLite struct {
	db    *sql.DB
	login string
}

var _ repo.ThreadRepository = (*ThreadRepositorySQLite)(nil)

// ErrClaimNotCached: заявки нет в локальной копии.
var ErrClaimNotCached = errors.New("claim is not in the local copy, run `claims` first")

// OpenForUser открывает (и создаёт при необходимости) файл БД для указанного логина
// под каталогом base и возвращает репозиторий. Вторым значением возвращается путь к БД.
func OpenForUser(base, login string) (*ThreadRepositorySQLite, string, error) {
	if login == "" {
		return nil, "", errors.New("empty login for user store")
	}
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return nil, "", err
		}
		base = filepath.Join(cfgDir, "FindIt", "users")
	}
	dir := filepath.Join(base, login)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dir, "client.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(1)
	return &ThreadRepositorySQLite{db: db, login: login}, dbPath, nil
}

// Close закрывает соединение с БД.
func (r *ThreadRepositorySQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц/индексов.
func (r *ThreadRepositorySQLite) Migrate() error {
	_, err := r.db.Exec(initialDDL())
	return err
}

func (r *ThreadRepositorySQLite) SaveClaims(claims []model.Claim) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `INSERT INTO claims (claim_id, item_id, item_title, finder_id, claimant_id, role, status, other_party_name, last_message, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(claim_id) DO UPDATE SET
    item_title = excluded.item_title,
    role = excluded.role,
    status = excluded.status,
    other_party_name = excluded.other_party_name,
    last_message = excluded.last_message,
    updated_at = excluded.updated_at`
	for _, c := range claims {
		if _, err := tx.Exec(q, c.ID, c.ItemID, c.ItemTitle, c.FinderID, c.ClaimantID, string(c.Role),
			string(c.Status), c.OtherPartyName, c.LastMessage, c.UpdatedAt.UnixMilli()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const claimColumns = `claim_id, item_id, item_title, finder_id, claimant_id, role, status, other_party_name, last_message, updated_at`

func scanClaim(s interface{ Scan(...any) error }) (model.Claim, error) {
	var (
		c              model.Claim
		role, status   string
		updatedAtMilli int64
	)
	err := s.Scan(&c.ID, &c.ItemID, &c.ItemTitle, &c.FinderID, &c.ClaimantID, &role, &status,
		&c.OtherPartyName, &c.LastMessage, &updatedAtMilli)
	if err != nil {
		return c, err
	}
	c.Role = claim.Role(role)
	if c.Status, err = claim.ParseStatus(status); err != nil {
		return c, err
	}
	c.LegacyStatus = c.Status.Legacy()
	c.UpdatedAt = time.UnixMilli(updatedAtMilli).UTC()
	return c, nil
}

// ListClaims возвращает заявки, свежие сверху.
func (r *ThreadRepositorySQLite) ListClaims() ([]model.Claim, error) {
	rows, err := r.db.Query(`SELECT ` + claimColumns + ` FROM claims ORDER BY updated_at DESC, claim_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ThreadRepositorySQLite) GetClaim(claimID string) (*model.Claim, error) {
	c, err := scanClaim(r.db.QueryRow(`SELECT `+claimColumns+` FROM claims WHERE claim_id = ?`, claimID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClaimNotCached
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AppendEntries сохраняет сообщения ленты. Лента неизменяема, поэтому
// повторно пришедший seq просто игнорируется.
func (r *ThreadRepositorySQLite) AppendEntries(claimID string, entries []thread.Entry) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, e := range entries {
		_, raw, err := thread.Encode(e.Payload)
		if err != nil {
			return 0, err
		}
		res, err := tx.Exec(`INSERT OR IGNORE INTO messages (claim_id, seq, id, sender_id, message_type, content, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, claimID, e.Seq, e.ID, e.SenderID, string(e.Type), e.Content, raw, e.CreatedAt.UnixMilli())
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

func (r *ThreadRepositorySQLite) Entries(claimID string) ([]thread.Entry, error) {
	rows, err := r.db.Query(`SELECT id, seq, sender_id, message_type, content, payload, created_at
FROM messages WHERE claim_id = ? ORDER BY seq`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []thread.Entry
	for rows.Next() {
		var (
			e       thread.Entry
			typ     string
			raw     []byte
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Seq, &e.SenderID, &typ, &e.Content, &raw, &created); err != nil {
			return nil, err
		}
		e.Type = thread.MessageType(typ)
		e.CreatedAt = time.UnixMilli(created).UTC()
		if e.Payload, err = thread.Decode(e.Type, e.Content, raw); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ThreadRepositorySQLite) MaxSeq(claimID string) (int64, error) {
	var seq int64
	err := r.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM messages WHERE claim_id = ?`, claimID).Scan(&seq)
	return seq, err
}
