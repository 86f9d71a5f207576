package alarms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver.

	"github.com/oshokin/gradual/internal/domain/alarm"
)

const (
	// driverName is the database/sql name registered by modernc.org/sqlite.
	driverName = "sqlite"
	// directoryPermissions is used when the database directory must be created.
	directoryPermissions = 0o750
	// createdAtLayout keeps nanoseconds fixed-width so text order is time order.
	createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

	schema = `
	CREATE TABLE IF NOT EXISTS alarms (
		id                  TEXT    PRIMARY KEY,
		hour                INTEGER NOT NULL,
		minute              INTEGER NOT NULL,
		days                TEXT    NOT NULL,
		moment              TEXT    NOT NULL DEFAULT '',
		recurrent           INTEGER NOT NULL DEFAULT 0,
		enabled             INTEGER NOT NULL DEFAULT 1,
		temporary           INTEGER NOT NULL DEFAULT 0,
		skip                INTEGER NOT NULL DEFAULT 0,
		offset_minutes      INTEGER NOT NULL DEFAULT 0,
		snooze_minutes      INTEGER NOT NULL DEFAULT 0,
		last_offset_minutes INTEGER NOT NULL DEFAULT 0,
		last_snooze_minutes INTEGER NOT NULL DEFAULT 0,
		fade_args           TEXT    NOT NULL DEFAULT 'null',
		recommendation_args TEXT    NOT NULL DEFAULT 'null',
		created_at          TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alarms_enabled ON alarms(enabled);
	`

	selectColumns = `
	SELECT id, hour, minute, days, moment, recurrent, enabled, temporary, skip,
		offset_minutes, snooze_minutes, last_offset_minutes, last_snooze_minutes,
		fade_args, recommendation_args, created_at
	FROM alarms`

	orderByCreation = ` ORDER BY created_at, id`

	upsertAlarm = `
	INSERT INTO alarms (
		id, hour, minute, days, moment, recurrent, enabled, temporary, skip,
		offset_minutes, snooze_minutes, last_offset_minutes, last_snooze_minutes,
		fade_args, recommendation_args, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		hour = excluded.hour,
		minute = excluded.minute,
		days = excluded.days,
		moment = excluded.moment,
		recurrent = excluded.recurrent,
		enabled = excluded.enabled,
		temporary = excluded.temporary,
		skip = excluded.skip,
		offset_minutes = excluded.offset_minutes,
		snooze_minutes = excluded.snooze_minutes,
		last_offset_minutes = excluded.last_offset_minutes,
		last_snooze_minutes = excluded.last_snooze_minutes,
		fade_args = excluded.fade_args,
		recommendation_args = excluded.recommendation_args`
)

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is the subset shared by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository persists alarms in an SQLite database file.
type SQLiteRepository struct {
	// db is the connection pool, limited to a single connection.
	db *sql.DB
}

// Open creates (if needed) and opens the database at path and applies the schema.
// Transactions start as BEGIN IMMEDIATE so that a read-modify-write cycle holds
// the write lock from its first read.
func Open(ctx context.Context, path string) (*SQLiteRepository, error) {
	if err := ensureDirectory(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate",
		filepath.ToSlash(path),
	)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, storageError("open database", err)
	}

	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, storageError("connect to database", err)
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, storageError("create schema", err)
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}

	return r.db.Close()
}

// List returns every stored alarm ordered by creation time.
func (r *SQLiteRepository) List(ctx context.Context) ([]*alarm.Alarm, error) {
	return queryAlarms(ctx, r.db, selectColumns+orderByCreation)
}

// ListEnabled returns the enabled alarms ordered by creation time.
func (r *SQLiteRepository) ListEnabled(ctx context.Context) ([]*alarm.Alarm, error) {
	return queryAlarms(ctx, r.db, selectColumns+` WHERE enabled = 1`+orderByCreation)
}

// Get returns the alarm with the given ID.
func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (*alarm.Alarm, error) {
	return getAlarm(ctx, r.db, id)
}

// Save validates and upserts the alarm. A zero CreatedAt is set to the current time.
func (r *SQLiteRepository) Save(ctx context.Context, a *alarm.Alarm) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	return saveAlarm(ctx, r.db, a)
}

// Delete removes the alarm with the given ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alarms WHERE id = ?`, id.String())
	if err != nil {
		return storageError("delete alarm", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageError("delete alarm", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}

// Update loads the alarm, applies fn and writes the result back, all inside
// one transaction. The stored copy is returned on success.
func (r *SQLiteRepository) Update(ctx context.Context, id uuid.UUID, fn MutateFunc) (*alarm.Alarm, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("begin transaction", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	current, err := getAlarm(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err = fn(current); err != nil {
		return nil, err
	}

	// The identity of a record never changes under Update.
	current.ID = id

	if err = saveAlarm(ctx, tx, current); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, storageError("commit transaction", err)
	}

	return current, nil
}

func getAlarm(ctx context.Context, q querier, id uuid.UUID) (*alarm.Alarm, error) {
	row := q.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id.String())

	a, err := scanAlarm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return nil, err
	}

	return a, nil
}

func queryAlarms(ctx context.Context, q querier, query string) ([]*alarm.Alarm, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, storageError("query alarms", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var result []*alarm.Alarm

	for rows.Next() {
		a, scanErr := scanAlarm(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		result = append(result, a)
	}

	if err = rows.Err(); err != nil {
		return nil, storageError("iterate alarms", err)
	}

	return result, nil
}

func saveAlarm(ctx context.Context, q querier, a *alarm.Alarm) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validate alarm: %w", err)
	}

	days, err := json.Marshal(a.Days)
	if err != nil {
		return fmt.Errorf("encode days: %w", err)
	}

	fadeArgs, err := json.Marshal(a.FadeArgs)
	if err != nil {
		return fmt.Errorf("encode fade args: %w", err)
	}

	recommendationArgs, err := json.Marshal(a.RecommendationArgs)
	if err != nil {
		return fmt.Errorf("encode recommendation args: %w", err)
	}

	_, err = q.ExecContext(ctx, upsertAlarm,
		a.ID.String(),
		a.Hour,
		a.Minute,
		string(days),
		a.Moment,
		a.Recurrent,
		a.Enabled,
		a.Temporary,
		a.Skip,
		a.OffsetMinutes,
		a.SnoozeMinutes,
		a.LastOffsetMinutes,
		a.LastSnoozeMinutes,
		string(fadeArgs),
		string(recommendationArgs),
		a.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return storageError("save alarm", err)
	}

	return nil
}

func scanAlarm(row rowScanner) (*alarm.Alarm, error) {
	var (
		a                  alarm.Alarm
		id                 string
		days               string
		fadeArgs           string
		recommendationArgs string
		createdAt          string
	)

	err := row.Scan(
		&id,
		&a.Hour,
		&a.Minute,
		&days,
		&a.Moment,
		&a.Recurrent,
		&a.Enabled,
		&a.Temporary,
		&a.Skip,
		&a.OffsetMinutes,
		&a.SnoozeMinutes,
		&a.LastOffsetMinutes,
		&a.LastSnoozeMinutes,
		&fadeArgs,
		&recommendationArgs,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, storageError("scan alarm", err)
	}

	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, corruptError(id, "id", err)
	}

	var weekdays []alarm.Weekday
	if err = json.Unmarshal([]byte(days), &weekdays); err != nil {
		return nil, corruptError(id, "days", err)
	}

	if a.Days, err = alarm.NewDays(weekdays...); err != nil {
		return nil, corruptError(id, "days", err)
	}

	if err = json.Unmarshal([]byte(fadeArgs), &a.FadeArgs); err != nil {
		return nil, corruptError(id, "fade args", err)
	}

	if err = json.Unmarshal([]byte(recommendationArgs), &a.RecommendationArgs); err != nil {
		return nil, corruptError(id, "recommendation args", err)
	}

	// RFC3339Nano also reads the padded layout and rows written before it.
	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, corruptError(id, "created at", err)
	}

	return &a, nil
}

func ensureDirectory(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}

	if err := os.MkdirAll(dir, directoryPermissions); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}

	return nil
}

func storageError(action string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, action, err)
}

func corruptError(id, field string, err error) error {
	return fmt.Errorf("%w: alarm %s: %s: %w", ErrCorruptRecord, id, field, err)
}
