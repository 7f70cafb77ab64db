// Package wordstore provides Postgres-backed persistence for composed
// dictionary records.
package wordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/dictionary"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool backing the store.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type dbPool interface {
	Begin(context.Context) (pgx.Tx, error)
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// Store writes composed dictionary entries into Postgres.
//
// Expected table schema:
//
//	CREATE TABLE words (
//	    id BIGSERIAL PRIMARY KEY,
//	    page_index INT UNIQUE NOT NULL,
//	    html_ru TEXT NOT NULL,
//	    html_en TEXT NOT NULL,
//	    html_he TEXT NOT NULL,
//	    translation_ru TEXT,
//	    translation_en TEXT,
//	    translation_he TEXT,
//	    transcription_ru TEXT,
//	    transcription_en TEXT,
//	    transcription_he TEXT,
//	    word_type_ru TEXT,
//	    word_type_en TEXT,
//	    word_type_he TEXT,
//	    search_ru JSONB,
//	    search_en JSONB,
//	    search_he JSONB,
//	    favourite BOOLEAN NOT NULL DEFAULT FALSE,
//	    to_learn BOOLEAN NOT NULL DEFAULT FALSE,
//	    known BOOLEAN NOT NULL DEFAULT FALSE
//	);
type Store struct {
	pool  dbPool
	table string
}

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "words"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// NewStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewStoreWithPool(pool dbPool, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "words"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const insertColumns = `
	page_index,
	html_ru, html_en, html_he,
	translation_ru, translation_en, translation_he,
	transcription_ru, transcription_en, transcription_he,
	word_type_ru, word_type_en, word_type_he,
	search_ru, search_en, search_he,
	favourite, to_learn, known`

func (s *Store) insertQuery() string {
	return fmt.Sprintf(`
INSERT INTO %s (%s
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19
)`, s.table, insertColumns)
}

func insertArgs(entry *dictionary.Entry) ([]any, error) {
	searchRU, err := tokensJSON(entry.RU.SearchTokens)
	if err != nil {
		return nil, err
	}
	searchEN, err := tokensJSON(entry.EN.SearchTokens)
	if err != nil {
		return nil, err
	}
	searchHE, err := tokensJSON(entry.HE.SearchTokens)
	if err != nil {
		return nil, err
	}
	return []any{
		entry.Index,
		entry.RU.Container, entry.EN.Container, entry.HE.Container,
		nullString(entry.RU.Translation), nullString(entry.EN.Translation), nullString(entry.HE.Translation),
		nullString(entry.RU.Transcription), nullString(entry.EN.Transcription), nullString(entry.HE.Transcription),
		nullString(entry.RU.WordType), nullString(entry.EN.WordType), nullString(entry.HE.WordType),
		searchRU, searchEN, searchHE,
		entry.Favourite, entry.ToLearn, entry.Known,
	}, nil
}

// Insert persists a single entry.
func (s *Store) Insert(ctx context.Context, entry *dictionary.Entry) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("word store is not configured")
	}
	args, err := insertArgs(entry)
	if err != nil {
		return fmt.Errorf("encode entry %d: %w", entry.Index, err)
	}
	if _, err := s.pool.Exec(ctx, s.insertQuery(), args...); err != nil {
		return fmt.Errorf("insert entry %d: %w", entry.Index, err)
	}
	return nil
}

// InsertBatch persists all entries inside a single transaction. If any
// insert fails the transaction is rolled back and no entry is persisted.
func (s *Store) InsertBatch(ctx context.Context, entries []*dictionary.Entry) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("word store is not configured")
	}
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := s.insertQuery()
	for _, entry := range entries {
		args, err := insertArgs(entry)
		if err != nil {
			return fmt.Errorf("encode entry %d: %w", entry.Index, err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert entry %d: %w", entry.Index, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("word store is not configured")
	}
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)
	if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// DeleteAll drops every stored record, typically before a full rebuild.
func (s *Store) DeleteAll(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("word store is not configured")
	}
	query := fmt.Sprintf(`DELETE FROM %s`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	return nil
}

// GetByIndex loads a single entry by its page index.
func (s *Store) GetByIndex(ctx context.Context, index int) (*dictionary.Entry, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("word store is not configured")
	}
	query := fmt.Sprintf(`
SELECT
	id, page_index,
	html_ru, html_en, html_he,
	COALESCE(translation_ru, ''), COALESCE(translation_en, ''), COALESCE(translation_he, ''),
	COALESCE(transcription_ru, ''), COALESCE(transcription_en, ''), COALESCE(transcription_he, ''),
	COALESCE(word_type_ru, ''), COALESCE(word_type_en, ''), COALESCE(word_type_he, ''),
	search_ru, search_en, search_he,
	favourite, to_learn, known
FROM %s WHERE page_index = $1`, s.table)

	entry := &dictionary.Entry{}
	var searchRU, searchEN, searchHE []byte
	err := s.pool.QueryRow(ctx, query, index).Scan(
		&entry.ID, &entry.Index,
		&entry.RU.Container, &entry.EN.Container, &entry.HE.Container,
		&entry.RU.Translation, &entry.EN.Translation, &entry.HE.Translation,
		&entry.RU.Transcription, &entry.EN.Transcription, &entry.HE.Transcription,
		&entry.RU.WordType, &entry.EN.WordType, &entry.HE.WordType,
		&searchRU, &searchEN, &searchHE,
		&entry.Favourite, &entry.ToLearn, &entry.Known,
	)
	if err != nil {
		return nil, fmt.Errorf("load entry %d: %w", index, err)
	}
	if entry.RU.SearchTokens, err = tokensFromJSON(searchRU); err != nil {
		return nil, fmt.Errorf("decode entry %d: %w", index, err)
	}
	if entry.EN.SearchTokens, err = tokensFromJSON(searchEN); err != nil {
		return nil, fmt.Errorf("decode entry %d: %w", index, err)
	}
	if entry.HE.SearchTokens, err = tokensFromJSON(searchHE); err != nil {
		return nil, fmt.Errorf("decode entry %d: %w", index, err)
	}
	return entry, nil
}

// UpdateFlags sets the user-facing study flags for one entry.
func (s *Store) UpdateFlags(ctx context.Context, index int, favourite, toLearn, known bool) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("word store is not configured")
	}
	query := fmt.Sprintf(`
UPDATE %s SET favourite = $2, to_learn = $3, known = $4 WHERE page_index = $1`, s.table)
	tag, err := s.pool.Exec(ctx, query, index, favourite, toLearn, known)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", index, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update entry %d: no such entry", index)
	}
	return nil
}

// nullString maps the empty string to SQL NULL so absent fields stay NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func tokensJSON(tokens []string) (any, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return nil, fmt.Errorf("marshal search tokens: %w", err)
	}
	return data, nil
}

func tokensFromJSON(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("unmarshal search tokens: %w", err)
	}
	return tokens, nil
}
