package prefs

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema.sql
var schema string

// Store provides read/write access to preference records.
// Get returns (nil, nil) when the user has no record yet.
type Store interface {
	Get(ctx context.Context, userID string) (*Record, error)
	Upsert(ctx context.Context, userID string, record *Record) error
}

// ═══════════════════════════════════════════════════════════════════════════════
// SQLITE STORE
// ═══════════════════════════════════════════════════════════════════════════════

// SQLiteStore persists preference records in SQLite. Each upsert writes
// the whole record in one statement, so a cancelled turn can never leave a
// half-written record behind.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and initializes) a preference database at path.
// Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open preference db: %w", err)
	}
	// SQLite allows one writer; serialize at the pool level.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init preference schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get loads a user's preference record, or (nil, nil) when absent.
func (s *SQLiteStore) Get(ctx context.Context, userID string) (*Record, error) {
	query := `
		SELECT skin_type, skin_concerns, favorite_brands,
		       price_min, price_max, preferred_categories, allergies
		FROM user_preferences WHERE user_id = ?
	`
	var (
		record        Record
		concernsJSON  string
		brandsJSON    string
		categoryJSON  string
		allergiesJSON string
		priceMin      sql.NullInt64
		priceMax      sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&record.SkinType, &concernsJSON, &brandsJSON,
		&priceMin, &priceMax, &categoryJSON, &allergiesJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences for %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(concernsJSON), &record.SkinConcerns); err != nil {
		return nil, fmt.Errorf("decode skin_concerns for %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(brandsJSON), &record.FavoriteBrands); err != nil {
		return nil, fmt.Errorf("decode favorite_brands for %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(categoryJSON), &record.PreferredCategories); err != nil {
		return nil, fmt.Errorf("decode preferred_categories for %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(allergiesJSON), &record.Allergies); err != nil {
		return nil, fmt.Errorf("decode allergies for %s: %w", userID, err)
	}
	if priceMin.Valid {
		record.PriceMin = &priceMin.Int64
	}
	if priceMax.Valid {
		record.PriceMax = &priceMax.Int64
	}
	return &record, nil
}

// Upsert writes the full record atomically, enforcing price-range order.
func (s *SQLiteStore) Upsert(ctx context.Context, userID string, record *Record) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}

	stored := record.Clone()
	stored.normalizePriceRange()

	concernsJSON, err := marshalList(stored.SkinConcerns)
	if err != nil {
		return fmt.Errorf("marshal skin_concerns: %w", err)
	}
	brandsJSON, err := marshalList(stored.FavoriteBrands)
	if err != nil {
		return fmt.Errorf("marshal favorite_brands: %w", err)
	}
	categoriesJSON, err := marshalList(stored.PreferredCategories)
	if err != nil {
		return fmt.Errorf("marshal preferred_categories: %w", err)
	}
	allergiesJSON, err := marshalList(stored.Allergies)
	if err != nil {
		return fmt.Errorf("marshal allergies: %w", err)
	}

	var priceMin, priceMax interface{}
	if stored.PriceMin != nil {
		priceMin = *stored.PriceMin
	}
	if stored.PriceMax != nil {
		priceMax = *stored.PriceMax
	}

	now := time.Now()
	query := `
		INSERT INTO user_preferences (
			user_id, skin_type, skin_concerns, favorite_brands,
			price_min, price_max, preferred_categories, allergies,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			skin_type = excluded.skin_type,
			skin_concerns = excluded.skin_concerns,
			favorite_brands = excluded.favorite_brands,
			price_min = excluded.price_min,
			price_max = excluded.price_max,
			preferred_categories = excluded.preferred_categories,
			allergies = excluded.allergies,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		userID, stored.SkinType, concernsJSON, brandsJSON,
		priceMin, priceMax, categoriesJSON, allergiesJSON,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert preferences for %s: %w", userID, err)
	}
	return nil
}

// marshalList marshals a string list, mapping nil to "[]".
func marshalList(items []string) (string, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// MEMORY STORE
// ═══════════════════════════════════════════════════════════════════════════════

// MemoryStore is an in-memory Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Get returns a copy of the user's record, or (nil, nil) when absent.
func (s *MemoryStore) Get(ctx context.Context, userID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	return record.Clone(), nil
}

// Upsert stores a copy of the record, enforcing price-range order.
func (s *MemoryStore) Upsert(ctx context.Context, userID string, record *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	stored := record.Clone()
	stored.normalizePriceRange()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = stored
	return nil
}
