// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateElement(ctx context.Context, el *model.Element) error {
	return queryCreateElement(ctx, s.db, el)
}

func (s *PostgresStore) GetElement(ctx context.Context, id string) (*model.Element, error) {
	return queryGetElement(ctx, s.db, id)
}

func (s *PostgresStore) ListElements(ctx context.Context, filter model.ElementFilter) ([]*model.Element, int, error) {
	return queryListElements(ctx, s.db, filter)
}

func (s *PostgresStore) SetElementStatus(ctx context.Context, id string, status model.Status, actor string) (*model.Element, error) {
	return querySetElementStatus(ctx, s.db, id, status, actor)
}

func (s *PostgresStore) DeleteElement(ctx context.Context, id string) error {
	return queryDeleteElement(ctx, s.db, id)
}

func (s *PostgresStore) ElementStatus(ctx context.Context, id string) (model.Status, error) {
	return queryElementStatus(ctx, s.db, id)
}

func (s *PostgresStore) AddDependency(ctx context.Context, dep *model.Dependency) error {
	return queryAddDependency(ctx, s.db, dep)
}

func (s *PostgresStore) RemoveDependency(ctx context.Context, sourceID, targetID string, depType model.DependencyType) error {
	return queryRemoveDependency(ctx, s.db, sourceID, targetID, depType)
}

func (s *PostgresStore) GetDependency(ctx context.Context, sourceID, targetID string, depType model.DependencyType) (*model.Dependency, error) {
	return queryGetDependency(ctx, s.db, sourceID, targetID, depType)
}

func (s *PostgresStore) UpdateDependencyMeta(ctx context.Context, dep *model.Dependency) error {
	return queryUpdateDependencyMeta(ctx, s.db, dep)
}

func (s *PostgresStore) Outgoing(ctx context.Context, sourceID string, types ...model.DependencyType) ([]*model.Dependency, error) {
	return queryEdges(ctx, s.db, "source_id", sourceID, types)
}

func (s *PostgresStore) Incoming(ctx context.Context, targetID string, types ...model.DependencyType) ([]*model.Dependency, error) {
	return queryEdges(ctx, s.db, "target_id", targetID, types)
}

func (s *PostgresStore) AreRelated(ctx context.Context, a, b string) (bool, error) {
	return queryAreRelated(ctx, s.db, a, b)
}

func (s *PostgresStore) GetGraph(ctx context.Context, limit int) (*model.GraphResponse, error) {
	return queryGetGraph(ctx, s.db, limit)
}

func (s *PostgresStore) GetStats(ctx context.Context) (*model.GraphStats, error) {
	return queryGetStats(ctx, s.db)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetEvents(ctx context.Context, elementID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.db, elementID)
}

// RunInTransaction begins a serializable transaction, creates a txStore
// that delegates to it, calls fn, and commits on success or rolls back on
// error. Cycle checks run here; at READ COMMITTED two concurrent inserts
// could each pass a stale-snapshot check and jointly close a cycle, so the
// reachability read and the insert must share one serializable snapshot.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateElement(ctx context.Context, el *model.Element) error {
	return queryCreateElement(ctx, s.tx, el)
}

func (s *txStore) GetElement(ctx context.Context, id string) (*model.Element, error) {
	return queryGetElement(ctx, s.tx, id)
}

func (s *txStore) ListElements(ctx context.Context, filter model.ElementFilter) ([]*model.Element, int, error) {
	return queryListElements(ctx, s.tx, filter)
}

func (s *txStore) SetElementStatus(ctx context.Context, id string, status model.Status, actor string) (*model.Element, error) {
	return querySetElementStatus(ctx, s.tx, id, status, actor)
}

func (s *txStore) DeleteElement(ctx context.Context, id string) error {
	return queryDeleteElement(ctx, s.tx, id)
}

func (s *txStore) ElementStatus(ctx context.Context, id string) (model.Status, error) {
	return queryElementStatus(ctx, s.tx, id)
}

func (s *txStore) AddDependency(ctx context.Context, dep *model.Dependency) error {
	return queryAddDependency(ctx, s.tx, dep)
}

func (s *txStore) RemoveDependency(ctx context.Context, sourceID, targetID string, depType model.DependencyType) error {
	return queryRemoveDependency(ctx, s.tx, sourceID, targetID, depType)
}

func (s *txStore) GetDependency(ctx context.Context, sourceID, targetID string, depType model.DependencyType) (*model.Dependency, error) {
	return queryGetDependency(ctx, s.tx, sourceID, targetID, depType)
}

func (s *txStore) UpdateDependencyMeta(ctx context.Context, dep *model.Dependency) error {
	return queryUpdateDependencyMeta(ctx, s.tx, dep)
}

func (s *txStore) Outgoing(ctx context.Context, sourceID string, types ...model.DependencyType) ([]*model.Dependency, error) {
	return queryEdges(ctx, s.tx, "source_id", sourceID, types)
}

func (s *txStore) Incoming(ctx context.Context, targetID string, types ...model.DependencyType) ([]*model.Dependency, error) {
	return queryEdges(ctx, s.tx, "target_id", targetID, types)
}

func (s *txStore) AreRelated(ctx context.Context, a, b string) (bool, error) {
	return queryAreRelated(ctx, s.tx, a, b)
}

func (s *txStore) GetGraph(ctx context.Context, limit int) (*model.GraphResponse, error) {
	return queryGetGraph(ctx, s.tx, limit)
}

func (s *txStore) GetStats(ctx context.Context) (*model.GraphStats, error) {
	return queryGetStats(ctx, s.tx)
}

func (s *txStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.tx, event)
}

func (s *txStore) GetEvents(ctx context.Context, elementID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.tx, elementID)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
