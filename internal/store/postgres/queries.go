package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/store"
)

// elementColumns is the column list used for SELECT statements on the elements table.
const elementColumns = `id, type, title, status, created_at, created_by, updated_at, closed_at, closed_by`

// depColumns is the column list used for SELECT statements on the deps table.
const depColumns = `source_id, target_id, type, created_at, created_by, metadata`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// notFound maps the driver's no-rows sentinel to store.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func queryCreateElement(ctx context.Context, db executor, el *model.Element) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO elements (
			id, type, title, status, created_at, created_by, updated_at,
			closed_at, closed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		el.ID,
		string(el.Type),
		el.Title,
		string(el.Status),
		el.CreatedAt,
		nullString(el.CreatedBy),
		el.UpdatedAt,
		nullTimePtr(el.ClosedAt),
		nullString(el.ClosedBy),
	)
	return err
}

func queryGetElement(ctx context.Context, db executor, id string) (*model.Element, error) {
	row := db.QueryRowContext(ctx, `SELECT `+elementColumns+` FROM elements WHERE id = $1`, id)
	el, err := scanElement(row)
	if err != nil {
		return nil, notFound(err)
	}

	// Attach every edge touching the element, both directions.
	deps, err := queryElementEdges(ctx, db, id)
	if err != nil {
		return nil, err
	}
	el.Dependencies = deps

	return el, nil
}

func queryListElements(ctx context.Context, db executor, filter model.ElementFilter) ([]*model.Element, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Type) > 0 {
		placeholders := make([]string, len(filter.Type))
		for i, t := range filter.Type {
			placeholders[i] = nextArg()
			args = append(args, string(t))
		}
		whereClauses = append(whereClauses, "type IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses, fmt.Sprintf("title ILIKE '%%' || %s || '%%'", p))
		args = append(args, filter.Search)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + elementColumns + " FROM elements" + whereSQL + " ORDER BY " + parseSortClause(filter.Sort)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list elements: %w", err)
	}
	defer rows.Close()

	var elements []*model.Element
	var total int
	for rows.Next() {
		el, t, err := scanElementWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan elements: %w", err)
		}
		total = t
		elements = append(elements, el)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan elements: %w", err)
	}

	return elements, total, nil
}

func querySetElementStatus(ctx context.Context, db executor, id string, status model.Status, actor string) (*model.Element, error) {
	var row *sql.Row
	if status.Terminal() {
		row = db.QueryRowContext(ctx, `
			UPDATE elements
			SET status = $2, closed_at = NOW(), closed_by = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING `+elementColumns,
			id, string(status), actor,
		)
	} else {
		// Reopening clears the close stamp.
		row = db.QueryRowContext(ctx, `
			UPDATE elements
			SET status = $2, closed_at = NULL, closed_by = NULL, updated_at = NOW()
			WHERE id = $1
			RETURNING `+elementColumns,
			id, string(status),
		)
	}
	el, err := scanElement(row)
	if err != nil {
		return nil, notFound(err)
	}
	return el, nil
}

func queryDeleteElement(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM elements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryElementStatus(ctx context.Context, db executor, id string) (model.Status, error) {
	var status string
	err := db.QueryRowContext(ctx, `SELECT status FROM elements WHERE id = $1`, id).Scan(&status)
	if err != nil {
		return "", notFound(err)
	}
	return model.Status(status), nil
}

func queryAddDependency(ctx context.Context, db executor, dep *model.Dependency) error {
	meta, err := model.EncodeMetadata(dep.Meta)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO deps (source_id, target_id, type, created_at, created_by, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		dep.SourceID,
		dep.TargetID,
		string(dep.Type),
		dep.CreatedAt,
		nullString(dep.CreatedBy),
		meta,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return store.ErrExists
	}
	return err
}

func queryRemoveDependency(ctx context.Context, db executor, sourceID, targetID string, depType model.DependencyType) error {
	res, err := db.ExecContext(ctx, `
		DELETE FROM deps
		WHERE source_id = $1 AND target_id = $2 AND type = $3`,
		sourceID, targetID, string(depType),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryGetDependency(ctx context.Context, db executor, sourceID, targetID string, depType model.DependencyType) (*model.Dependency, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+depColumns+` FROM deps
		WHERE source_id = $1 AND target_id = $2 AND type = $3`,
		sourceID, targetID, string(depType),
	)
	d, err := scanDependency(row)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func queryUpdateDependencyMeta(ctx context.Context, db executor, dep *model.Dependency) error {
	meta, err := model.EncodeMetadata(dep.Meta)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		UPDATE deps SET metadata = $4
		WHERE source_id = $1 AND target_id = $2 AND type = $3`,
		dep.SourceID, dep.TargetID, string(dep.Type), meta,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// queryEdges fetches edges by one endpoint column, optionally narrowed to a
// type set. column is a trusted constant, never caller input.
func queryEdges(ctx context.Context, db executor, column, id string, types []model.DependencyType) ([]*model.Dependency, error) {
	query := `SELECT ` + depColumns + ` FROM deps WHERE ` + column + ` = $1`
	args := []any{id}

	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, string(t))
		}
		query += " AND type IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDependencies(rows)
}

// queryElementEdges fetches every edge touching the element in either role.
func queryElementEdges(ctx context.Context, db executor, id string) ([]*model.Dependency, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+depColumns+` FROM deps
		WHERE source_id = $1 OR target_id = $1
		ORDER BY created_at ASC`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDependencies(rows)
}

func queryAreRelated(ctx context.Context, db executor, a, b string) (bool, error) {
	// relates-to rows are stored normalized; LEAST/GREATEST makes the lookup
	// order-independent.
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM deps
			WHERE source_id = LEAST($1, $2)
			  AND target_id = GREATEST($1, $2)
			  AND type = 'relates-to'
		)`, a, b,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func queryGetGraph(ctx context.Context, db executor, limit int) (*model.GraphResponse, error) {
	if limit <= 0 {
		limit = 500
	}

	elements, _, err := queryListElements(ctx, db, model.ElementFilter{
		Limit: limit,
		Sort:  "-updated_at",
	})
	if err != nil {
		return nil, fmt.Errorf("graph: list elements: %w", err)
	}

	// Build a set of element IDs for edge filtering.
	idSet := make(map[string]struct{}, len(elements))
	for _, el := range elements {
		idSet[el.ID] = struct{}{}
	}

	// Fetch all edges in one query (not per-element N+1).
	depRows, err := db.QueryContext(ctx, `SELECT `+depColumns+` FROM deps`)
	if err != nil {
		return nil, fmt.Errorf("graph: fetch deps: %w", err)
	}
	defer depRows.Close()

	var edges []*model.GraphEdge
	depMap := make(map[string][]*model.Dependency)
	for depRows.Next() {
		d, err := scanDependency(depRows)
		if err != nil {
			return nil, fmt.Errorf("graph: scan dep: %w", err)
		}
		depMap[d.SourceID] = append(depMap[d.SourceID], d)

		// Only include edges where both endpoints are in the node set.
		_, srcOK := idSet[d.SourceID]
		_, tgtOK := idSet[d.TargetID]
		if srcOK && tgtOK {
			edges = append(edges, &model.GraphEdge{
				Source:   d.SourceID,
				Target:   d.TargetID,
				Type:     string(d.Type),
				Category: d.Type.Category(),
			})
		}
	}
	if err := depRows.Err(); err != nil {
		return nil, fmt.Errorf("graph: dep rows: %w", err)
	}

	// Attach outgoing edges to their source elements.
	for _, el := range elements {
		if deps, ok := depMap[el.ID]; ok {
			el.Dependencies = deps
		}
	}

	stats, err := queryGetStats(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	if elements == nil {
		elements = []*model.Element{}
	}
	if edges == nil {
		edges = []*model.GraphEdge{}
	}

	return &model.GraphResponse{
		Nodes: elements,
		Edges: edges,
		Stats: stats,
	}, nil
}

func queryGetStats(ctx context.Context, db executor) (*model.GraphStats, error) {
	stats := &model.GraphStats{}
	err := db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'open' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0)
		FROM elements`).Scan(
		&stats.TotalOpen,
		&stats.TotalInProgress,
		&stats.TotalCompleted,
		&stats.TotalCancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, element_id, actor, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.Topic, e.ElementID, nullString(e.Actor), []byte(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryGetEvents(ctx context.Context, db executor, elementID string) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, element_id, actor, payload, created_at
		FROM events
		WHERE element_id = $1
		ORDER BY created_at ASC`,
		elementID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func parseSortClause(sort string) string {
	if sort == "" {
		return "created_at DESC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	allowed := map[string]bool{
		"created_at": true, "updated_at": true,
		"title": true, "status": true, "type": true,
	}
	if !allowed[col] {
		return "created_at DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
