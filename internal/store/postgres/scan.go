package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/loomworks/loom/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanElement scans a single row into a model.Element.
// The row must contain columns in the order defined by elementColumns.
func scanElement(row scannable) (*model.Element, error) {
	var el model.Element
	var (
		createdBy sql.NullString
		closedAt  sql.NullTime
		closedBy  sql.NullString
	)

	err := row.Scan(
		&el.ID,
		&el.Type,
		&el.Title,
		&el.Status,
		&el.CreatedAt,
		&createdBy,
		&el.UpdatedAt,
		&closedAt,
		&closedBy,
	)
	if err != nil {
		return nil, err
	}

	el.CreatedBy = createdBy.String
	el.ClosedBy = closedBy.String
	if closedAt.Valid {
		t := closedAt.Time
		el.ClosedAt = &t
	}

	return &el, nil
}

// scanElementWithTotal scans a row that has a leading total_count column
// followed by the standard element columns. Used by queryListElements with
// COUNT(*) OVER().
func scanElementWithTotal(row scannable) (*model.Element, int, error) {
	var total int
	var el model.Element
	var (
		createdBy sql.NullString
		closedAt  sql.NullTime
		closedBy  sql.NullString
	)

	err := row.Scan(
		&total,
		&el.ID,
		&el.Type,
		&el.Title,
		&el.Status,
		&el.CreatedAt,
		&createdBy,
		&el.UpdatedAt,
		&closedAt,
		&closedBy,
	)
	if err != nil {
		return nil, 0, err
	}

	el.CreatedBy = createdBy.String
	el.ClosedBy = closedBy.String
	if closedAt.Valid {
		t := closedAt.Time
		el.ClosedAt = &t
	}

	return &el, total, nil
}

// scanDependency scans a single row into a model.Dependency, decoding the
// metadata union by dependency type.
func scanDependency(row scannable) (*model.Dependency, error) {
	var d model.Dependency
	var (
		createdBy sql.NullString
		metadata  []byte
	)
	err := row.Scan(
		&d.SourceID,
		&d.TargetID,
		&d.Type,
		&d.CreatedAt,
		&createdBy,
		&metadata,
	)
	if err != nil {
		return nil, err
	}
	d.CreatedBy = createdBy.String

	meta, err := model.DecodeMetadata(d.Type, json.RawMessage(metadata))
	if err != nil {
		// Stored metadata that no longer decodes must not poison reads;
		// gate resolution fails closed on the missing gate.
		meta = nil
	}
	d.Meta = meta
	return &d, nil
}

// scanDependencies scans multiple rows into a slice of model.Dependency pointers.
func scanDependencies(rows *sql.Rows) ([]*model.Dependency, error) {
	var deps []*model.Dependency
	for rows.Next() {
		d, err := scanDependency(rows)
		if err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return deps, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.ElementID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of model.Event pointers.
func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
