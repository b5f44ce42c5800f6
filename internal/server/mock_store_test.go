package server

import (
	"context"
	"sort"
	"time"

	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/store"
)

type depKey struct {
	source  string
	target  string
	depType model.DependencyType
}

// mockStore is a minimal in-memory store for handler tests.
type mockStore struct {
	elements map[string]*model.Element
	deps     map[depKey]*model.Dependency
	events   []*model.Event
}

func newMockStore() *mockStore {
	return &mockStore{
		elements: make(map[string]*model.Element),
		deps:     make(map[depKey]*model.Dependency),
	}
}

// addElement seeds an element with the given status, bypassing validation.
func (m *mockStore) addElement(id string, status model.Status) *model.Element {
	el := &model.Element{
		ID:        id,
		Type:      model.TypeTask,
		Title:     "element " + id,
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.elements[id] = el
	return el
}

// addDep seeds an edge directly, bypassing validation and cycle checks.
func (m *mockStore) addDep(sourceID, targetID string, depType model.DependencyType, meta model.Metadata) *model.Dependency {
	d := &model.Dependency{
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      depType,
		CreatedAt: time.Now().UTC(),
		CreatedBy: "test",
		Meta:      meta,
	}
	d.Normalize()
	m.deps[depKey{d.SourceID, d.TargetID, d.Type}] = d
	return d
}

func (m *mockStore) CreateElement(_ context.Context, el *model.Element) error {
	m.elements[el.ID] = el
	return nil
}

func (m *mockStore) GetElement(_ context.Context, id string) (*model.Element, error) {
	el, ok := m.elements[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return el, nil
}

func (m *mockStore) ListElements(_ context.Context, filter model.ElementFilter) ([]*model.Element, int, error) {
	var result []*model.Element
	for _, el := range m.elements {
		if len(filter.Status) > 0 && !containsStatus(filter.Status, el.Status) {
			continue
		}
		if len(filter.Type) > 0 && !containsType(filter.Type, el.Type) {
			continue
		}
		result = append(result, el)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func containsStatus(set []model.Status, s model.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsType(set []model.ElementType, t model.ElementType) bool {
	for _, v := range set {
		if v == t {
			return true
		}
	}
	return false
}

func (m *mockStore) SetElementStatus(_ context.Context, id string, status model.Status, actor string) (*model.Element, error) {
	el, ok := m.elements[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	now := time.Now().UTC()
	el.Status = status
	el.UpdatedAt = now
	if status.Terminal() {
		el.ClosedAt = &now
		el.ClosedBy = actor
	} else {
		el.ClosedAt = nil
		el.ClosedBy = ""
	}
	return el, nil
}

func (m *mockStore) DeleteElement(_ context.Context, id string) error {
	if _, ok := m.elements[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.elements, id)
	for k := range m.deps {
		if k.source == id || k.target == id {
			delete(m.deps, k)
		}
	}
	return nil
}

func (m *mockStore) ElementStatus(_ context.Context, id string) (model.Status, error) {
	el, ok := m.elements[id]
	if !ok {
		return "", store.ErrNotFound
	}
	return el.Status, nil
}

func (m *mockStore) AddDependency(_ context.Context, dep *model.Dependency) error {
	k := depKey{dep.SourceID, dep.TargetID, dep.Type}
	if _, ok := m.deps[k]; ok {
		return store.ErrExists
	}
	m.deps[k] = dep
	return nil
}

func (m *mockStore) RemoveDependency(_ context.Context, sourceID, targetID string, depType model.DependencyType) error {
	k := depKey{sourceID, targetID, depType}
	if _, ok := m.deps[k]; !ok {
		return store.ErrNotFound
	}
	delete(m.deps, k)
	return nil
}

func (m *mockStore) GetDependency(_ context.Context, sourceID, targetID string, depType model.DependencyType) (*model.Dependency, error) {
	d, ok := m.deps[depKey{sourceID, targetID, depType}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (m *mockStore) UpdateDependencyMeta(_ context.Context, dep *model.Dependency) error {
	k := depKey{dep.SourceID, dep.TargetID, dep.Type}
	if _, ok := m.deps[k]; !ok {
		return store.ErrNotFound
	}
	m.deps[k] = dep
	return nil
}

func (m *mockStore) Outgoing(_ context.Context, sourceID string, types ...model.DependencyType) ([]*model.Dependency, error) {
	return m.filterDeps(func(d *model.Dependency) bool { return d.SourceID == sourceID }, types), nil
}

func (m *mockStore) Incoming(_ context.Context, targetID string, types ...model.DependencyType) ([]*model.Dependency, error) {
	return m.filterDeps(func(d *model.Dependency) bool { return d.TargetID == targetID }, types), nil
}

func (m *mockStore) filterDeps(match func(*model.Dependency) bool, types []model.DependencyType) []*model.Dependency {
	var result []*model.Dependency
	for _, d := range m.deps {
		if !match(d) {
			continue
		}
		if len(types) > 0 {
			found := false
			for _, t := range types {
				if d.Type == t {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SourceID != result[j].SourceID {
			return result[i].SourceID < result[j].SourceID
		}
		if result[i].TargetID != result[j].TargetID {
			return result[i].TargetID < result[j].TargetID
		}
		return result[i].Type < result[j].Type
	})
	return result
}

func (m *mockStore) AreRelated(_ context.Context, a, b string) (bool, error) {
	if b < a {
		a, b = b, a
	}
	_, ok := m.deps[depKey{a, b, model.DepRelatesTo}]
	return ok, nil
}

func (m *mockStore) GetGraph(_ context.Context, limit int) (*model.GraphResponse, error) {
	nodes, _, _ := m.ListElements(context.Background(), model.ElementFilter{Limit: limit})
	if nodes == nil {
		nodes = []*model.Element{}
	}
	edges := []*model.GraphEdge{}
	for _, d := range m.deps {
		edges = append(edges, &model.GraphEdge{
			Source:   d.SourceID,
			Target:   d.TargetID,
			Type:     string(d.Type),
			Category: d.Type.Category(),
		})
	}
	stats, _ := m.GetStats(context.Background())
	return &model.GraphResponse{Nodes: nodes, Edges: edges, Stats: stats}, nil
}

func (m *mockStore) GetStats(_ context.Context) (*model.GraphStats, error) {
	stats := &model.GraphStats{}
	for _, el := range m.elements {
		switch el.Status {
		case model.StatusOpen:
			stats.TotalOpen++
		case model.StatusInProgress:
			stats.TotalInProgress++
		case model.StatusCompleted:
			stats.TotalCompleted++
		case model.StatusCancelled:
			stats.TotalCancelled++
		}
	}
	return stats, nil
}

func (m *mockStore) RecordEvent(_ context.Context, event *model.Event) error {
	event.ID = int64(len(m.events) + 1)
	m.events = append(m.events, event)
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, elementID string) ([]*model.Event, error) {
	var result []*model.Event
	for _, e := range m.events {
		if e.ElementID == elementID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
