package snapshot

import (
	"context"
	"sort"

	"github.com/loomworks/loom/internal/model"
	"github.com/loomworks/loom/internal/store"
)

// mockStore is a minimal in-memory store for snapshot tests.
type mockStore struct {
	elements map[string]*model.Element
	deps     []*model.Dependency
}

func newMockStore() *mockStore {
	return &mockStore{elements: make(map[string]*model.Element)}
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

func (m *mockStore) ListElements(_ context.Context, _ model.ElementFilter) ([]*model.Element, int, error) {
	var result []*model.Element
	for _, el := range m.elements {
		result = append(result, el)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func (m *mockStore) SetElementStatus(_ context.Context, id string, status model.Status, _ string) (*model.Element, error) {
	el, ok := m.elements[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	el.Status = status
	return el, nil
}

func (m *mockStore) DeleteElement(_ context.Context, id string) error {
	delete(m.elements, id)
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
	m.deps = append(m.deps, dep)
	return nil
}

func (m *mockStore) RemoveDependency(_ context.Context, _, _ string, _ model.DependencyType) error {
	return nil
}

func (m *mockStore) GetDependency(_ context.Context, _, _ string, _ model.DependencyType) (*model.Dependency, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) UpdateDependencyMeta(_ context.Context, _ *model.Dependency) error {
	return nil
}

func (m *mockStore) Outgoing(_ context.Context, sourceID string, _ ...model.DependencyType) ([]*model.Dependency, error) {
	var result []*model.Dependency
	for _, d := range m.deps {
		if d.SourceID == sourceID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockStore) Incoming(_ context.Context, targetID string, _ ...model.DependencyType) ([]*model.Dependency, error) {
	var result []*model.Dependency
	for _, d := range m.deps {
		if d.TargetID == targetID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockStore) AreRelated(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (m *mockStore) GetGraph(_ context.Context, _ int) (*model.GraphResponse, error) {
	return &model.GraphResponse{Nodes: []*model.Element{}, Edges: []*model.GraphEdge{}, Stats: &model.GraphStats{}}, nil
}

func (m *mockStore) GetStats(_ context.Context) (*model.GraphStats, error) {
	return &model.GraphStats{}, nil
}

func (m *mockStore) RecordEvent(_ context.Context, _ *model.Event) error {
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, _ string) ([]*model.Event, error) {
	return nil, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
