package config

import (
	"fmt"
	"sync"
	"testing"
)

// mockSection is a test implementation of the Section interface
type mockSection struct {
	id          string
	data        map[string]interface{}
	validateErr error
	setErr      error
}

func (m *mockSection) ID() string                   { return m.id }
func (m *mockSection) Title() string                { return m.id }
func (m *mockSection) Description() string          { return "" }
func (m *mockSection) Data() map[string]interface{} { return m.data }
func (m *mockSection) Validate() error              { return m.validateErr }
func (m *mockSection) Reset()                       { m.data = make(map[string]interface{}) }

func (m *mockSection) SetData(data map[string]interface{}) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data = data
	return nil
}

// mockStore is an in-memory Store
type mockStore struct {
	sections map[string]map[string]interface{}
	loadErr  error
	saveErr  error
	saves    int
}

func newMockStore() *mockStore {
	return &mockStore{sections: make(map[string]map[string]interface{})}
}

func (m *mockStore) Load() error { return m.loadErr }

func (m *mockStore) Save() error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	return nil
}

func (m *mockStore) GetSection(id string) (map[string]interface{}, error) {
	return copySection(m.sections[id]), nil
}

func (m *mockStore) SetSection(id string, data map[string]interface{}) error {
	m.sections[id] = data
	return nil
}

func (m *mockStore) GetAll() (map[string]map[string]interface{}, error) {
	return m.sections, nil
}

func (m *mockStore) SetAll(data map[string]map[string]interface{}) error {
	m.sections = data
	return nil
}

func TestManager_RegisterSection(t *testing.T) {
	manager := NewManager(newMockStore())

	for _, id := range []string{"browser", "server", "extra"} {
		if err := manager.RegisterSection(&mockSection{id: id}); err != nil {
			t.Fatalf("RegisterSection(%s) failed: %v", id, err)
		}
	}
	if err := manager.RegisterSection(&mockSection{id: "browser"}); err == nil {
		t.Error("Expected error for duplicate registration")
	}

	sections := manager.GetSections()
	if len(sections) != 3 {
		t.Fatalf("Expected 3 sections, got %d", len(sections))
	}
	if sections[0].ID() != "browser" || sections[1].ID() != "server" || sections[2].ID() != "extra" {
		t.Error("Sections not in registration order")
	}

	if _, ok := manager.GetSection("missing"); ok {
		t.Error("Should return false for non-existent section")
	}
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("applies stored data", func(t *testing.T) {
		store := newMockStore()
		store.sections["a"] = map[string]interface{}{"key": "value"}

		manager := NewManager(store)
		a := &mockSection{id: "a"}
		b := &mockSection{id: "b", data: map[string]interface{}{"kept": true}}
		manager.RegisterSection(a)
		manager.RegisterSection(b)

		if err := manager.LoadAll(); err != nil {
			t.Fatalf("LoadAll failed: %v", err)
		}
		if a.data["key"] != "value" {
			t.Error("Section data not loaded")
		}
		if b.data["kept"] != true {
			t.Error("Section without stored data should keep its defaults")
		}
	})

	t.Run("store error", func(t *testing.T) {
		store := newMockStore()
		store.loadErr = fmt.Errorf("load error")
		if err := NewManager(store).LoadAll(); err == nil {
			t.Error("Expected error from store")
		}
	})

	t.Run("section error", func(t *testing.T) {
		store := newMockStore()
		store.sections["a"] = map[string]interface{}{"key": 1}
		manager := NewManager(store)
		manager.RegisterSection(&mockSection{id: "a", setErr: fmt.Errorf("bad value")})

		if err := manager.LoadAll(); err == nil {
			t.Error("Expected error from SetData")
		}
	})
}

func TestManager_SaveAll(t *testing.T) {
	t.Run("persists every section", func(t *testing.T) {
		store := newMockStore()
		manager := NewManager(store)
		manager.RegisterSection(&mockSection{id: "a", data: map[string]interface{}{"k1": "v1"}})
		manager.RegisterSection(&mockSection{id: "b", data: map[string]interface{}{"k2": "v2"}})

		if err := manager.SaveAll(); err != nil {
			t.Fatalf("SaveAll failed: %v", err)
		}
		if store.sections["a"]["k1"] != "v1" || store.sections["b"]["k2"] != "v2" {
			t.Error("Sections not saved correctly")
		}
		if store.saves != 1 {
			t.Errorf("Expected one Save, got %d", store.saves)
		}
	})

	t.Run("invalid section blocks the write", func(t *testing.T) {
		store := newMockStore()
		manager := NewManager(store)
		manager.RegisterSection(&mockSection{id: "ok", data: map[string]interface{}{"k": "v"}})
		manager.RegisterSection(&mockSection{id: "bad", validateErr: fmt.Errorf("validation error")})

		if err := manager.SaveAll(); err == nil {
			t.Fatal("Expected validation error")
		}
		if len(store.sections) != 0 || store.saves != 0 {
			t.Error("Nothing should be written when validation fails")
		}
	})

	t.Run("store error", func(t *testing.T) {
		store := newMockStore()
		store.saveErr = fmt.Errorf("save error")
		manager := NewManager(store)
		manager.RegisterSection(&mockSection{id: "a"})

		if err := manager.SaveAll(); err == nil {
			t.Error("Expected error from store")
		}
	})
}

func TestManager_ResetAll(t *testing.T) {
	manager := NewManager(newMockStore())
	a := &mockSection{id: "a", data: map[string]interface{}{"k": "v"}}
	manager.RegisterSection(a)

	manager.ResetAll()
	if len(a.data) != 0 {
		t.Error("Section not reset")
	}
}

func TestManager_ConcurrentRegistration(t *testing.T) {
	manager := NewManager(newMockStore())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			manager.RegisterSection(&mockSection{id: fmt.Sprintf("section%d", i)})
			manager.GetSections()
		}()
	}
	wg.Wait()

	if got := len(manager.GetSections()); got != 10 {
		t.Errorf("Expected 10 sections, got %d", got)
	}
}
