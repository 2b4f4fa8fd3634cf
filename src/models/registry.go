// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"fmt"
	"sync"

	"github.com/hexya-erp/quickboard/src/tools/logging"
)

var log logging.Logger

// A Registry gives access to the metadata of the entities of the database.
//
// Lookups of unknown entities or fields return found = false and a nil
// error. An error is only returned when the registry itself fails.
type Registry interface {
	// Entity returns the entity with the given id
	Entity(ctx context.Context, id int64) (*Entity, bool, error)
	// EntityByName returns the entity with the given name (e.g. 'sale.order')
	EntityByName(ctx context.Context, name string) (*Entity, bool, error)
	// FieldID returns the durable identifier of the given field of the given entity
	FieldID(ctx context.Context, modelID int64, fieldName string) (int64, bool, error)
	// Entities returns all the entities of this registry, always in the
	// same order. MemoryRegistry keeps the registration order.
	Entities(ctx context.Context) ([]*Entity, error)
}

// A MemoryRegistry is a Registry whose entities are declared in code
// or loaded from a models file.
type MemoryRegistry struct {
	sync.RWMutex
	byID        map[int64]*Entity
	byName      map[string]*Entity
	order       []int64
	fieldIDs    map[int64]bool
	nextModelID int64
	nextFieldID int64
}

// NewMemoryRegistry returns a new empty MemoryRegistry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byID:        make(map[int64]*Entity),
		byName:      make(map[string]*Entity),
		fieldIDs:    make(map[int64]bool),
		nextModelID: 1,
		nextFieldID: 1,
	}
}

// Add registers the given entity in this registry.
//
// Entities and fields with a zero ID are given a new one.
// It returns an error if an entity with the same name or ID exists, or
// if a field ID is already used, and the registry is left unchanged.
func (mr *MemoryRegistry) Add(e *Entity) error {
	mr.Lock()
	defer mr.Unlock()
	if _, exists := mr.byName[e.Name]; exists {
		return fmt.Errorf("entity %s is already registered", e.Name)
	}
	if _, exists := mr.byID[e.ID]; e.ID != 0 && exists {
		return fmt.Errorf("entity id %d is already registered", e.ID)
	}
	given := make(map[int64]bool)
	for _, f := range e.fields {
		if f.ID == 0 {
			continue
		}
		if mr.fieldIDs[f.ID] || given[f.ID] {
			return fmt.Errorf("field id %d of %s.%s is already used", f.ID, e.Name, f.Name)
		}
		given[f.ID] = true
	}
	if e.ID == 0 {
		e.ID = mr.nextModelID
	}
	if e.ID >= mr.nextModelID {
		mr.nextModelID = e.ID + 1
	}
	for _, f := range e.fields {
		if f.ID >= mr.nextFieldID {
			mr.nextFieldID = f.ID + 1
		}
	}
	for _, f := range e.fields {
		if f.ID == 0 {
			f.ID = mr.nextFieldID
			mr.nextFieldID++
		}
		mr.fieldIDs[f.ID] = true
	}
	mr.byID[e.ID] = e
	mr.byName[e.Name] = e
	mr.order = append(mr.order, e.ID)
	return nil
}

// MustAdd is the same as Add but panics in case of error
func (mr *MemoryRegistry) MustAdd(entities ...*Entity) {
	for _, e := range entities {
		if err := mr.Add(e); err != nil {
			log.Panic("Unable to register entity", "entity", e.Name, "error", err)
		}
	}
}

// Entity returns the entity with the given id
func (mr *MemoryRegistry) Entity(_ context.Context, id int64) (*Entity, bool, error) {
	mr.RLock()
	defer mr.RUnlock()
	e, ok := mr.byID[id]
	return e, ok, nil
}

// EntityByName returns the entity with the given name
func (mr *MemoryRegistry) EntityByName(_ context.Context, name string) (*Entity, bool, error) {
	mr.RLock()
	defer mr.RUnlock()
	e, ok := mr.byName[name]
	return e, ok, nil
}

// FieldID returns the durable identifier of the given field of the given entity
func (mr *MemoryRegistry) FieldID(_ context.Context, modelID int64, fieldName string) (int64, bool, error) {
	mr.RLock()
	defer mr.RUnlock()
	e, ok := mr.byID[modelID]
	if !ok {
		return 0, false, nil
	}
	f, ok := e.Field(fieldName)
	if !ok {
		return 0, false, nil
	}
	return f.ID, true, nil
}

// Entities returns all the entities of this registry in registration order
func (mr *MemoryRegistry) Entities(_ context.Context) ([]*Entity, error) {
	mr.RLock()
	defer mr.RUnlock()
	res := make([]*Entity, len(mr.order))
	for i, id := range mr.order {
		res[i] = mr.byID[id]
	}
	return res, nil
}

var _ Registry = new(MemoryRegistry)

func init() {
	log = logging.GetLogger("models")
}
