// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hexya-erp/quickboard/src/tools/exceptions"
)

// An ItemType is the kind of a dashboard item
type ItemType string

// Dashboard item types
const (
	ItemBasic ItemType = "basic"
	ItemChart ItemType = "chart"
	ItemList  ItemType = "list"
)

// NeedsDimension returns true for item types that group their value by a dimension field
func (it ItemType) NeedsDimension() bool {
	return it == ItemChart || it == ItemList
}

// An AggregateFunction is applied to the value field of an item
type AggregateFunction string

// Aggregate functions
const (
	AggregateCount AggregateFunction = "count"
	AggregateSum   AggregateFunction = "sum"
	AggregateAvg   AggregateFunction = "avg"
)

// A ChartType is the way a chart item is drawn
type ChartType string

// Chart types
const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
)

// A DashboardItem is a tile of the dashboard as stored in the database.
// Fields are referenced by their durable identifiers.
type DashboardItem struct {
	ID                  int64             `db:"id" json:"id"`
	Name                string            `db:"name" json:"name"`
	ModelID             int64             `db:"model_id" json:"model_id"`
	Icon                string            `db:"icon" json:"icon"`
	Type                ItemType          `db:"type" json:"type"`
	ValueFieldID        int64             `db:"value_field_id" json:"value_field_id"`
	AggregateFunction   AggregateFunction `db:"aggregate_function" json:"aggregate_function"`
	XPos                int               `db:"x_pos" json:"x_pos"`
	YPos                int               `db:"y_pos" json:"y_pos"`
	Width               int               `db:"width" json:"width"`
	Height              int               `db:"height" json:"height"`
	TextColor           string            `db:"text_color" json:"text_color,omitempty"`
	BackgroundColor     string            `db:"background_color" json:"background_color,omitempty"`
	DimensionFieldID    *int64            `db:"dimension_field_id" json:"dimension_field_id,omitempty"`
	ChartType           ChartType         `db:"chart_type" json:"chart_type,omitempty"`
	DatetimeGranularity string            `db:"datetime_granularity" json:"datetime_granularity,omitempty"`
	ListRowLimit        int               `db:"list_row_limit" json:"list_row_limit,omitempty"`
	CreateDate          time.Time         `db:"create_date" json:"create_date"`
}

// Validate checks that this item can be stored
func (di *DashboardItem) Validate() error {
	switch di.Type {
	case ItemBasic, ItemChart, ItemList:
	default:
		return exceptions.ValidationError{Message: fmt.Sprintf("Unknown item type '%s' for item '%s'", di.Type, di.Name)}
	}
	if di.Type.NeedsDimension() && di.DimensionFieldID == nil {
		return exceptions.ValidationError{Message: fmt.Sprintf("Item '%s' of type %s requires a dimension field", di.Name, di.Type)}
	}
	if di.XPos < 0 || di.YPos < 0 || di.Width < 0 || di.Height < 0 {
		return exceptions.ValidationError{Message: fmt.Sprintf("Item '%s' has negative coordinates", di.Name)}
	}
	return nil
}

// An ItemRef is the id of a dashboard item as sent by the dashboard client.
//
// Grid widgets carry their id in a DOM attribute, so it is decoded from
// a JSON number as well as from a string holding a number.
type ItemRef int64

// UnmarshalJSON decodes an ItemRef from 12 or "12"
func (r *ItemRef) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %s", data)
	}
	*r = ItemRef(id)
	return nil
}

// A LayoutPosition is the position of an item on the grid, as sent
// by the dashboard client when the user saves the layout.
type LayoutPosition struct {
	ID ItemRef `json:"id"`
	X  int     `json:"x"`
	Y  int     `json:"y"`
	W  int     `json:"w"`
	H  int     `json:"h"`
}

// An ItemStore persists dashboard items
type ItemStore interface {
	// List returns all items ordered by row, then column
	List(ctx context.Context) ([]*DashboardItem, error)
	// Get returns the item with the given id
	Get(ctx context.Context, id int64) (*DashboardItem, bool, error)
	// ReplaceAll deletes all the existing items and creates the given ones
	// as a single operation. It returns the created items with their ids.
	// Nothing is modified if an error is returned.
	ReplaceAll(ctx context.Context, items []*DashboardItem) ([]*DashboardItem, error)
	// Delete removes the items with the given ids. Unknown ids are ignored.
	Delete(ctx context.Context, ids ...int64) error
	// UpdateLayout moves and resizes items. Unknown ids are ignored.
	UpdateLayout(ctx context.Context, positions []LayoutPosition) error
}

// sortItems sorts the given items by row, then column, then id
func sortItems(items []*DashboardItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].YPos != items[j].YPos {
			return items[i].YPos < items[j].YPos
		}
		if items[i].XPos != items[j].XPos {
			return items[i].XPos < items[j].XPos
		}
		return items[i].ID < items[j].ID
	})
}

func validatePositions(positions []LayoutPosition) error {
	for _, p := range positions {
		if p.X < 0 || p.Y < 0 || p.W < 0 || p.H < 0 {
			return exceptions.ValidationError{Message: fmt.Sprintf("Invalid position for item %d", p.ID)}
		}
	}
	return nil
}

// A MemoryItemStore is an ItemStore that keeps items in memory
type MemoryItemStore struct {
	sync.RWMutex
	items  map[int64]*DashboardItem
	nextID int64
}

// NewMemoryItemStore returns a new empty MemoryItemStore
func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{
		items:  make(map[int64]*DashboardItem),
		nextID: 1,
	}
}

// List returns all items ordered by row, then column
func (ms *MemoryItemStore) List(_ context.Context) ([]*DashboardItem, error) {
	ms.RLock()
	defer ms.RUnlock()
	res := make([]*DashboardItem, 0, len(ms.items))
	for _, item := range ms.items {
		c := *item
		res = append(res, &c)
	}
	sortItems(res)
	return res, nil
}

// Get returns the item with the given id
func (ms *MemoryItemStore) Get(_ context.Context, id int64) (*DashboardItem, bool, error) {
	ms.RLock()
	defer ms.RUnlock()
	item, ok := ms.items[id]
	if !ok {
		return nil, false, nil
	}
	c := *item
	return &c, true, nil
}

// ReplaceAll deletes all the existing items and creates the given ones
func (ms *MemoryItemStore) ReplaceAll(_ context.Context, items []*DashboardItem) ([]*DashboardItem, error) {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}
	ms.Lock()
	defer ms.Unlock()
	now := time.Now().UTC()
	newItems := make(map[int64]*DashboardItem, len(items))
	res := make([]*DashboardItem, len(items))
	for i, item := range items {
		c := *item
		c.ID = ms.nextID
		c.CreateDate = now
		ms.nextID++
		newItems[c.ID] = &c
		stored := c
		res[i] = &stored
	}
	ms.items = newItems
	return res, nil
}

// Delete removes the items with the given ids
func (ms *MemoryItemStore) Delete(_ context.Context, ids ...int64) error {
	ms.Lock()
	defer ms.Unlock()
	for _, id := range ids {
		delete(ms.items, id)
	}
	return nil
}

// UpdateLayout moves and resizes items
func (ms *MemoryItemStore) UpdateLayout(_ context.Context, positions []LayoutPosition) error {
	if err := validatePositions(positions); err != nil {
		return err
	}
	ms.Lock()
	defer ms.Unlock()
	for _, p := range positions {
		item, ok := ms.items[int64(p.ID)]
		if !ok {
			continue
		}
		item.XPos, item.YPos, item.Width, item.Height = p.X, p.Y, p.W, p.H
	}
	return nil
}

var _ ItemStore = new(MemoryItemStore)
