// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package quickboard

import (
	"context"

	"github.com/hexya-erp/quickboard/src/models"
	"github.com/hexya-erp/quickboard/src/tools/exceptions"
	"github.com/hexya-erp/quickboard/src/tools/logging"
	"github.com/oklog/ulid/v2"
)

var log logging.Logger

// Notification sent after each successful generation
const (
	Channel      = "quickboard"
	EventUpdated = "quickboard_updated"
)

const generationErrorMessage = "Unable to generate quickboard. Please check logs."

// A Notifier publishes events to the listeners of a channel.
// Delivery is not acknowledged.
type Notifier interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// An Event is the payload published on Channel after a generation
type Event struct {
	Type  string `json:"type"`
	Run   string `json:"run"`
	Count int    `json:"count"`
}

// A Request holds the parameters of a generation
type Request struct {
	ModelIDs   []int64
	LayoutByAI bool
}

// A Result is returned by a successful generation
type Result struct {
	// Run identifies this generation in logs and notifications
	Run   string
	Count int
	Items []*models.DashboardItem
}

// A Generator creates dashboard items from the metadata of models
type Generator struct {
	registry models.Registry
	store    models.ItemStore
	notifier Notifier
}

// NewGenerator returns a Generator reading metadata from registry and writing
// items to store. notifier may be nil, in which case no event is published.
func NewGenerator(registry models.Registry, store models.ItemStore, notifier Notifier) *Generator {
	return &Generator{
		registry: registry,
		store:    store,
		notifier: notifier,
	}
}

// Generate replaces all the dashboard items with the items generated
// for the models of the given request.
//
// Unknown models and widgets referencing unknown fields are skipped.
// Any other failure returns a GenerationError and leaves the existing
// items untouched.
func (g *Generator) Generate(ctx context.Context, req Request) (res *Result, err error) {
	if len(req.ModelIDs) == 0 {
		return nil, exceptions.ValidationError{Message: "Please select at least one model to generate the quickboard"}
	}
	run := ulid.Make().String()
	rLog := log.New("run", run)
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = exceptions.GenerationError{Message: generationErrorMessage, Cause: logging.LogPanicData(r)}
		}
	}()

	widgets, err := g.synthesizeAll(ctx, rLog, req.ModelIDs)
	if err != nil {
		rLog.Error("Error generating quickboard", "error", err)
		return nil, exceptions.GenerationError{Message: generationErrorMessage, Cause: err}
	}
	placed := Arrange(widgets, LayoutOptions{ByAI: req.LayoutByAI})
	items, err := g.resolve(ctx, rLog, placed)
	if err != nil {
		rLog.Error("Error generating quickboard", "error", err)
		return nil, exceptions.GenerationError{Message: generationErrorMessage, Cause: err}
	}
	created, err := g.store.ReplaceAll(ctx, items)
	if err != nil {
		rLog.Error("Error storing quickboard items", "error", err)
		return nil, exceptions.GenerationError{Message: generationErrorMessage, Cause: err}
	}
	rLog.Info("Quickboard generated", "models", len(req.ModelIDs), "widgets", len(widgets), "items", len(created))

	g.notify(ctx, rLog, Event{Type: EventUpdated, Run: run, Count: len(created)})
	return &Result{Run: run, Count: len(created), Items: created}, nil
}

// synthesizeAll returns the widgets of all the given models, in the given order.
// Duplicate and unknown ids are skipped.
func (g *Generator) synthesizeAll(ctx context.Context, rLog logging.Logger, modelIDs []int64) ([]Widget, error) {
	var widgets []Widget
	seen := make(map[int64]bool)
	for _, id := range modelIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		entity, ok, err := g.registry.Entity(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			rLog.Warn("Skipping unknown model", "model_id", id)
			continue
		}
		modelWidgets := Synthesize(entity, Classify(entity))
		rLog.Debug("Widgets synthesized", "model", entity.Name, "count", len(modelWidgets))
		widgets = append(widgets, modelWidgets...)
	}
	return widgets, nil
}

// resolve converts the given placed widgets into dashboard items, replacing
// model and field names by their ids. Widgets that cannot be resolved are skipped.
func (g *Generator) resolve(ctx context.Context, rLog logging.Logger, placed []PlacedWidget) ([]*models.DashboardItem, error) {
	modelIDs := make(map[string]int64)
	items := make([]*models.DashboardItem, 0, len(placed))
	for _, pw := range placed {
		modelID, ok := modelIDs[pw.Entity]
		if !ok {
			entity, found, err := g.registry.EntityByName(ctx, pw.Entity)
			if err != nil {
				return nil, err
			}
			if !found {
				rLog.Warn("Skipping widget of unknown model", "widget", pw.Name, "model", pw.Entity)
				continue
			}
			modelID = entity.ID
			modelIDs[pw.Entity] = modelID
		}
		valueFieldID, found, err := g.registry.FieldID(ctx, modelID, pw.ValueField)
		if err != nil {
			return nil, err
		}
		if !found {
			rLog.Warn("Skipping widget with unknown value field", "widget", pw.Name, "field", pw.ValueField)
			continue
		}
		item := &models.DashboardItem{
			Name:              pw.Name,
			ModelID:           modelID,
			Icon:              pw.Icon,
			Type:              pw.Type,
			ValueFieldID:      valueFieldID,
			AggregateFunction: pw.AggregateFunction,
			XPos:              pw.X,
			YPos:              pw.Y,
			Width:             pw.Width,
			Height:            pw.Height,
		}
		if item.Icon == "" {
			item.Icon = "fa-square"
		}
		if item.AggregateFunction == "" {
			item.AggregateFunction = models.AggregateCount
		}
		switch pw.Type {
		case models.ItemBasic:
			item.TextColor = pw.TextColor
			item.BackgroundColor = pw.BackgroundColor
		case models.ItemChart, models.ItemList:
			if pw.DimensionField == "" {
				rLog.Warn("Skipping widget without dimension field", "widget", pw.Name)
				continue
			}
			dimensionFieldID, found, err := g.registry.FieldID(ctx, modelID, pw.DimensionField)
			if err != nil {
				return nil, err
			}
			if !found {
				rLog.Warn("Skipping widget with unknown dimension field", "widget", pw.Name, "field", pw.DimensionField)
				continue
			}
			item.DimensionFieldID = &dimensionFieldID
			item.DatetimeGranularity = pw.DatetimeGranularity
			if pw.Type == models.ItemChart {
				item.ChartType = pw.ChartType
				if item.ChartType == "" {
					item.ChartType = models.ChartBar
				}
			} else {
				item.ListRowLimit = pw.ListRowLimit
				if item.ListRowLimit == 0 {
					item.ListRowLimit = defaultListRowLimit
				}
			}
		default:
			rLog.Warn("Skipping widget of unknown type", "widget", pw.Name, "type", pw.Type)
			continue
		}
		rLog.Debug("Creating quickboard item", "name", item.Name, "type", item.Type, "x", item.XPos, "y", item.YPos)
		items = append(items, item)
	}
	return items, nil
}

// notify publishes the given event. Errors are logged only.
func (g *Generator) notify(ctx context.Context, rLog logging.Logger, event Event) {
	if g.notifier == nil {
		return
	}
	if err := g.notifier.Publish(ctx, Channel, event); err != nil {
		rLog.Warn("Unable to publish quickboard update", "error", err)
	}
}

func init() {
	log = logging.GetLogger("quickboard")
}
