// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/flosch/pongo2"
	"github.com/hexya-erp/quickboard/src/bus"
	"github.com/hexya-erp/quickboard/src/models"
	"github.com/hexya-erp/quickboard/src/quickboard"
	"github.com/hexya-erp/quickboard/src/server"
	"github.com/hexya-erp/quickboard/src/templates"
	"github.com/hexya-erp/quickboard/src/tools/exceptions"
)

const (
	dateFormat          = "2006-01-02"
	sessionStartDateKey = "quickboard_start_date"
	sessionEndDateKey   = "quickboard_end_date"
)

// now returns the current time. It is a variable for tests.
var now = time.Now

// Services are the collaborators of the quickboard controllers
type Services struct {
	Registry  models.Registry
	Store     models.ItemStore
	Generator *quickboard.Generator
	// Data may be nil when no database is configured
	Data models.ItemDataSource
	// Bus may be nil, in which case the events route is not available
	Bus *bus.Bus
}

type generateParams struct {
	ModelIDs   []int64 `json:"model_ids"`
	LayoutByAI bool    `json:"layout_by_ai"`
}

type generateResult struct {
	Run   string `json:"run"`
	Count int    `json:"count"`
}

type itemParams struct {
	ItemID    int64  `json:"item_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type layoutParams struct {
	Layout []models.LayoutPosition `json:"layout"`
}

type deleteParams struct {
	IDs []int64 `json:"ids"`
}

// An itemDefinition is a dashboard item with the names of the model and
// fields it references, as needed by the dashboard client.
type itemDefinition struct {
	*models.DashboardItem
	Model          string `json:"model"`
	ValueField     string `json:"value_field"`
	DimensionField string `json:"dimension_field,omitempty"`
}

// registerQuickboard adds the quickboard controllers to the given group
func registerQuickboard(root *Group, svc *Services) {
	grp := root.AddGroup("/quickboard")
	grp.AddMiddleWare(noStore)
	grp.AddController(http.MethodGet, "", svc.overview)
	grp.AddController(http.MethodPost, "/generate", svc.generate)
	grp.AddController(http.MethodPost, "/item_defs", svc.itemDefs)
	grp.AddController(http.MethodPost, "/item", svc.item)
	grp.AddController(http.MethodPost, "/save_layout", svc.saveLayout)
	grp.AddController(http.MethodPost, "/delete", svc.delete)
	if svc.Bus != nil {
		grp.AddController(http.MethodGet, "/events", svc.events)
	}
}

// noStore prevents clients and proxies from caching dashboard responses,
// which change with every generation.
func noStore(c *server.Context) {
	c.Header("Cache-Control", "no-store")
	c.Next()
}

// generate replaces the dashboard items by the ones generated for the given models
func (svc *Services) generate(c *server.Context) {
	var params generateParams
	if err := c.BindRPCParams(&params); err != nil {
		return
	}
	res, err := svc.Generator.Generate(c.Request.Context(), quickboard.Request{
		ModelIDs:   params.ModelIDs,
		LayoutByAI: params.LayoutByAI,
	})
	if err != nil {
		c.RPC(http.StatusOK, nil, err)
		return
	}
	c.RPC(http.StatusOK, generateResult{Run: res.Run, Count: res.Count})
}

// itemDefs returns the definitions of all the dashboard items, by id
func (svc *Services) itemDefs(c *server.Context) {
	if err := c.BindRPCParams(&struct{}{}); err != nil {
		return
	}
	defs, err := svc.itemDefinitions(c.Request.Context())
	if err != nil {
		c.RPC(http.StatusOK, nil, err)
		return
	}
	c.RPC(http.StatusOK, defs)
}

// itemDefinitions returns the definitions of all the stored items,
// with model and field names resolved from the registry.
func (svc *Services) itemDefinitions(ctx context.Context) (map[string]itemDefinition, error) {
	items, err := svc.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	entities := make(map[int64]*models.Entity)
	res := make(map[string]itemDefinition, len(items))
	for _, item := range items {
		entity, ok := entities[item.ModelID]
		if !ok {
			var found bool
			entity, found, err = svc.Registry.Entity(ctx, item.ModelID)
			if err != nil {
				return nil, err
			}
			if !found {
				log.Warn("Dashboard item references an unknown model", "item", item.ID, "model", item.ModelID)
				continue
			}
			entities[item.ModelID] = entity
		}
		def := itemDefinition{DashboardItem: item, Model: entity.Name}
		if f, ok := entity.FieldByID(item.ValueFieldID); ok {
			def.ValueField = f.Name
		}
		if item.DimensionFieldID != nil {
			if f, ok := entity.FieldByID(*item.DimensionFieldID); ok {
				def.DimensionField = f.Name
			}
		}
		res[fmt.Sprintf("%d", item.ID)] = def
	}
	return res, nil
}

// item returns the data to display in a dashboard item
func (svc *Services) item(c *server.Context) {
	var params itemParams
	if err := c.BindRPCParams(&params); err != nil {
		return
	}
	if svc.Data == nil {
		c.RPC(http.StatusOK, nil, exceptions.UserError{Message: "Item data is only available with a database"})
		return
	}
	dates, err := svc.dateRange(c, params)
	if err != nil {
		c.RPC(http.StatusOK, nil, err)
		return
	}
	data, err := svc.Data.ItemData(c.Request.Context(), params.ItemID, dates)
	if err != nil {
		c.RPC(http.StatusOK, nil, err)
		return
	}
	c.RPC(http.StatusOK, data)
}

// dateRange returns the dates to apply to item data.
//
// Dates given in params are remembered in the session. Missing dates
// are taken from the session, then default to the current month.
func (svc *Services) dateRange(c *server.Context, params itemParams) (models.DateRange, error) {
	sess := c.Session()
	start, end := params.StartDate, params.EndDate
	given := start != "" || end != ""
	if !given {
		start, _ = sess.Get(sessionStartDateKey).(string)
		end, _ = sess.Get(sessionEndDateKey).(string)
	}
	if start == "" && end == "" {
		t := now()
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return models.DateRange{Start: first, End: first.AddDate(0, 1, -1)}, nil
	}
	res, err := parseDateRange(start, end)
	if err != nil {
		return res, err
	}
	if given {
		sess.Set(sessionStartDateKey, start)
		sess.Set(sessionEndDateKey, end)
		if err := sess.Save(); err != nil {
			log.Warn("Unable to save dates in session", "error", err)
		}
	}
	return res, nil
}

// parseDateRange returns the DateRange between the given dates.
// Empty dates leave the corresponding bound open.
func parseDateRange(start, end string) (models.DateRange, error) {
	var (
		res models.DateRange
		err error
	)
	if start != "" {
		if res.Start, err = time.Parse(dateFormat, start); err != nil {
			return res, exceptions.ValidationError{Message: fmt.Sprintf("Invalid start date '%s'", start)}
		}
	}
	if end != "" {
		if res.End, err = time.Parse(dateFormat, end); err != nil {
			return res, exceptions.ValidationError{Message: fmt.Sprintf("Invalid end date '%s'", end)}
		}
	}
	if !res.Start.IsZero() && !res.End.IsZero() && res.End.Before(res.Start) {
		return res, exceptions.ValidationError{Message: "The end date must not be before the start date"}
	}
	return res, nil
}

// saveLayout moves the items to the positions given by the client grid
func (svc *Services) saveLayout(c *server.Context) {
	var params layoutParams
	if err := c.BindRPCParams(&params); err != nil {
		return
	}
	if err := svc.Store.UpdateLayout(c.Request.Context(), params.Layout); err != nil {
		c.RPC(http.StatusOK, nil, err)
		return
	}
	c.RPC(http.StatusOK, true)
}

// delete removes the given items from the dashboard
func (svc *Services) delete(c *server.Context) {
	var params deleteParams
	if err := c.BindRPCParams(&params); err != nil {
		return
	}
	if err := svc.Store.Delete(c.Request.Context(), params.IDs...); err != nil {
		c.RPC(http.StatusOK, nil, err)
		return
	}
	c.RPC(http.StatusOK, true)
}

// events streams the quickboard notifications as server-sent events
func (svc *Services) events(c *server.Context) {
	msgs, cancel := svc.Bus.Subscribe(quickboard.Channel)
	defer cancel()
	log.Debug("Event stream opened", "ip", c.ClientIP(), "listeners", svc.Bus.SubscribersCount(quickboard.Channel))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			name := quickboard.EventUpdated
			if evt, isEvent := msg.Payload.(quickboard.Event); isEvent {
				name = evt.Type
			}
			c.SSEvent(name, msg.Payload)
			c.Writer.Flush()
		}
	}
}

// overview renders the dashboard grid as an HTML page
func (svc *Services) overview(c *server.Context) {
	items, err := svc.Store.List(c.Request.Context())
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.Render(http.StatusOK, templates.Registry.Instance("overview.html", pongo2.Context{
		"title":   "Quickboard",
		"columns": quickboard.GridColumns,
		"items":   items,
	}))
}
