// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"testing"
	"time"

	"github.com/hexya-erp/quickboard/src/models/fieldtype"
	"github.com/hexya-erp/quickboard/src/tools/exceptions"
	. "github.com/smartystreets/goconvey/convey"
)

func saleOrderEntity() *Entity {
	return NewEntity("sale.order",
		&Field{Name: "id", Type: fieldtype.Integer, Stored: true},
		&Field{Name: "amount_total", Type: fieldtype.Monetary, Stored: true, Description: "Total"},
		&Field{Name: "state", Type: fieldtype.Selection, Stored: true},
		&Field{Name: "partner_id", Type: fieldtype.Many2One, Stored: true},
		&Field{Name: "date_order", Type: fieldtype.DateTime, Stored: true},
		&Field{Name: "create_date", Type: fieldtype.DateTime, Stored: true},
		&Field{Name: "display_name", Type: fieldtype.Char, Stored: false},
	)
}

// resetTestDB creates the schema and a sale_order table with a few records
func resetTestDB(ctx context.Context) {
	So(SyncDatabase(ctx, testDB), ShouldBeNil)
	testDB.MustExec("TRUNCATE quickboard_item, ir_model_fields, ir_model RESTART IDENTITY CASCADE")
	testDB.MustExec("DROP TABLE IF EXISTS sale_order")
	testDB.MustExec(`CREATE TABLE sale_order (
		id serial PRIMARY KEY,
		amount_total numeric,
		state varchar,
		partner_id integer,
		date_order timestamp,
		create_date timestamp
	)`)
	testDB.MustExec(`INSERT INTO sale_order (amount_total, state, partner_id, date_order, create_date) VALUES
		(100.125, 'draft', 1, '2026-01-05 10:00', '2026-01-05 10:00'),
		(200, 'sale', 1, '2026-01-20 10:00', '2026-01-20 10:00'),
		(50.5, 'sale', 2, '2026-02-03 10:00', '2026-02-03 10:00'),
		(10, 'cancel', NULL, '2026-03-01 10:00', '2026-03-01 10:00')`)
}

func TestDBRegistry(t *testing.T) {
	requireDB(t)
	Convey("Testing the database registry", t, func() {
		ctx := context.Background()
		resetTestDB(ctx)
		reg := NewDBRegistry(testDB)
		So(reg.ImportEntities(ctx, []*Entity{saleOrderEntity()}), ShouldBeNil)

		Convey("Imported entities keep their fields order", func() {
			e, ok, err := reg.EntityByName(ctx, "sale.order")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(e.TableName(), ShouldEqual, "sale_order")
			So(fieldNames(e), ShouldResemble,
				[]string{"id", "amount_total", "state", "partner_id", "date_order", "create_date", "display_name"})
			amount, _ := e.Field("amount_total")
			So(amount.Type, ShouldEqual, fieldtype.Monetary)
			So(amount.Description, ShouldEqual, "Total")
			displayName, _ := e.Field("display_name")
			So(displayName.Stored, ShouldBeFalse)

			byID, ok, err := reg.Entity(ctx, e.ID)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(byID.Name, ShouldEqual, "sale.order")

			id, ok, err := reg.FieldID(ctx, e.ID, "state")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			state, _ := e.Field("state")
			So(id, ShouldEqual, state.ID)
		})
		Convey("Unknown lookups are not errors", func() {
			_, ok, err := reg.EntityByName(ctx, "crm.lead")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			_, ok, err = reg.Entity(ctx, 999)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			_, ok, err = reg.FieldID(ctx, 1, "missing")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
		Convey("Importing again keeps field ids", func() {
			before, _, _ := reg.EntityByName(ctx, "sale.order")
			updated := saleOrderEntity()
			updated.Description = "Sales Orders"
			So(reg.ImportEntities(ctx, []*Entity{updated}), ShouldBeNil)
			entities, err := reg.Entities(ctx)
			So(err, ShouldBeNil)
			So(entities, ShouldHaveLength, 1)
			So(entities[0].Description, ShouldEqual, "Sales Orders")
			So(entities[0].Fields(), ShouldResemble, before.Fields())
		})
	})
}

func TestDBItemStore(t *testing.T) {
	requireDB(t)
	Convey("Testing the database item store", t, func() {
		ctx := context.Background()
		resetTestDB(ctx)
		reg := NewDBRegistry(testDB)
		So(reg.ImportEntities(ctx, []*Entity{saleOrderEntity()}), ShouldBeNil)
		e, _, _ := reg.EntityByName(ctx, "sale.order")
		fieldID := func(name string) int64 {
			f, ok := e.Field(name)
			So(ok, ShouldBeTrue)
			return f.ID
		}
		store := NewDBItemStore(testDB, "")
		created, err := store.ReplaceAll(ctx, []*DashboardItem{
			{Name: "sale.order Count", ModelID: e.ID, Icon: "fa-list", Type: ItemBasic, ValueFieldID: fieldID("id"),
				AggregateFunction: AggregateCount, Width: 3, Height: 1, BackgroundColor: "#f0ad4e"},
			{Name: "sale.order Chart", ModelID: e.ID, Icon: "fa-bar-chart", Type: ItemChart, ValueFieldID: fieldID("amount_total"),
				AggregateFunction: AggregateSum, DimensionFieldID: dimension(fieldID("state")), ChartType: ChartBar,
				YPos: 1, Width: 6, Height: 2},
		})
		So(err, ShouldBeNil)
		So(created, ShouldHaveLength, 2)

		Convey("Created items get ids and creation dates", func() {
			So(created[0].ID, ShouldBeGreaterThan, 0)
			So(created[1].ID, ShouldBeGreaterThan, created[0].ID)
			So(created[0].CreateDate.IsZero(), ShouldBeFalse)
			So(created[0].DimensionFieldID, ShouldBeNil)
			So(*created[1].DimensionFieldID, ShouldEqual, fieldID("state"))

			item, ok, err := store.Get(ctx, created[1].ID)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(item.ChartType, ShouldEqual, ChartBar)
			_, ok, err = store.Get(ctx, 99999)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
		Convey("Failed replacements keep the previous items", func() {
			_, err := store.ReplaceAll(ctx, []*DashboardItem{
				{Name: "ok", ModelID: e.ID, Type: ItemBasic, ValueFieldID: fieldID("id")},
				{Name: "broken", ModelID: e.ID, Type: ItemBasic, ValueFieldID: 99999},
			})
			So(err, ShouldNotBeNil)
			_, err = store.ReplaceAll(ctx, []*DashboardItem{{Name: "list", ModelID: e.ID, Type: ItemList, ValueFieldID: fieldID("id")}})
			So(err, ShouldHaveSameTypeAs, exceptions.ValidationError{})
			items, err := store.List(ctx)
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 2)
			So(items[0].ID, ShouldEqual, created[0].ID)
		})
		Convey("Replacing with an empty set clears the dashboard", func() {
			res, err := store.ReplaceAll(ctx, nil)
			So(err, ShouldBeNil)
			So(res, ShouldBeEmpty)
			items, _ := store.List(ctx)
			So(items, ShouldBeEmpty)
		})
		Convey("Layout updates and deletions", func() {
			So(store.UpdateLayout(ctx, []LayoutPosition{{ID: ItemRef(created[0].ID), X: 6, Y: 3, W: 3, H: 1}}), ShouldBeNil)
			items, _ := store.List(ctx)
			So(items[0].ID, ShouldEqual, created[1].ID)
			So(items[1].XPos, ShouldEqual, 6)
			So(items[1].YPos, ShouldEqual, 3)
			So(store.UpdateLayout(ctx, []LayoutPosition{{ID: ItemRef(created[0].ID), X: -6}}), ShouldNotBeNil)

			So(store.Delete(ctx, created[0].ID, 99999), ShouldBeNil)
			So(store.Delete(ctx), ShouldBeNil)
			items, _ = store.List(ctx)
			So(items, ShouldHaveLength, 1)
		})
	})
}

func TestItemData(t *testing.T) {
	requireDB(t)
	Convey("Testing item data", t, func() {
		ctx := context.Background()
		resetTestDB(ctx)
		reg := NewDBRegistry(testDB)
		So(reg.ImportEntities(ctx, []*Entity{saleOrderEntity()}), ShouldBeNil)
		e, _, _ := reg.EntityByName(ctx, "sale.order")
		fieldID := func(name string) int64 {
			f, _ := e.Field(name)
			return f.ID
		}
		store := NewDBItemStore(testDB, "create_date")
		created, err := store.ReplaceAll(ctx, []*DashboardItem{
			{Name: "count", ModelID: e.ID, Type: ItemBasic, ValueFieldID: fieldID("id"), AggregateFunction: AggregateCount},
			{Name: "sum", ModelID: e.ID, Type: ItemBasic, ValueFieldID: fieldID("amount_total"), AggregateFunction: AggregateSum},
			{Name: "avg", ModelID: e.ID, Type: ItemBasic, ValueFieldID: fieldID("amount_total"), AggregateFunction: AggregateAvg},
			{Name: "by state", ModelID: e.ID, Type: ItemChart, ValueFieldID: fieldID("amount_total"),
				AggregateFunction: AggregateSum, DimensionFieldID: dimension(fieldID("state")), ChartType: ChartBar},
			{Name: "by month", ModelID: e.ID, Type: ItemChart, ValueFieldID: fieldID("amount_total"),
				AggregateFunction: AggregateSum, DimensionFieldID: dimension(fieldID("date_order")), ChartType: ChartLine},
			{Name: "top partners", ModelID: e.ID, Type: ItemList, ValueFieldID: fieldID("id"),
				AggregateFunction: AggregateCount, DimensionFieldID: dimension(fieldID("partner_id")), ListRowLimit: 2},
		})
		So(err, ShouldBeNil)
		january := DateRange{
			Start: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
		}

		Convey("Basic items give a single rounded value", func() {
			data, err := store.ItemData(ctx, created[0].ID, DateRange{})
			So(err, ShouldBeNil)
			So(data.Type, ShouldEqual, ItemBasic)
			So(data.Value, ShouldEqual, 4)
			data, _ = store.ItemData(ctx, created[1].ID, DateRange{})
			So(data.Value, ShouldEqual, 360.63)
			data, _ = store.ItemData(ctx, created[2].ID, DateRange{})
			So(data.Value, ShouldEqual, 90.16)
		})
		Convey("Dates filter records on the date field", func() {
			data, err := store.ItemData(ctx, created[0].ID, january)
			So(err, ShouldBeNil)
			So(data.Value, ShouldEqual, 2)
			data, _ = store.ItemData(ctx, created[0].ID, DateRange{Start: january.End})
			So(data.Value, ShouldEqual, 2)
			data, _ = store.ItemData(ctx, created[1].ID, DateRange{Start: time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)})
			So(data.Value, ShouldEqual, 0)
		})
		Convey("Charts are grouped by dimension", func() {
			data, err := store.ItemData(ctx, created[3].ID, DateRange{})
			So(err, ShouldBeNil)
			So(data.Labels, ShouldResemble, []string{"cancel", "draft", "sale"})
			So(data.Values, ShouldResemble, []float64{10, 100.13, 250.5})
		})
		Convey("Date dimensions are truncated to the month", func() {
			data, err := store.ItemData(ctx, created[4].ID, DateRange{})
			So(err, ShouldBeNil)
			So(data.Labels, ShouldResemble, []string{"2026-01-01", "2026-02-01", "2026-03-01"})
			So(data.Values, ShouldResemble, []float64{300.13, 50.5, 10})
		})
		Convey("Lists are ordered by value and limited", func() {
			data, err := store.ItemData(ctx, created[5].ID, DateRange{})
			So(err, ShouldBeNil)
			So(data.Rows, ShouldResemble, []ItemDataRow{{Label: "1", Value: 2}, {Label: "", Value: 1}})
		})
		Convey("Unknown items are validation errors", func() {
			_, err := store.ItemData(ctx, 99999, DateRange{})
			So(err, ShouldHaveSameTypeAs, exceptions.ValidationError{})
		})
	})
}
