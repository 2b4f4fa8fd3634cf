// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hexya-erp/quickboard/src/models/fieldtype"
	"github.com/hexya-erp/quickboard/src/tools/exceptions"
	. "github.com/smartystreets/goconvey/convey"
)

func fieldNames(e *Entity) []string {
	var res []string
	for _, f := range e.Fields() {
		res = append(res, f.Name)
	}
	return res
}

func dimension(id int64) *int64 {
	return &id
}

func TestEntity(t *testing.T) {
	Convey("Testing entities", t, func() {
		e := NewEntity("sale.order",
			&Field{Name: "id", Type: fieldtype.Integer, Stored: true},
			&Field{Name: "state", Type: fieldtype.Selection, Stored: true},
		)
		Convey("Fields keep their declaration order", func() {
			e.AddField(&Field{Name: "amount_total", Type: fieldtype.Monetary})
			So(fieldNames(e), ShouldResemble, []string{"id", "state", "amount_total"})
			e.AddField(&Field{Name: "state", Type: fieldtype.Char})
			So(fieldNames(e), ShouldResemble, []string{"id", "state", "amount_total"})
			f, ok := e.Field("state")
			So(ok, ShouldBeTrue)
			So(f.Type, ShouldEqual, fieldtype.Char)
		})
		Convey("Fields returns a copy", func() {
			fields := e.Fields()
			fields[0] = nil
			So(e.Fields()[0], ShouldNotBeNil)
		})
		Convey("Identifier and table name", func() {
			So(e.HasIdentifier(), ShouldBeTrue)
			So(NewEntity("report.view").HasIdentifier(), ShouldBeFalse)
			So(NewEntity("report.view", &Field{Name: "id", Type: fieldtype.Integer}).HasIdentifier(), ShouldBeFalse)
			So(e.TableName(), ShouldEqual, "sale_order")
			e.Table = "sales"
			So(e.TableName(), ShouldEqual, "sales")
		})
	})
}

func TestMemoryRegistry(t *testing.T) {
	Convey("Testing the memory registry", t, func() {
		ctx := context.Background()
		reg := NewMemoryRegistry()
		reg.MustAdd(
			NewEntity("sale.order", &Field{Name: "id", Type: fieldtype.Integer}, &Field{Name: "state", Type: fieldtype.Selection}),
			NewEntity("res.partner", &Field{Name: "id", Type: fieldtype.Integer}),
		)
		Convey("Ids are assigned in registration order", func() {
			so, ok, err := reg.EntityByName(ctx, "sale.order")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(so.ID, ShouldEqual, 1)
			partner, _, _ := reg.Entity(ctx, 2)
			So(partner.Name, ShouldEqual, "res.partner")
			f, _ := partner.Field("id")
			So(f.ID, ShouldEqual, 3)
		})
		Convey("Unknown lookups are not errors", func() {
			_, ok, err := reg.Entity(ctx, 42)
			So(ok, ShouldBeFalse)
			So(err, ShouldBeNil)
			_, ok, err = reg.EntityByName(ctx, "crm.lead")
			So(ok, ShouldBeFalse)
			So(err, ShouldBeNil)
			_, ok, err = reg.FieldID(ctx, 1, "missing")
			So(ok, ShouldBeFalse)
			So(err, ShouldBeNil)
			_, ok, _ = reg.FieldID(ctx, 42, "id")
			So(ok, ShouldBeFalse)
		})
		Convey("Field ids are found by name", func() {
			id, ok, err := reg.FieldID(ctx, 1, "state")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, 2)
		})
		Convey("Given ids are kept and duplicates refused", func() {
			e := NewEntity("crm.lead", &Field{ID: 50, Name: "id", Type: fieldtype.Integer})
			e.ID = 10
			So(reg.Add(e), ShouldBeNil)
			next := NewEntity("crm.stage", &Field{Name: "id", Type: fieldtype.Integer})
			So(reg.Add(next), ShouldBeNil)
			So(next.ID, ShouldEqual, 11)
			f, _ := next.Field("id")
			So(f.ID, ShouldEqual, 51)
			So(reg.Add(NewEntity("sale.order")), ShouldNotBeNil)
			dup := NewEntity("other")
			dup.ID = 10
			So(reg.Add(dup), ShouldNotBeNil)
			So(func() { reg.MustAdd(NewEntity("res.partner")) }, ShouldPanic)
		})
		Convey("Field ids are unique across entities", func() {
			taken := NewEntity("crm.lead", &Field{ID: 2, Name: "id", Type: fieldtype.Integer})
			So(reg.Add(taken), ShouldNotBeNil)
			_, ok, _ := reg.EntityByName(ctx, "crm.lead")
			So(ok, ShouldBeFalse)
			twice := NewEntity("crm.stage",
				&Field{ID: 60, Name: "id", Type: fieldtype.Integer},
				&Field{ID: 60, Name: "name", Type: fieldtype.Char})
			So(reg.Add(twice), ShouldNotBeNil)
			mixed := NewEntity("crm.team",
				&Field{Name: "id", Type: fieldtype.Integer},
				&Field{ID: 4, Name: "name", Type: fieldtype.Char})
			So(reg.Add(mixed), ShouldBeNil)
			id, _ := mixed.Field("id")
			So(id.ID, ShouldEqual, 5)
		})
		Convey("Entities are listed in registration order", func() {
			entities, err := reg.Entities(ctx)
			So(err, ShouldBeNil)
			So(entities, ShouldHaveLength, 2)
			So(entities[0].Name, ShouldEqual, "sale.order")
			So(entities[1].Name, ShouldEqual, "res.partner")
		})
	})
}

func TestLoadRegistry(t *testing.T) {
	Convey("Testing models files", t, func() {
		ctx := context.Background()
		Convey("A valid models file", func() {
			reg, err := LoadRegistry(strings.NewReader(`
models:
  - name: sale.order
    description: Sales Order
    fields:
      - {name: id, type: integer}
      - {name: amount_total, type: monetary, description: Total}
      - {name: tag_ids, type: many2many, stored: false}
  - name: res.partner
    id: 7
    table: partners
    fields:
      - {name: id, type: integer, id: 100}
`))
			So(err, ShouldBeNil)
			so, ok, _ := reg.EntityByName(ctx, "sale.order")
			So(ok, ShouldBeTrue)
			So(so.Description, ShouldEqual, "Sales Order")
			So(fieldNames(so), ShouldResemble, []string{"id", "amount_total", "tag_ids"})
			amount, _ := so.Field("amount_total")
			So(amount.Stored, ShouldBeTrue)
			So(amount.Description, ShouldEqual, "Total")
			tags, _ := so.Field("tag_ids")
			So(tags.Stored, ShouldBeFalse)
			partner, ok, _ := reg.Entity(ctx, 7)
			So(ok, ShouldBeTrue)
			So(partner.TableName(), ShouldEqual, "partners")
			id, _, _ := reg.FieldID(ctx, 7, "id")
			So(id, ShouldEqual, 100)
		})
		Convey("An empty file gives an empty registry", func() {
			reg, err := LoadRegistry(strings.NewReader(""))
			So(err, ShouldBeNil)
			entities, _ := reg.Entities(ctx)
			So(entities, ShouldBeEmpty)
		})
		Convey("Invalid files are refused", func() {
			_, err := LoadRegistry(strings.NewReader("models: [{name: a, fields: [{name: x, type: decimal}]}]"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "decimal")
			_, err = LoadRegistry(strings.NewReader("models: [{description: nameless}]"))
			So(err, ShouldNotBeNil)
			_, err = LoadRegistry(strings.NewReader("models: [{name: a}, {name: a}]"))
			So(err, ShouldNotBeNil)
			_, err = LoadRegistry(strings.NewReader("models: [{name: a, fields: [{name: x, type: char, id: 3}]}, {name: b, fields: [{name: y, type: char, id: 3}]}]"))
			So(err, ShouldNotBeNil)
			_, err = LoadRegistry(strings.NewReader("models: {"))
			So(err, ShouldNotBeNil)
			_, err = LoadRegistryFile("/does/not/exist.yml")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMemoryItemStore(t *testing.T) {
	Convey("Testing the memory item store", t, func() {
		ctx := context.Background()
		store := NewMemoryItemStore()
		items := []*DashboardItem{
			{Name: "chart", Type: ItemChart, ModelID: 1, ValueFieldID: 2, DimensionFieldID: dimension(3), YPos: 1, Width: 6, Height: 2},
			{Name: "count", Type: ItemBasic, ModelID: 1, ValueFieldID: 1, Width: 3, Height: 1},
		}
		created, err := store.ReplaceAll(ctx, items)
		So(err, ShouldBeNil)
		So(created, ShouldHaveLength, 2)
		So(created[0].ID, ShouldEqual, 1)
		So(created[0].CreateDate.IsZero(), ShouldBeFalse)
		So(items[0].ID, ShouldEqual, 0)

		Convey("Items are listed by row then column", func() {
			list, err := store.List(ctx)
			So(err, ShouldBeNil)
			So(list[0].Name, ShouldEqual, "count")
			So(list[1].Name, ShouldEqual, "chart")
		})
		Convey("Returned items are copies", func() {
			item, ok, err := store.Get(ctx, 1)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			item.Name = "changed"
			again, _, _ := store.Get(ctx, 1)
			So(again.Name, ShouldEqual, "chart")
			_, ok, _ = store.Get(ctx, 99)
			So(ok, ShouldBeFalse)
		})
		Convey("Replacing removes previous items and ids keep growing", func() {
			created, err := store.ReplaceAll(ctx, items[1:])
			So(err, ShouldBeNil)
			So(created[0].ID, ShouldEqual, 3)
			list, _ := store.List(ctx)
			So(list, ShouldHaveLength, 1)
		})
		Convey("Invalid items leave the store untouched", func() {
			_, err := store.ReplaceAll(ctx, []*DashboardItem{{Name: "list", Type: ItemList, ValueFieldID: 1}})
			So(err, ShouldHaveSameTypeAs, exceptions.ValidationError{})
			_, err = store.ReplaceAll(ctx, []*DashboardItem{{Name: "pie", Type: ItemType("pie")}})
			So(err, ShouldNotBeNil)
			_, err = store.ReplaceAll(ctx, []*DashboardItem{{Name: "count", Type: ItemBasic, XPos: -1}})
			So(err, ShouldNotBeNil)
			list, _ := store.List(ctx)
			So(list, ShouldHaveLength, 2)
		})
		Convey("Layout updates move known items only", func() {
			So(store.UpdateLayout(ctx, []LayoutPosition{{ID: 2, X: 3, Y: 4, W: 4, H: 2}, {ID: 42, X: 1}}), ShouldBeNil)
			item, _, _ := store.Get(ctx, 2)
			So(item.XPos, ShouldEqual, 3)
			So(item.YPos, ShouldEqual, 4)
			So(item.Width, ShouldEqual, 4)
			So(item.Height, ShouldEqual, 2)
			So(store.UpdateLayout(ctx, []LayoutPosition{{ID: 2, X: -3}}), ShouldHaveSameTypeAs, exceptions.ValidationError{})
		})
		Convey("Deleting items", func() {
			So(store.Delete(ctx, 1, 42), ShouldBeNil)
			list, _ := store.List(ctx)
			So(list, ShouldHaveLength, 1)
			So(list[0].Name, ShouldEqual, "count")
		})
	})
}

func TestLayoutPosition(t *testing.T) {
	Convey("Testing layout positions sent by the client grid", t, func() {
		Convey("Item ids are read from numbers and strings", func() {
			var positions []LayoutPosition
			err := json.Unmarshal([]byte(`[{"id":3,"x":1,"y":2,"w":3,"h":1},{"id":"12","x":0,"y":0,"w":6,"h":2}]`), &positions)
			So(err, ShouldBeNil)
			So(positions, ShouldResemble, []LayoutPosition{{ID: 3, X: 1, Y: 2, W: 3, H: 1}, {ID: 12, W: 6, H: 2}})
		})
		Convey("Non numeric ids are refused", func() {
			var pos LayoutPosition
			So(json.Unmarshal([]byte(`{"id":"abc"}`), &pos), ShouldNotBeNil)
			So(json.Unmarshal([]byte(`{"id":1.5}`), &pos), ShouldNotBeNil)
		})
	})
}
