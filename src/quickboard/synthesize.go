// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package quickboard

import (
	"fmt"

	"github.com/hexya-erp/quickboard/src/models"
)

// defaultListRowLimit is the number of rows of generated list widgets
const defaultListRowLimit = 10

// A Widget describes a dashboard item before it is placed on the grid.
// Fields are referenced by name.
type Widget struct {
	Name                string
	Icon                string
	Type                models.ItemType
	Entity              string
	ValueField          string
	AggregateFunction   models.AggregateFunction
	DimensionField      string
	ChartType           models.ChartType
	DatetimeGranularity string
	ListRowLimit        int
	TextColor           string
	BackgroundColor     string
}

// Synthesize returns the widgets generated for the given entity and
// its fields classification. At most five widgets are returned, always
// in the same order: count, sum, average, chart and list.
func Synthesize(entity *models.Entity, classification Classification) []Widget {
	var widgets []Widget
	model := entity.Name

	if entity.HasIdentifier() {
		widgets = append(widgets, Widget{
			Name:              fmt.Sprintf("%s Count", model),
			Icon:              "fa-list",
			Type:              models.ItemBasic,
			Entity:            model,
			ValueField:        models.IdentifierField,
			AggregateFunction: models.AggregateCount,
			TextColor:         "#000000",
			BackgroundColor:   "#f0ad4e",
		})
	}

	numeric := classification.NumericValueFields()
	if len(numeric) > 0 {
		widgets = append(widgets, Widget{
			Name:              fmt.Sprintf("%s %s Sum", model, numeric[0]),
			Icon:              "fa-calculator",
			Type:              models.ItemBasic,
			Entity:            model,
			ValueField:        numeric[0],
			AggregateFunction: models.AggregateSum,
			TextColor:         "#000000",
			BackgroundColor:   "#5bc0de",
		})
	}
	if len(numeric) > 1 {
		widgets = append(widgets, Widget{
			Name:              fmt.Sprintf("%s %s Avg", model, numeric[1]),
			Icon:              "fa-area-chart",
			Type:              models.ItemBasic,
			Entity:            model,
			ValueField:        numeric[1],
			AggregateFunction: models.AggregateAvg,
			TextColor:         "#000000",
			BackgroundColor:   "#5cb85c",
		})
	}

	if len(classification.DimensionFields) == 0 {
		return widgets
	}
	dimension := classification.DimensionFields[0]

	if len(numeric) > 0 {
		chartType := models.ChartBar
		if classification.FieldMap[dimension].IsDateType() {
			chartType = models.ChartLine
		}
		widgets = append(widgets, Widget{
			Name:              fmt.Sprintf("%s Chart", model),
			Icon:              "fa-bar-chart",
			Type:              models.ItemChart,
			Entity:            model,
			ValueField:        numeric[0],
			AggregateFunction: models.AggregateSum,
			DimensionField:    dimension,
			ChartType:         chartType,
		})
	}

	if len(classification.ValueFields) > 0 {
		valueField := classification.ValueFields[0]
		aggregate := models.AggregateCount
		if classification.FieldMap[valueField].IsNumeric() {
			aggregate = models.AggregateSum
		}
		widgets = append(widgets, Widget{
			Name:              fmt.Sprintf("%s Top by %s", model, dimension),
			Icon:              "fa-list-alt",
			Type:              models.ItemList,
			Entity:            model,
			ValueField:        valueField,
			AggregateFunction: aggregate,
			DimensionField:    dimension,
			ListRowLimit:      defaultListRowLimit,
		})
	}
	return widgets
}
