// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package quickboard

import "github.com/hexya-erp/quickboard/src/models"

// GridColumns is the width of the dashboard grid
const GridColumns = 12

// Grid dimensions of generated widgets
const (
	basicsPerRow = 4
	basicWidth   = 3
	basicHeight  = 1
	othersPerRow = 2
	otherWidth   = 6
	otherHeight  = 2
)

// A PlacedWidget is a Widget with its position and size on the grid
type PlacedWidget struct {
	Widget
	X      int
	Y      int
	Width  int
	Height int
}

// LayoutOptions are the options of the layout engine
type LayoutOptions struct {
	// ByAI is accepted for compatibility with the dashboard client.
	// It has no effect: the grid layout is always used.
	ByAI bool
}

// Arrange places the given widgets on the grid.
//
// Basic widgets come first, four per row, each 3 columns wide and 1 row high.
// Other widgets follow on the next free row, two per row, each 6 columns wide
// and 2 rows high. The relative order of widgets of each group is kept.
func Arrange(widgets []Widget, opts LayoutOptions) []PlacedWidget {
	if opts.ByAI {
		log.Debug("AI layout requested, using grid layout")
	}
	var basics, others []Widget
	for _, w := range widgets {
		if w.Type == models.ItemBasic {
			basics = append(basics, w)
			continue
		}
		others = append(others, w)
	}

	res := make([]PlacedWidget, 0, len(widgets))
	for i, w := range basics {
		res = append(res, PlacedWidget{
			Widget: w,
			X:      (i % basicsPerRow) * basicWidth,
			Y:      i / basicsPerRow,
			Width:  basicWidth,
			Height: basicHeight,
		})
	}
	startRow := (len(basics) + basicsPerRow - 1) / basicsPerRow
	for j, w := range others {
		res = append(res, PlacedWidget{
			Widget: w,
			X:      (j % othersPerRow) * otherWidth,
			Y:      startRow + (j/othersPerRow)*otherHeight,
			Width:  otherWidth,
			Height: otherHeight,
		})
	}
	return res
}
