// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package main

import (
	"os"

	"github.com/hexya-erp/quickboard/cmd"
)

func main() {
	if err := cmd.QuickboardCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
