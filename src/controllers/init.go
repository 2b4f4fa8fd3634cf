// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package controllers

import (
	"github.com/hexya-erp/quickboard/src/server"
	"github.com/hexya-erp/quickboard/src/tools/logging"
)

var log logging.Logger

// BootStrap creates the quickboard routes on the given server.
// This function must be called before starting the http server.
func BootStrap(srv *server.Server, svc *Services) {
	root := NewGroup("/")
	registerQuickboard(root, svc)
	root.createRoutes(srv.Group("/"))
	for _, route := range root.Routes("") {
		log.Debug("Route registered", "route", route)
	}
}

func init() {
	log = logging.GetLogger("controllers")
}
