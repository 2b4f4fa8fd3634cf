// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package logging

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hexya-erp/quickboard/src/tools/exceptions"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	Convey("Testing loggers", t, func() {
		Convey("Module loggers can be used before initialization", func() {
			l := GetLogger("test").New("key", "value")
			So(func() { l.Info("message", "a", 1) }, ShouldNotPanic)
			So(func() { l.Debug("message") }, ShouldNotPanic)
			So(l.Sync(), ShouldNotBeNil)
		})
		Convey("Panic logs then panics", func() {
			So(func() { GetLogger("test").Panic("bad things", "reason", "test") }, ShouldPanic)
		})
		Convey("LogPanicData returns a UserError", func() {
			err := LogPanicData("unexpected")
			ue, ok := err.(exceptions.UserError)
			So(ok, ShouldBeTrue)
			So(ue.Message, ShouldEqual, "unexpected")
			So(ue.Debug, ShouldContainSubstring, "unexpected")
		})
		Convey("LogForGin lets requests through", func() {
			gin.SetMode(gin.TestMode)
			engine := gin.New()
			engine.Use(LogForGin(GetLogger("http")))
			engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			engine.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldEqual, "pong")
		})
		Convey("Child loggers can be first used concurrently", func() {
			core, logs := observer.New(zap.DebugLevel)
			saved := log.zap.Load()
			log.zap.Store(zap.New(core).Sugar())
			defer log.zap.Store(saved)

			l := GetLogger("concurrent")
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					l.Info("message", "goroutine", i)
				}(i)
			}
			wg.Wait()
			So(logs.Len(), ShouldEqual, 20)
			for _, entry := range logs.All() {
				So(entry.ContextMap()["module"], ShouldEqual, "concurrent")
			}
		})
		Convey("Child loggers bind to the root logger once initialized", func() {
			core, logs := observer.New(zap.DebugLevel)
			saved := log.zap.Load()
			log.zap.Store(zap.New(core).Sugar())
			defer log.zap.Store(saved)

			gin.SetMode(gin.TestMode)
			engine := gin.New()
			engine.Use(LogForGin(GetLogger("http")))
			engine.GET("/rpc", func(c *gin.Context) {
				c.Set(rpcIDKey, 7)
				c.Status(http.StatusBadRequest)
			})
			engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rpc", nil))
			entries := logs.FilterMessage("HTTP Error").All()
			So(entries, ShouldHaveLength, 1)
			fields := entries[0].ContextMap()
			So(fields["module"], ShouldEqual, "http")
			So(fields["path"], ShouldEqual, "/rpc")
			So(fields["rpc_id"], ShouldEqual, int64(7))
		})
	})
}
