// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package server

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/hexya-erp/quickboard/src/tools/logging"
	"golang.org/x/crypto/acme/autocert"
)

// SessionCookie is the name of the cookie holding the user session
const SessionCookie = "quickboard-session"

var log logging.Logger

// A Server is the http server of the application
// It is internally a wrapper around a gin.Engine
type Server struct {
	*gin.Engine
}

// New returns a new Server with recovery, session and logging middlewares.
//
// sessionKey is used to authenticate the session cookie. If it is empty,
// a random key is generated and sessions do not survive a restart.
func New(sessionKey string) *Server {
	key := []byte(sessionKey)
	if len(key) == 0 {
		key = make([]byte, 64)
		if _, err := rand.Read(key); err != nil {
			log.Panic("Unable to generate session key", "error", err)
		}
		log.Warn("No session key configured, using a random one")
	}
	srv := &Server{gin.New()}
	srv.Use(gin.Recovery())
	srv.Use(sessions.Sessions(SessionCookie, sessions.NewCookieStore(key)))
	srv.Use(logging.LogForGin(log))
	return srv
}

// Group creates a new router group. You should add all the routes that have common middlewares or the same path prefix.
func (s *Server) Group(relativePath string, handlers ...HandlerFunc) *RouterGroup {
	return &RouterGroup{
		RouterGroup: *s.Engine.Group(relativePath, wrapContextFuncs(handlers...)...),
	}
}

// shutdownTimeout bounds the wait for in-flight requests when stopping
const shutdownTimeout = 10 * time.Second

// Listen describes how the server accepts connections.
//
// When Certificate is set, the server serves HTTPS on Address with the given
// key pair. Otherwise, when Domain is set, it serves HTTPS on port 443 with
// certificates obtained from Letsencrypt and cached in CacheDir, and answers
// ACME challenges on port 80. Else it serves plain HTTP on Address.
type Listen struct {
	Address     string
	Certificate string
	PrivateKey  string
	Domain      string
	CacheDir    string
}

// Mode returns "https", "autotls" or "http" depending on the configuration
func (l Listen) Mode() string {
	switch {
	case l.Certificate != "":
		return "https"
	case l.Domain != "":
		return "autotls"
	default:
		return "http"
	}
}

// ListenAndServe serves requests as configured by l until ctx is done or
// an error happens. On cancellation, in-flight requests are given some time
// to complete and nil is returned.
func (s *Server) ListenAndServe(ctx context.Context, l Listen) error {
	httpSrv := &http.Server{Addr: l.Address, Handler: s}
	var serve func() error
	switch l.Mode() {
	case "https":
		serve = func() error { return httpSrv.ListenAndServeTLS(l.Certificate, l.PrivateKey) }
	case "autotls":
		m := &autocert.Manager{
			Cache:      autocert.DirCache(l.CacheDir),
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(l.Domain),
		}
		challengeSrv := &http.Server{Addr: ":http", Handler: m.HTTPHandler(nil)}
		go func() {
			if err := challengeSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("ACME challenge server stopped", "error", err)
			}
		}()
		defer challengeSrv.Close()
		httpSrv.Addr = ":https"
		httpSrv.TLSConfig = &tls.Config{GetCertificate: m.GetCertificate}
		serve = func() error { return httpSrv.ListenAndServeTLS("", "") }
	default:
		serve = httpSrv.ListenAndServe
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Quickboard is up and running", "mode", l.Mode(), "address", httpSrv.Addr, "domain", l.Domain)
		errChan <- serve()
	}()
	select {
	case err := <-errChan:
		log.Error("HTTP server stopped", "error", err)
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server did not shut down cleanly", "error", err)
		return err
	}
	log.Info("HTTP server stopped")
	return nil
}

// A RequestRPC is the message format expected from a client
type RequestRPC struct {
	JsonRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// A ResponseRPC is the message format sent back to a client
// in case of success
type ResponseRPC struct {
	JsonRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Result  interface{} `json:"result"`
}

// A ResponseError is the message format sent back to a
// client in case of failure
type ResponseError struct {
	JsonRPC string       `json:"jsonrpc"`
	ID      int64        `json:"id"`
	Error   JSONRPCError `json:"error"`
}

// JSONRPCErrorData is the format of the Data field of an Error Response
type JSONRPCErrorData struct {
	Arguments     []string `json:"arguments"`
	ExceptionType string   `json:"exception_type"`
	Debug         string   `json:"debug"`
}

// JSONRPCError is the format of an Error in a ResponseError
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func init() {
	log = logging.GetLogger("server")
	// Set to ReleaseMode now for tests and is overridden later (cmd/server.go)
	gin.SetMode(gin.ReleaseMode)
}
