// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/hexya-erp/quickboard/src/tools/exceptions"
)

// rpcIDKey is the context key of the JSON-RPC request id
const rpcIDKey = "rpc_id"

// The Context allows to pass data across controller layers
// and middlewares.
type Context struct {
	*gin.Context
}

// RPC serializes the given struct as JSON-RPC into the response body.
//
// If err is given and not nil, a JSON-RPC error is sent instead, with
// err converted to a UserError.
func (c *Context) RPC(code int, obj interface{}, err ...error) {
	id, ok := c.Get(rpcIDKey)
	if !ok {
		var req RequestRPC
		if err2 := c.readRPC(&req); err2 != nil {
			c.AbortWithError(http.StatusBadRequest, err2)
			return
		}
		id = req.ID
	}
	if len(err) > 0 && err[0] != nil {
		userError := exceptions.ToUserError(err[0])
		respErr := ResponseError{
			JsonRPC: "2.0",
			ID:      id.(int64),
			Error: JSONRPCError{
				Code:    code,
				Message: "Quickboard Server Error",
				Data: JSONRPCErrorData{
					Arguments:     []string{userError.Message},
					ExceptionType: "user_error",
					Debug:         userError.Debug,
				},
			},
		}
		c.JSON(code, respErr)
		return
	}
	resp := ResponseRPC{
		JsonRPC: "2.0",
		ID:      id.(int64),
		Result:  obj,
	}
	c.JSON(code, resp)
}

// BindRPCParams binds the RPC parameters to the given data object.
//
// If the body is not a JSON-RPC request or if its params do not match data,
// a JSON-RPC error is sent with a 400 status, the request is aborted and
// the error is returned.
func (c *Context) BindRPCParams(data interface{}) error {
	var req RequestRPC
	if err := c.readRPC(&req); err != nil {
		c.Set(rpcIDKey, int64(0))
		c.abortRPC(fmt.Sprintf("Invalid JSON-RPC request: %s", err))
		return err
	}
	c.Set(rpcIDKey, req.ID)
	params := bytes.TrimSpace(req.Params)
	if len(params) == 0 || bytes.Equal(params, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(params, data); err != nil {
		c.abortRPC(fmt.Sprintf("Invalid parameters: %s", err))
		return err
	}
	return nil
}

// abortRPC sends a JSON-RPC validation error with the given message
// and aborts the request.
func (c *Context) abortRPC(msg string) {
	c.RPC(http.StatusBadRequest, nil, exceptions.ValidationError{Message: msg})
	c.Abort()
}

// readRPC decodes the request body as a RequestRPC.
func (c *Context) readRPC(req *RequestRPC) error {
	return json.NewDecoder(c.Request.Body).Decode(req)
}

// Session returns the current Session instance
func (c *Context) Session() sessions.Session {
	return sessions.Default(c.Context)
}
