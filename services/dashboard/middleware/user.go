// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the dashboard
// service.
//
// # Authentication Flow
//
// The service does not authenticate users itself. A fronting web
// layer (reverse proxy with basic auth, SSO agent) authenticates the
// request and passes the identity on in the X-Remote-User header;
// RemoteUser extracts it and stores it in the Gin context for
// downstream handlers. Requests without the header are rejected with
// 401 before any handler runs.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys. Typed constants prevent collisions with other
// context values.
const (
	remoteUserKey = "icingaweb_remote_user"
	requestIDKey  = "icingaweb_request_id"
)

// RemoteUserHeader carries the authenticated username set by the
// fronting web layer.
const RemoteUserHeader = "X-Remote-User"

// RequestIDHeader echoes the per-request correlation id back to the
// client and into the logs.
const RequestIDHeader = "X-Request-Id"

// CurrentUser returns the authenticated username stored by
// RemoteUser, or empty when the request was not authenticated.
func CurrentUser(c *gin.Context) string {
	return c.GetString(remoteUserKey)
}

// RequestID returns the request's correlation id.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RemoteUser creates a middleware that extracts the trusted
// X-Remote-User header. A missing or blank header aborts the request
// with 401: every dashboard operation is owner-scoped and cannot run
// without an identity.
func RemoteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := strings.TrimSpace(c.GetHeader(RemoteUserHeader))
		if user == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + RemoteUserHeader + " header",
			})
			return
		}

		c.Set(remoteUserKey, user)
		c.Next()
	}
}

// WithRequestID creates a middleware that assigns each request a
// correlation id, honoring one supplied by the fronting layer.
func WithRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
