// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fcolledani-solari/icingaweb2/pkg/dashboard"
	"github.com/fcolledani-solari/icingaweb2/pkg/navigation"
	"github.com/fcolledani-solari/icingaweb2/pkg/store"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/datatypes"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/handlers"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/routes"
	"github.com/fcolledani-solari/icingaweb2/services/dashboard/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	provider := &navigation.StaticProvider{Panes: []navigation.SystemPane{
		{
			Name:  "overview",
			Label: "Overview",
			Dashlets: []navigation.SystemDashlet{
				{Name: "hosts", Label: "Hosts", URL: "/monitoring/hosts"},
			},
		},
	}}
	engine := services.NewEngine(st, provider, "", nil, nil)

	if err := datatypes.RegisterValidations(); err != nil {
		t.Fatalf("register validations: %v", err)
	}

	router := gin.New()
	routes.SetupRoutes(router, engine, nil)
	return router
}

func doRequest(router *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-Remote-User", user)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDashboardRequiresRemoteUser(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/v1/dashboard", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGetDashboard(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/v1/dashboard", "alice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp datatypes.DashboardResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.ActiveHome != dashboard.DefaultHomeName {
		t.Errorf("expected active home %q, got %q", dashboard.DefaultHomeName, resp.ActiveHome)
	}
	if resp.ActivePane != "overview" {
		t.Errorf("expected active pane overview, got %q", resp.ActivePane)
	}
	if len(resp.Panes) != 1 || resp.Panes[0].Name != "overview" {
		t.Fatalf("unexpected panes: %+v", resp.Panes)
	}
	if len(resp.Panes[0].Dashlets) != 1 || resp.Panes[0].Dashlets[0].URL != "/monitoring/hosts" {
		t.Errorf("unexpected dashlets: %+v", resp.Panes[0].Dashlets)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("expected a request id header")
	}
}

func TestGetDashboardUnknownHome(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/v1/dashboard?home=Nope", "alice", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetDashboardUnknownPaneParam(t *testing.T) {
	router := newTestRouter(t)

	// Selecting an inexistent pane is a caller bug, not a user error.
	w := doRequest(router, http.MethodGet, "/v1/dashboard?pane=missing", "alice", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestCreateDashlet(t *testing.T) {
	router := newTestRouter(t)

	t.Run("valid request", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/dashlets", "alice",
			`{"pane": "mine", "name": "d1", "url": "/d1"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		get := doRequest(router, http.MethodGet, "/v1/dashboard", "alice", "")
		var resp datatypes.DashboardResponse
		if err := json.Unmarshal(get.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		found := false
		for _, p := range resp.Panes {
			if p.Name == "mine" && p.UserWidget {
				found = true
			}
		}
		if !found {
			t.Errorf("created pane missing from dashboard: %+v", resp.Panes)
		}
	})

	t.Run("missing url", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/dashlets", "alice",
			`{"pane": "mine", "name": "d2"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid pane name", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/dashlets", "alice",
			`{"pane": "bad/name", "name": "d3", "url": "/d3"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestRemoveDefaultHomeForbidden(t *testing.T) {
	router := newTestRouter(t)

	// Prime the store so the default home exists.
	doRequest(router, http.MethodGet, "/v1/dashboard", "alice", "")

	w := doRequest(router, http.MethodDelete, "/v1/homes/Default%20Home", "alice", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRemoveSystemPane(t *testing.T) {
	router := newTestRouter(t)
	doRequest(router, http.MethodGet, "/v1/dashboard", "alice", "")

	w := doRequest(router, http.MethodDelete,
		"/v1/homes/Default%20Home/panes/overview", "alice", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	// With the only pane disabled, the dashboard degrades instead of
	// failing.
	get := doRequest(router, http.MethodGet, "/v1/dashboard", "alice", "")
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", get.Code)
	}
	var resp datatypes.DashboardResponse
	if err := json.Unmarshal(get.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ActivePane != "" {
		t.Errorf("expected no active pane, got %q", resp.ActivePane)
	}
	if resp.Degraded == "" {
		t.Error("expected a degraded message")
	}
}

func TestRenamePane(t *testing.T) {
	router := newTestRouter(t)
	doRequest(router, http.MethodGet, "/v1/dashboard", "alice", "")

	w := doRequest(router, http.MethodPost,
		"/v1/homes/Default%20Home/panes/overview/rename", "alice",
		`{"title": "My Overview"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	get := doRequest(router, http.MethodGet, "/v1/dashboard", "alice", "")
	var resp datatypes.DashboardResponse
	if err := json.Unmarshal(get.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Panes) != 1 || resp.Panes[0].Title != "My Overview" {
		t.Errorf("rename not reflected: %+v", resp.Panes)
	}
	if !resp.Panes[0].OverridesSystem {
		t.Error("expected the pane to be marked as overriding the system definition")
	}
}

func TestRemoveUnknownPane(t *testing.T) {
	router := newTestRouter(t)
	doRequest(router, http.MethodGet, "/v1/dashboard", "alice", "")

	w := doRequest(router, http.MethodDelete,
		"/v1/homes/Default%20Home/panes/nope", "alice", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestStickyTabHeader(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/v1/dashlets", "alice",
		`{"pane": "mine", "name": "d1", "url": "/d1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	getWithTab := func(tab string) datatypes.DashboardResponse {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", strings.NewReader(""))
		req.Header.Set("X-Remote-User", "alice")
		req.Header.Set(handlers.StickyTabHeader, tab)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp datatypes.DashboardResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return resp
	}

	t.Run("pins the tab", func(t *testing.T) {
		resp := getWithTab("mine")
		if resp.ActivePane != "mine" {
			t.Errorf("expected active pane mine, got %q", resp.ActivePane)
		}
	})

	t.Run("stale tab falls back", func(t *testing.T) {
		resp := getWithTab("gone")
		if resp.ActivePane != "overview" {
			t.Errorf("expected fallback to overview, got %q", resp.ActivePane)
		}
	})
}

func TestHealthEndpointNeedsNoUser(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
