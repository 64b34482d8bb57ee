// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the request and response types of the
// dashboard HTTP API.
package datatypes

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// entityName rejects names that would break path routing or the
// legacy INI section syntax: slashes, brackets and leading/trailing
// whitespace.
func entityName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name != strings.TrimSpace(name) {
		return false
	}
	return !strings.ContainsAny(name, "/[]")
}

// RegisterValidations installs the API's custom validation tags on
// gin's binding validator. Call once at startup.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("entityname", entityName)
}

// CreateDashletRequest creates a dashlet, creating the target home
// and pane on demand.
type CreateDashletRequest struct {
	Home  string `json:"home" binding:"omitempty,entityname"`
	Pane  string `json:"pane" binding:"required,entityname"`
	Name  string `json:"name" binding:"required,entityname"`
	Title string `json:"title"`
	URL   string `json:"url" binding:"required"`
}

// UpdateDashletRequest updates an existing dashlet's title and url.
// Empty fields keep the current value.
type UpdateDashletRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// RenameHomeRequest renames a home.
type RenameHomeRequest struct {
	Name string `json:"name" binding:"required,entityname"`
}

// RenamePaneRequest renames a pane and optionally moves it to
// another home, which is created on demand.
type RenamePaneRequest struct {
	Name       string `json:"name" binding:"omitempty,entityname"`
	Title      string `json:"title"`
	TargetHome string `json:"target_home" binding:"omitempty,entityname"`
}
