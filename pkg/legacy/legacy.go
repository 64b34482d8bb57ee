// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package legacy reads per-user INI dashboard files, the format
// written by older releases. Each `[pane]` section declares a pane;
// each `[pane.dashlet]` section a dashlet beneath it. The merge
// engine imports these read-only so existing configurations keep
// working after the switch to database-backed dashboards.
package legacy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// DashletEntry is one dashlet parsed from an INI section.
type DashletEntry struct {
	Name     string
	Title    string
	URL      string
	Disabled bool
}

// PaneEntry is one pane parsed from an INI section, in file order.
type PaneEntry struct {
	Name     string
	Title    string
	Disabled bool
	Dashlets []DashletEntry
}

// ListConfigFilesForUser returns the user's dashboard INI files
// beneath baseDir, sorted by path. Missing user directories are not
// an error: the user simply has no legacy dashboards.
func ListConfigFilesForUser(baseDir, user string) ([]string, error) {
	dir := filepath.Join(baseDir, user)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read legacy config directory %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".ini") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Load parses one INI dashboard file into pane entries, preserving
// section order. Dashlet sections without a matching pane section are
// skipped; the caller decides whether that is worth a warning.
func Load(path string) ([]PaneEntry, error) {
	opts := ini.LoadOptions{
		// Older writers quoted titles and used `.` in section names;
		// only the first dot separates pane from dashlet.
		IgnoreInlineComment: true,
	}
	file, err := ini.LoadSources(opts, path)
	if err != nil {
		return nil, fmt.Errorf("parse legacy dashboard file %q: %w", path, err)
	}

	var panes []PaneEntry
	index := make(map[string]int)
	for _, section := range file.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			continue
		}

		paneName, dashletName, isDashlet := strings.Cut(name, ".")
		if paneName == "" {
			continue
		}

		if !isDashlet {
			if _, seen := index[paneName]; seen {
				continue
			}
			index[paneName] = len(panes)
			panes = append(panes, PaneEntry{
				Name:     paneName,
				Title:    titleOf(section, paneName),
				Disabled: section.Key("disabled").MustBool(false),
			})
			continue
		}

		i, ok := index[paneName]
		if !ok {
			continue
		}
		panes[i].Dashlets = append(panes[i].Dashlets, DashletEntry{
			Name:     dashletName,
			Title:    titleOf(section, dashletName),
			URL:      section.Key("url").String(),
			Disabled: section.Key("disabled").MustBool(false),
		})
	}
	return panes, nil
}

func titleOf(section *ini.Section, fallback string) string {
	if title := section.Key("title").String(); title != "" {
		return title
	}
	return fallback
}
