// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package navigation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// ManifestName is the dashboard manifest file a module ships to
// contribute panes, located at <modules>/<module>/dashboard.yml.
const ManifestName = "dashboard.yml"

// manifest is the on-disk shape of a module's dashboard contribution.
type manifest struct {
	Module string       `yaml:"module"`
	Panes  []SystemPane `yaml:"panes"`
}

// ModuleProvider discovers system panes from module manifests on
// disk. The manifest scan is lazy, cached, and coalesced: concurrent
// first requests trigger exactly one directory walk.
type ModuleProvider struct {
	dir string

	group singleflight.Group

	mu    sync.RWMutex
	cache []SystemPane
	ready bool
}

// NewModuleProvider creates a provider reading manifests beneath dir.
func NewModuleProvider(dir string) *ModuleProvider {
	return &ModuleProvider{dir: dir}
}

// SystemPanes returns the panes of all enabled modules, ordered by
// module name then manifest order.
func (p *ModuleProvider) SystemPanes() ([]SystemPane, error) {
	p.mu.RLock()
	if p.ready {
		defer p.mu.RUnlock()
		return p.cache, nil
	}
	p.mu.RUnlock()

	panes, err, _ := p.group.Do("scan", func() (any, error) {
		panes, err := p.scan()
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cache = panes
		p.ready = true
		p.mu.Unlock()
		return panes, nil
	})
	if err != nil {
		return nil, err
	}
	return panes.([]SystemPane), nil
}

// Invalidate drops the cached pane list so the next request rescans
// the module directory.
func (p *ModuleProvider) Invalidate() {
	p.mu.Lock()
	p.ready = false
	p.cache = nil
	p.mu.Unlock()
}

func (p *ModuleProvider) scan() ([]SystemPane, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read modules directory %q: %w", p.dir, err)
	}

	var modules []string
	for _, e := range entries {
		if e.IsDir() {
			modules = append(modules, e.Name())
		}
	}
	sort.Strings(modules)

	var panes []SystemPane
	for _, module := range modules {
		path := filepath.Join(p.dir, module, ManifestName)
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read manifest %q: %w", path, err)
		}

		var m manifest
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parse manifest %q: %w", path, err)
		}
		if m.Module == "" {
			m.Module = module
		}
		for _, pane := range m.Panes {
			pane.Module = m.Module
			if pane.Label == "" {
				pane.Label = pane.Name
			}
			for i := range pane.Dashlets {
				if pane.Dashlets[i].Label == "" {
					pane.Dashlets[i].Label = pane.Dashlets[i].Name
				}
			}
			panes = append(panes, pane)
		}
	}
	return panes, nil
}

var _ Provider = (*ModuleProvider)(nil)
