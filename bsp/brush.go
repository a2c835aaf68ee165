// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"slices"
)

// brushClasses are the classnames drawn as brush entities.
var brushClasses = map[string]bool{
	"func_door_rotating": true,
	"func_door":          true,
	"func_illusionary":   true,
	"func_wall":          true,
	"func_breakable":     true,
	"func_button":        true,
}

// IsBrushEntity reports whether e has a model and one of the brush
// classnames.
func IsBrushEntity(e *Entity) bool {
	if _, ok := e.Property("model"); !ok {
		return false
	}
	n, ok := e.Name()
	return ok && brushClasses[n]
}

func (l *loader) postProcess() error {
	m := l.m
	m.BrushEntities = m.BrushEntities[:0]
	m.SpecialEntities = m.SpecialEntities[:0]
	for _, e := range m.Entities {
		if !IsBrushEntity(e) {
			m.SpecialEntities = append(m.SpecialEntities, e)
			continue
		}
		m.BrushEntities = append(m.BrushEntities, e)
		if _, ok := e.Property("origin"); !ok {
			continue
		}
		if err := m.applyOrigin(e); err != nil {
			l.log.Error("Cannot apply brush entity origin", "error", err)
		}
	}
	// Texture render mode entities go first, keeping their order.
	slices.SortStableFunc(m.BrushEntities, func(a, b *Entity) int {
		return renderGroup(a) - renderGroup(b)
	})
	m.makeHulls()
	return nil
}

func renderGroup(e *Entity) int {
	if e.RenderMode() == RenderModeTexture {
		return 0
	}
	return 1
}

func (m *Map) applyOrigin(e *Entity) error {
	o, err := e.Vec3Property("origin")
	if err != nil {
		return err
	}
	n, err := e.ModelIndex()
	if err != nil {
		return err
	}
	if n >= len(m.Models) {
		return formatErrorf(LumpModels.String(), -1, "entity model *%d of %d", n, len(m.Models))
	}
	m.Models[n].Origin = o
	return nil
}
