// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"hlbsp/math"
	"hlbsp/math/vec"
)

type Entity struct {
	properties map[string]string
	src        []byte
}

// NewEntity parses the key value pairs of a single {...} block. Every
// quoted string is a token, tokens pair up as "key" "value". A trailing key
// without value is dropped.
func NewEntity(p []byte) *Entity {
	e := &Entity{properties: make(map[string]string), src: p}
	var key string
	haveKey := false
	for {
		q := bytes.IndexByte(p, '"')
		if q == -1 {
			break
		}
		p = p[q+1:]
		q = bytes.IndexByte(p, '"')
		if q == -1 {
			break
		}
		tok := string(p[:q])
		p = p[q+1:]
		if !haveKey {
			key = tok
			haveKey = true
			continue
		}
		e.properties[key] = tok
		haveKey = false
	}
	return e
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

func (e *Entity) Name() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

// Source is the raw text of the entity including its braces.
func (e *Entity) Source() []byte {
	return e.src
}

func (e *Entity) PropertyNames() []string {
	n := []string{}
	for k := range e.properties {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

// Vec3Property parses a property of exactly three space separated floats,
// like "origin".
func (e *Entity) Vec3Property(name string) (vec.Vec3, error) {
	v, ok := e.properties[name]
	if !ok {
		return vec.Vec3{}, errors.Wrapf(ErrMalformedEntity, "no %s", name)
	}
	f := strings.Fields(v)
	if len(f) != 3 {
		return vec.Vec3{}, errors.Wrapf(ErrMalformedEntity, "%s %q has %d components", name, v, len(f))
	}
	var r vec.Vec3
	for i, s := range f {
		x, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return vec.Vec3{}, errors.Wrapf(ErrMalformedEntity, "%s %q: %v", name, v, err)
		}
		r[i] = float32(x)
	}
	return r, nil
}

// ModelIndex returns N of a brush entity's "*N" model property.
func (e *Entity) ModelIndex() (int, error) {
	v, ok := e.properties["model"]
	if !ok {
		return 0, errors.Wrap(ErrMalformedEntity, "no model")
	}
	if !strings.HasPrefix(v, "*") {
		return 0, errors.Wrapf(ErrMalformedEntity, "model %q is not a brush model", v)
	}
	n, err := strconv.Atoi(v[1:])
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrMalformedEntity, "model %q", v)
	}
	return n, nil
}

func (e *Entity) intProperty(name string) (int, bool) {
	v, ok := e.properties[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// RenderMode defaults to RenderModeNormal.
func (e *Entity) RenderMode() RenderMode {
	n, ok := e.intProperty("rendermode")
	if !ok || n < int(RenderModeNormal) || n > int(RenderModeAdditive) {
		return RenderModeNormal
	}
	return RenderMode(n)
}

// RenderAmount is "renderamt" mapped from 0..255 to an alpha of 0..1.
// Entities without it are opaque.
func (e *Entity) RenderAmount() float32 {
	n, ok := e.intProperty("renderamt")
	if !ok {
		return 1
	}
	return float32(math.Clamp(0, n, 255)) / 255
}

// decodeEntityText returns the entity lump as UTF-8. Older tools wrote
// Windows-1252, which is converted.
func decodeEntityText(raw []byte) []byte {
	raw = bytes.TrimRight(raw, "\x00")
	if utf8.Valid(raw) {
		return raw
	}
	b, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return raw
	}
	return b
}

// ParseEntities splits the entity lump into its {...} blocks. Braces inside
// quotes do not count. An unterminated or stray brace is logged and the
// affected block skipped; malformed counts them.
func ParseEntities(data []byte, log *slog.Logger) (es []*Entity, malformed int) {
	/*
		The data looks like:
		{
		  "name" "value"
		  "name2" "value2"
		}
		{
		  "name3" "value"
		  {
		    ()()()...
		  }
		}
		But I have not seen the nested stuff
	*/
	if log == nil {
		log = slog.Default()
	}
	var ess [][]byte
	var ob, q int
	start := -1
	for i, b := range data {
		switch b {
		case '{':
			if q != 0 {
				break
			}
			if start == -1 {
				start = i
			} else {
				ob++
			}
		case '}':
			if q != 0 {
				break
			}
			if start == -1 {
				log.Error("Unexpected '}' in entity lump", "offset", i)
				malformed++
				break
			}
			if ob == 0 {
				ess = append(ess, data[start:i+1])
				start = -1
			} else {
				ob--
			}
		case '"':
			if q == 0 {
				q++
			} else {
				q--
			}
		}
	}
	if start != -1 {
		log.Error("Unterminated entity in entity lump", "offset", start)
		malformed++
	}
	for _, e := range ess {
		es = append(es, NewEntity(e))
	}
	return es, malformed
}
