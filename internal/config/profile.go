package config

import (
	"sync"
)

// Profile resolves parameter values keyed by (scriptName, paramName),
// returning the caller-supplied fallback when the active profile has
// no override of the requested kind.
type Profile interface {
	Int(scriptName, paramName string, fallback int64) int64
	Float(scriptName, paramName string, fallback float64) float64
	Bool(scriptName, paramName string, fallback bool) bool
	String(scriptName, paramName string, fallback string) string
	Color(scriptName, paramName string, fallback uint32) uint32
}

// StaticProfile is a Profile backed by an in-memory set of overrides,
// loaded from a profile's koanf-parsed JSON document (see Loader).
type StaticProfile struct {
	mu        sync.RWMutex
	name      string
	overrides map[string]map[string]Param
}

// NewStaticProfile creates an empty named profile.
func NewStaticProfile(name string) *StaticProfile {
	return &StaticProfile{name: name, overrides: make(map[string]map[string]Param)}
}

// Name returns the profile's name, e.g. "default" or a user-chosen one.
func (p *StaticProfile) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// SetOverride installs or replaces a single script parameter override.
func (p *StaticProfile) SetOverride(scriptName string, param Param) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.overrides[scriptName]
	if !ok {
		m = make(map[string]Param)
		p.overrides[scriptName] = m
	}
	m[param.Name] = param
}

func (p *StaticProfile) lookup(scriptName, paramName string) (Param, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.overrides[scriptName]
	if !ok {
		return Param{}, false
	}
	v, ok := m[paramName]
	return v, ok
}

func (p *StaticProfile) Int(scriptName, paramName string, fallback int64) int64 {
	if v, ok := p.lookup(scriptName, paramName); ok && v.Kind == ParamInt {
		return v.Int
	}
	return fallback
}

func (p *StaticProfile) Float(scriptName, paramName string, fallback float64) float64 {
	if v, ok := p.lookup(scriptName, paramName); ok && v.Kind == ParamFloat {
		return v.Float
	}
	return fallback
}

func (p *StaticProfile) Bool(scriptName, paramName string, fallback bool) bool {
	if v, ok := p.lookup(scriptName, paramName); ok && v.Kind == ParamBool {
		return v.Bool
	}
	return fallback
}

func (p *StaticProfile) String(scriptName, paramName string, fallback string) string {
	if v, ok := p.lookup(scriptName, paramName); ok && v.Kind == ParamString {
		return v.String
	}
	return fallback
}

func (p *StaticProfile) Color(scriptName, paramName string, fallback uint32) uint32 {
	if v, ok := p.lookup(scriptName, paramName); ok && v.Kind == ParamColor {
		return v.Color
	}
	return fallback
}
