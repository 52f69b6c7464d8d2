// Package dmxpopt is the single table of DMXP custom options: which names
// are recognized, where they may appear, what literal they carry, and the
// protobuf extensions that represent them in descriptors.
package dmxpopt

import (
	"strings"
)

type Key int

const (
	KeyChannel Key = iota + 1
	KeyChannels
	KeyPersistent
	KeyBufferSize
	KeyWALEnabled
	KeySwapEnabled
	KeyPriority
	KeyTimeoutMs
	KeyRetryCount
	KeyAsync
)

// Scope is the set of declarations an option may be attached to.
type Scope uint8

const (
	ScopeMessage Scope = 1 << iota
	ScopeService
	ScopeMethod
	ScopeChannel
)

type ValueType int

const (
	String ValueType = iota
	Bool
	Uint32
)

type Spec struct {
	Key    Key
	Name   string
	Type   ValueType
	Scopes Scope
}

var specs = []Spec{
	{Key: KeyChannel, Name: "dmxp_channel", Type: String, Scopes: ScopeMessage | ScopeMethod},
	{Key: KeyChannels, Name: "dmxp_channels", Type: String, Scopes: ScopeService},
	{Key: KeyPersistent, Name: "dmxp_persistent", Type: Bool, Scopes: ScopeMessage | ScopeChannel},
	{Key: KeyBufferSize, Name: "dmxp_buffer_size", Type: Uint32, Scopes: ScopeMessage | ScopeChannel},
	{Key: KeyWALEnabled, Name: "dmxp_wal_enabled", Type: Bool, Scopes: ScopeMessage | ScopeChannel},
	{Key: KeySwapEnabled, Name: "dmxp_swap_enabled", Type: Bool, Scopes: ScopeMessage | ScopeChannel},
	{Key: KeyPriority, Name: "dmxp_priority", Type: Uint32, Scopes: ScopeMessage | ScopeChannel},
	{Key: KeyTimeoutMs, Name: "dmxp_timeout_ms", Type: Uint32, Scopes: ScopeService | ScopeMethod | ScopeChannel},
	{Key: KeyRetryCount, Name: "dmxp_retry_count", Type: Uint32, Scopes: ScopeService},
	{Key: KeyAsync, Name: "dmxp_async", Type: Bool, Scopes: ScopeMethod},
}

var byName = func() map[string]Spec {
	m := make(map[string]Spec, len(specs))
	for _, s := range specs {
		m[s.Name] = s
	}
	return m
}()

// Lookup decodes an option name as written in the schema. Parentheses are
// stripped and only the last dotted segment is matched, so "(dmxp_channel)",
// "dmxp_channel" and "(dmxp.method.dmxp_channel)" all resolve to the same
// key. Matching is exact: "dmxp_channels" never decodes as "dmxp_channel".
func Lookup(name string) (Spec, bool) {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "(")
	name = strings.TrimSuffix(name, ")")
	if idx := strings.LastIndex(name, "."); idx != -1 {
		name = name[idx+1:]
	}
	s, ok := byName[name]
	return s, ok
}

func (s Spec) Allows(scope Scope) bool {
	return s.Scopes&scope != 0
}

func (k Key) String() string {
	for _, s := range specs {
		if s.Key == k {
			return s.Name
		}
	}
	return "unknown"
}
