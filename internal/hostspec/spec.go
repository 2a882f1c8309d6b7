// Package hostspec parses the `-H/--host` specifiers and config `hosts:`
// entries into a canonical form, derives each one's HostId, and builds
// the dockerx.Client that talks to it. This is the "Host Spec Resolver"
// ambient component SPEC_FULL.md §4.9 adds around spec.md's core: the
// core (internal/core, internal/hostmgr) never parses a host string
// itself, it only ever sees a core.HostId and a ready dockerx.Client.
package hostspec

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/siftail/dtop/internal/core"
)

// Kind discriminates the four transports spec.md §6 accepts.
type Kind int

const (
	Local Kind = iota
	TCP
	TLS
	SSH
)

// FilterKV is one `key=value` listing filter attached to a host, either
// from CLI `-f` or a config `hosts[].filter` entry.
type FilterKV struct {
	Key   string
	Value string
}

// Spec is a fully parsed host specifier.
type Spec struct {
	Kind      Kind
	Raw       string // the original specifier string
	Addr      string // host:port for tcp/tls; ssh host; empty for local
	User      string // ssh user, if given
	Port      int    // ssh port, 0 if default
	Path      string // ssh path suffix (stripped from HostId, kept for dialing)
	DozzleURL string
	Filters   []FilterKV
}

// Parse interprets one `-H`/config host string (spec.md §6).
func Parse(raw string) (Spec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "local" {
		return Spec{Kind: Local, Raw: "local"}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Spec{}, fmt.Errorf("hostspec: invalid host %q: %w", raw, err)
	}

	switch u.Scheme {
	case "tcp":
		return Spec{Kind: TCP, Raw: raw, Addr: u.Host}, nil
	case "tls":
		return Spec{Kind: TLS, Raw: raw, Addr: u.Host}, nil
	case "ssh":
		port := 0
		host := u.Hostname()
		if p := u.Port(); p != "" {
			port, err = strconv.Atoi(p)
			if err != nil {
				return Spec{}, fmt.Errorf("hostspec: invalid ssh port in %q: %w", raw, err)
			}
		}
		return Spec{
			Kind: SSH,
			Raw:  raw,
			Addr: host,
			User: u.User.Username(),
			Port: port,
			Path: u.Path,
		}, nil
	default:
		return Spec{}, fmt.Errorf("hostspec: unrecognized host specifier %q (want local|tcp://|tls://|ssh://)", raw)
	}
}

// HostId derives the canonical core.HostId from a parsed Spec (spec.md
// §3): local -> "local"; ssh -> "user@host" with port/path stripped;
// tcp/tls -> "host:port". This is the function the round-trip property
// in spec.md §8 checks: hostid("ssh://u@h:22") == hostid("ssh://u@h").
func (s Spec) HostId() core.HostId {
	switch s.Kind {
	case Local:
		return "local"
	case SSH:
		if s.User != "" {
			return core.HostId(s.User + "@" + s.Addr)
		}
		return core.HostId(s.Addr)
	default: // TCP, TLS
		return core.HostId(s.Addr)
	}
}

// FiltersMap flattens Filters into the same-key-OR map dockerx.ListOptions
// expects (spec.md §4.1: "same-key filter values OR; cross-key AND").
func FiltersMap(filters []FilterKV) map[string][]string {
	out := make(map[string][]string)
	for _, f := range filters {
		out[f.Key] = append(out[f.Key], f.Value)
	}
	return out
}

// eventsSafeKeys is the subset of filter keys the Docker events API
// accepts directly (spec.md §6); "id" and "name" are rewritten to
// "container" rather than dropped.
var eventsSafeKeys = map[string]bool{"label": true, "network": true, "volume": true}

// EventFilters derives the events-stream filter set from the listing
// filters, applying the id/name -> container rewrite and dropping any
// key the events API does not support. It returns the derived filters
// plus the set of keys that were dropped, so the caller can emit the
// one-time FilterIncompatibleForEvents diagnostic (spec.md §4.1, §7).
func EventFilters(filters []FilterKV) (kept map[string][]string, dropped []string) {
	kept = make(map[string][]string)
	droppedSet := make(map[string]bool)
	for _, f := range filters {
		switch {
		case f.Key == "id" || f.Key == "name":
			kept["container"] = append(kept["container"], f.Value)
		case eventsSafeKeys[f.Key]:
			kept[f.Key] = append(kept[f.Key], f.Value)
		default:
			droppedSet[f.Key] = true
		}
	}
	for k := range droppedSet {
		dropped = append(dropped, k)
	}
	return kept, dropped
}
