package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// flag is a parsed flag value: either a hard on/off or a percentage rollout.
type flag struct {
	enabled   bool
	rollout   int // 0-100, only meaningful when isRollout
	isRollout bool
}

// Manager evaluates feature flags parsed from a comma-separated
// key=value list, e.g. "activities=on,group_goals=25%,legacy_feed=off".
// Values are parsed once at construction; unknown flags evaluate to off.
type Manager struct {
	flags map[string]flag
}

// NewManager parses a raw flag string into a Manager. Malformed pairs
// are skipped rather than rejected so a typo in config cannot take the
// server down.
func NewManager(raw string) *Manager {
	flags := make(map[string]flag)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = normalize(key)
		value = normalize(value)
		if key == "" || value == "" {
			continue
		}
		if f, ok := parseValue(value); ok {
			flags[key] = f
		}
	}

	return &Manager{flags: flags}
}

func parseValue(value string) (flag, bool) {
	switch value {
	case "on", "true", "1":
		return flag{enabled: true}, true
	case "off", "false", "0":
		return flag{}, true
	}
	pct, ok := strings.CutSuffix(value, "%")
	if !ok {
		return flag{}, false
	}
	n, err := strconv.Atoi(pct)
	if err != nil || n < 0 || n > 100 {
		return flag{}, false
	}
	return flag{rollout: n, isRollout: true}, true
}

// Enabled reports whether a flag is on for the given user. Percentage
// rollouts bucket users deterministically so a user does not flip
// between cohorts across requests.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	f, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}
	if !f.isRollout {
		return f.enabled
	}
	if f.rollout >= 100 {
		return true
	}
	if f.rollout <= 0 || userID == 0 {
		return false
	}
	return bucket(name, userID) < f.rollout
}

// Snapshot evaluates every configured flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
