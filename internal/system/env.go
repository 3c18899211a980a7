package system

import "strings"

// DefaultPassthrough lists the host variables forwarded into sandboxes
// when the configuration does not override it.
var DefaultPassthrough = []string{
	"CARGO_BUILD_JOBS",
	"CARGO_TERM_COLOR",
	"RUST_BACKTRACE",
	"RUST_LOG",
	"RUST_RECURSION_COUNT",
}

// PassthroughEnv returns the KEY=VALUE entries of environ whose key is
// allowed, in environ order. An allow entry ending in "*" matches any key
// with that prefix; every other entry must match the key exactly.
// Entries without "=" are dropped.
func PassthroughEnv(allow []string, environ []string) []string {
	var out []string
	for _, kv := range environ {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if allowed(allow, key) {
			out = append(out, kv)
		}
	}
	return out
}

func allowed(allow []string, key string) bool {
	for _, pattern := range allow {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(key, prefix) {
				return true
			}
			continue
		}
		if pattern == key {
			return true
		}
	}
	return false
}
