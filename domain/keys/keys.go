package keys

import (
	"strings"
)

const (
	// PfxNonce prefixes sign-in nonces
	PfxNonce = "nonce"
	// PfxTokenMeta prefixes cached fungible token metadata
	PfxTokenMeta = "tokenMeta"
	// PfxEvents prefixes published event channels
	PfxEvents = "events"
	// PfxHealthCheck prefixes the redis write probe
	PfxHealthCheck = "healthCheck"
)

// RedisKey joins key components with ":"
func RedisKey(components ...string) string {
	return strings.Join(components, ":")
}

// GetPrefix returns the first component of a key built by RedisKey
func GetPrefix(key string) string {
	if i := strings.Index(key, ":"); i >= 0 {
		return key[:i]
	}
	return key
}
