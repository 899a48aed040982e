// Package storage persists the client's local state: the serialized cart
// blob and the credential pair, each under a fixed key. There is no
// versioning or migration scheme; an unreadable value is treated as absent.
package storage

// Store is a key-value blob store scoped to one client session.
type Store interface {
	// Get returns the stored value for key, or false when absent.
	Get(key string) ([]byte, bool)
	// Set persists value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// Well-known storage keys. These match the keys the storefront has always
// used, so existing state directories keep working.
const (
	KeyCart         = "ivita_cart"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyDeviceID     = "device_id"
)
