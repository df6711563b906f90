package model

// BackendKind enumerates the credential schemas a session service entry can hold.
type BackendKind string

const (
	// BackendOwncloud is an ownCloud/Nextcloud file-sync backend.
	BackendOwncloud BackendKind = "owncloud"
	// BackendS3 is an S3-compatible object storage backend.
	BackendS3 BackendKind = "s3"
)

// Valid reports whether k is a known backend kind.
func (k BackendKind) Valid() bool {
	switch k {
	case BackendOwncloud, BackendS3:
		return true
	}
	return false
}

// RegistryEntry is operator-supplied trusted configuration for a backend.
type RegistryEntry map[string]any

// URL returns the entry's url key, if set.
func (e RegistryEntry) URL() string {
	s, _ := e["url"].(string)
	return s
}

// Provider returns the entry's provider key, if set.
func (e RegistryEntry) Provider() string {
	s, _ := e["provider"].(string)
	return s
}

// String returns the string value stored at key.
func (e RegistryEntry) String(key string) string {
	s, _ := e[key].(string)
	return s
}
