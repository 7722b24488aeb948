package cache

// Keyer derives cache keys.
type Keyer interface {
	// AssetKey keys the raw bytes of a fetched image.
	AssetKey(source string) string

	// ArtifactKey keys an encoded export for a configuration hash.
	ArtifactKey(configHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the export parameters that change the output bytes.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	AlbumCode string `json:"album_code,omitempty"`
	Visitor   string `json:"visitor,omitempty"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AssetKey returns "asset:<sha256>" for the source URL or path.
func (DefaultKeyer) AssetKey(source string) string {
	return hashKey("asset", source)
}

// ArtifactKey returns "artifact:<sha256>" over the hash and options.
func (DefaultKeyer) ArtifactKey(configHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", configHash, opts)
}
