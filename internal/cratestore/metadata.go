package cratestore

// MetadataEncoder produces and consumes the opaque persisted-metadata blob
// embedded in an emitted object under a named section (spec §6). Its schema
// is defined by an external metadata-encoder module and is a black box to
// this package: Store never inspects the bytes, only passes them through.
type MetadataEncoder interface {
	Encode(crate *CrateData) ([]byte, error)
	Decode(blob []byte) (*CrateData, error)
}
