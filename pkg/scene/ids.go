// Package scene maps raycast hits on chunked city geometry back to
// durable building identities and their property records.
//
// Three identifier spaces exist on purpose and must not be collapsed:
//
//   - GlobalID: per-building integer unique across the whole scene,
//     sized to survive a 32-bit float round-trip because it is compared
//     against a per-vertex shader attribute.
//   - OSMID: persistent identifier from the upstream map dataset; the
//     key for everything that crosses the backend boundary.
//   - BuildingID: internal footprint identifier keying the property
//     table, produced by a separate metadata import.
//
// The Resolver is the only place allowed to cross between them.
package scene

// ChunkID identifies one renderable batch of geometry (one tile of one
// asset type).
type ChunkID string

// GlobalID is the scene-wide building ID carried in the per-vertex
// attribute. NoGlobalID is the "none" sentinel mirrored into shader
// uniforms.
type GlobalID int32

// NoGlobalID marks the absence of a building.
const NoGlobalID GlobalID = -1

// MaxGlobalID is the largest ID that round-trips through a float32
// without precision loss.
const MaxGlobalID GlobalID = 1 << 24

// Float32 returns the shader-attribute encoding of the ID.
func (id GlobalID) Float32() float32 {
	return float32(id)
}

// GlobalIDFromFloat32 decodes a per-vertex attribute value back into an
// ID. Values outside the exact-integer range come back as NoGlobalID.
func GlobalIDFromFloat32(v float32) GlobalID {
	id := GlobalID(v)
	if id < 0 || id > MaxGlobalID || float32(id) != v {
		return NoGlobalID
	}
	return id
}

// OSMID is the externally meaningful building identifier.
type OSMID int64

// BuildingID keys the footprint property table.
type BuildingID string
