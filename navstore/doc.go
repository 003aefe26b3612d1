// Package navstore persists navigation grids.
//
// Format:
//
//	magic   "TNAV" (4 bytes)
//	version 1 byte, currently 1
//	flags   1 byte, bit 0 set when the body is zstd-compressed
//	body    one msgpack record
//
// The body encodes every record as a msgpack array, so field order is fixed
// and sections carry their counts. It holds the grid identity (ID,
// parameters, origin, yaw), the live cells by ascending cell ID (coordinate,
// corner heights, tags) and the connections, which refer to cells by
// position in that list. Decoding adds the cells in list order, so cell IDs
// are compacted but keep their relative order. Occupancy is runtime state and is not stored.
// Connections to removed cells are dropped.
//
// Decoding rebuilds the grid through navgrid.NewGrid, NewCell, AddCell and
// Connect, so a decoded grid passes the same validation as a generated one.
//
// Errors:
//
//   - ErrBadMagic           if the stream does not start with the magic.
//   - ErrUnsupportedVersion if the version byte is unknown.
//   - ErrCorrupt            if the body cannot be decoded or rebuilt.
package navstore
