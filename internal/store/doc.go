// Package store provides the disk formats and out-of-core primitives for the
// layer solver.
//
// File Formats:
//   - Layer files (.vbyte): strictly increasing canonical state keys, stored as
//     unsigned varint deltas and terminated by a zero delta. A ".zst" suffix
//     selects a zstd-compressed stream of the same bytes.
//   - Value tables (.values): fixed 16-byte records (state u64, value f64),
//     little-endian, sorted by state, no header. Read through a read-only mmap.
//
// Key Features:
//   - Ordered in-memory staging of newly discovered states (StateSet)
//   - Heap-based k-way merge with duplicate elimination across shards
//   - Multi-pass merge when there are more inputs than open files allowed
//   - Write-once files: everything is written to a temp path and renamed
package store
