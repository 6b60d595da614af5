// Package layout computes the in-memory layout of database compounds under
// a chosen ABI.
//
// The Builder resolves each compound once and caches the result. Layout
// follows the usual C++ rules for the targets the database describes:
//   - members are laid out in declaration order, padded to their alignment
//   - a derived compound starts at its parent's unpadded end on targets
//     that reuse tail padding (g++, clang) and at the parent's padded
//     size on windows targets
//   - virtual compounds reserve one pointer at offset 0 for the vtable,
//     inherited at most once through the parent chain
//   - total size is padded to the widest member alignment
//
// The Builder never mutates the database and is safe to reuse across
// queries within a run.
package layout
