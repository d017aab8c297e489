// Package domain contains the core domain values and errors for rc522assist.
//
// This package is the innermost layer: it has no dependencies on hardware,
// file system or logging concerns and holds only the values that flow between
// the reader device and the reporters.
//
// # Values
//
//   - [UID]: a card identifier obtained through anti-collision
//   - [TagType]: the ATQA answer a card gives to the request command
//   - [Card]: a single successful read, handed to reporters and events
package domain
