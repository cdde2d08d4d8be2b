// Package export reads ChatGPT conversation exports and flattens their
// message trees into rows shaped for the chatgpt_messages table.
//
// Mapping nodes are visited in the order they appear in the source file.
// Parent links are copied as opaque identifiers and never resolved, so
// orphaned or cyclic parent references are carried through unchanged.
package export
