// Package batch partitions row streams into fixed-size batches and reports
// progress while they are sent.
//
// Batches are contiguous sub-slices of the input: concatenating them in order
// reproduces the input exactly.
package batch
