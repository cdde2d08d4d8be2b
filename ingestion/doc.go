// Package ingestion drives a full export ingest.
//
// A Pipeline runs the stages in order:
//   - Load the export document
//   - Flatten every conversation into rows
//   - Ensure the destination table exists
//   - Insert the rows batch by batch
//
// A dry run stops after flattening and never contacts the store. An insert
// failure aborts the run; batches already acknowledged by the store stay
// committed, so a run delivers each successful batch at most once.
// With a concurrency above one, inserts are spread over a bounded worker
// pool and the first failure stops further submissions.
package ingestion
