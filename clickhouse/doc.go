// Package clickhouse is a minimal client for the ClickHouse HTTP interface.
//
// Statements travel in the query string and insert payloads travel in the
// request body as JSONEachRow (one JSON object per line). Every call is a
// single request: a non-2xx response is returned as a *StoreError carrying
// the status code and response body, and nothing is retried.
//
// Each insert is all-or-nothing on the server, but there is no transaction
// spanning several InsertBatch calls. A failure after N successful calls
// leaves those N batches committed.
package clickhouse
