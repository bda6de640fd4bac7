// Package ingest loads datasets and rule sets from files and writes them
// back. Column headers are normalized to the canonical field names before
// records are decoded, and an unreadable upload is rejected as a whole.
package ingest
