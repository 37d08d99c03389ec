// Package ingest turns free-form "code[:title]" text into unit titles and
// review records. Apply is the bulk path that tolerates entries recorded
// twice on the same day; Record is the explicit single-entry path that
// reports every conflict.
package ingest
