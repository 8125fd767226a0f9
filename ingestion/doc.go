// Package ingestion runs the document side of the pipeline for one session.
//
// A Pipeline loads files, splits the extracted documents into chunks and
// builds (or rebuilds) the session's embedding index from them. Files that
// cannot be loaded are reported on the Result and never abort the batch;
// an upload that yields no chunks leaves the current index untouched.
package ingestion
