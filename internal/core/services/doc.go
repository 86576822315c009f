// Package services contains the core application services: the sync
// engine that keeps the vector index consistent with the notes folder,
// and the assistant that answers questions from the indexed chunks.
package services
