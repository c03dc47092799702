// Package repository reads resume documents. Documents are opaque and returned as stored.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Repository reads the resume_data and resume_metadata collections.
type Repository interface {
	// All returns every resume_data document.
	All(ctx context.Context) ([]bson.M, error)
	// ByCategory returns the resume_data documents whose category equals category.
	ByCategory(ctx context.Context, category string) ([]bson.M, error)
	// Metadata returns the first resume_metadata document without _id, or nil if there is none.
	Metadata(ctx context.Context) (bson.M, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
