package model

import "github.com/nika-industries/nika-sub000/pkg/slug"

// Index declares one unique secondary index: a stable name and a
// projection from a record to the EitherSlug that must be unique across
// all records of the model's table.
type Index[R any] struct {
	Name       string
	Projection func(R) slug.EitherSlug
}

// Model is the design-level contract a record type must satisfy to be
// managed by the indexed store: a stable table name, an ordered list of
// unique secondary indices, and an id getter. M is the record's own type,
// used to tag its RecordID.
type Model[M any] interface {
	TableName() string
	UniqueIndices() []Index[M]
	ID() RecordID[M]
}
