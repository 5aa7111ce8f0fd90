package model

// CompositeKind distinguishes resources that can be replaced by touching a
// single object from those that span multiple linked objects.
type CompositeKind string

const (
	// KindSimple is a self-contained font resource; replacing its data
	// field is a complete replacement.
	KindSimple CompositeKind = "simple"
	// KindComposite is a multi-object resource (descriptor plus atlas
	// texture and material) that must be resolved together.
	KindComposite CompositeKind = "composite"
)

// ReplacementStatus tracks a resource through the replacement pipeline.
type ReplacementStatus string

const (
	StatusPending ReplacementStatus = "pending"
	StatusApplied ReplacementStatus = "applied"
	StatusFailed  ReplacementStatus = "failed"
)

// ResourceRecord is one discovered font-like resource.
type ResourceRecord struct {
	Name          string
	ContainerFile Path

	// PrimaryObjectID is the anchor object, e.g. the font descriptor.
	PrimaryObjectID int64

	Kind CompositeKind

	// RelatedObjectIDs lists linked objects that a full composite
	// replacement would have to rewrite together, in resolution order.
	RelatedObjectIDs []int64

	Status ReplacementStatus
	// FailReason distinguishes an unsupported composite replacement from
	// an I/O failure.
	FailReason string
}
