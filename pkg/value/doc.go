// Package value defines the tagged values a content store hands to the
// evaluation core. Scalars, asset references, composite objects and lists are
// distinguished by Kind so the core never has to resolve binary assets: an
// asset is carried opaquely as an AssetRef keyed by its identifier. A Snapshot
// is the per-call mapping from field name to Value and is never retained by
// the core between evaluations.
package value
