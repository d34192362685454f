// Package asset provides asset identities, typed handles, thread-safe
// asset storage, and image decoding.
//
// Assets are identified by [ID], a UUID. Runtime-created assets receive a
// random ID ([NewID]); assets loaded from a path receive a name-based ID
// ([IDFromName]) so that reloading the same path yields the same identity.
//
// A [Handle] is a typed reference to an asset held in a [Store]. Renderers
// key their GPU caches by the bare ID returned from [Handle.Weak], which
// carries identity only.
package asset
