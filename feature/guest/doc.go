// Package guest resolves Guesty guests into local contacts.
//
// The vendor guest document is loose. Names arrive as fullName, as a
// first/last pair, or not at all, and the hometown is a free-form
// "City, Country" string. The resolver normalizes all of that into a
// Contact and keeps a mapping table so every remote guest resolves to
// the same contact on every webhook.
package guest
