// Package creators holds the closed registry of journalist and artist
// identities together with the tone and article type enumerations.
//
// Records are immutable values. Callers pass them explicitly to the article
// and image generators; nothing in the package keeps mutable selection state.
package creators
