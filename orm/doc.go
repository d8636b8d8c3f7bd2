// Package orm maps Go struct types onto mossdb's bucket layout. A model's
// fields are discovered once via reflection and cached by type, following
// the structInfo/typeInfoCache pattern mossdb itself inherits from its
// ancestor; everything else (bucket naming, save/load/remove semantics) is
// this package's own contract over that reflection.
package orm
