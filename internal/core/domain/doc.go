// Package domain defines the core business entities for netquery.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A CMDB record (node, termination point, link or route)
//   - Intent: The classified purpose of a free-text query
//   - Edge: A resolved link between two interfaces
//   - Hit: A ranked full-text search result
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
