// Package domain defines the core business entities for RecallMind.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: A markdown note tracked under the content root
//   - Chunk: A searchable text span derived from one source
//   - SearchResult: A retrieved chunk with its similarity score
//   - Answer: A grounded response with citations
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
