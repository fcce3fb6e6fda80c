// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Structured CMDB lookups, listings and upserts
//   - SearchIndex: Ranked full-text retrieval
//
// # Optional Interfaces
//
// These degrade gracefully when nil:
//
//   - LLMService: Query rewriting and answer generation
//   - RawQuerier: Sanitized raw read-only SQL
//   - ConfigStore: Persistent application configuration
package driven
