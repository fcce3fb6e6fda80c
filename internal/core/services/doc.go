// Package services implements the driving ports: intent classification,
// query synthesis, retrieval orchestration, topology graph derivation
// and ingestion. Services depend only on domain types and driven ports.
package services
