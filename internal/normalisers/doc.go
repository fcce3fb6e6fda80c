// Package normalisers converts external data formats into CMDB
// documents. Each subpackage handles one source format; topology parses
// IETF network-topology YAML exports.
package normalisers
