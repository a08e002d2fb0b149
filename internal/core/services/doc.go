// Package services implements the driving ports: the ingest saga, retrieval,
// question answering, video browsing and settings.
//
// Services reach infrastructure only through the driven ports.
package services
