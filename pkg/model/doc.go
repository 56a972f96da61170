// Package model defines the database models for ctrack.
//
// This package contains GORM models that map to the two ctrack tables. The
// same structs are serialized directly as API responses, so their JSON tags
// are part of the HTTP contract.
//
// # Core Models
//
//   - ControlReference: a control definition from the reference library
//   - Assessment: a yearly self-evaluation of one control
//
// # Database Schema
//
//   - control_references: read-mostly library, seeded once from CSV
//   - assessments: one row per (ref_id, audit_year), enforced by the
//     idx_assessments_ref_year unique index
package model
