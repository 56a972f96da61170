// Package seed populates the reference library from a control catalog CSV,
// such as NIST_SP-800-53_rev5_catalog_load.csv.
//
// Seeding happens at most once: Run does nothing when the library already
// holds a row, so it is safe to call on every startup.
package seed
