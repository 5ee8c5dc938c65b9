// Package project defines the identifier model for projects and users.
//
// Project IDs:
//
// Every project carries a canonical 14-character ID:
//
//	P2024-JAS-ABCD
//	│ │    │   └── suffix: 4 random uppercase letters
//	│ │    └────── user ID: 3 letters (JAS) or 2 letters + digit 1-9 (JS1)
//	│ └─────────── year of creation
//	└───────────── literal P
//
// BuildProjectID and ParseProjectID are strict inverses. A random version 4
// UUID travels alongside the ID but is never embedded in it.
//
// User IDs:
//
// DeriveUserID turns a full name into initials (Charles Robert Darwin ->
// CRD). Resolving collisions between people with the same initials is the
// job of the registry package; this package holds no state.
//
// Naming:
//
// DisplayName and DecomposeProjectName convert between an Identifier and
// the titles used on external tracking services
// ("P2024-JAS-ABCD - RNA-seq analysis (R12345)").
package project
