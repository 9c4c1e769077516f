// Package entities holds the tracker's data model: the character and
// vehicle rosters, the single active encounter and UI settings. JSON field
// names are the stored format and must not change.
package entities
