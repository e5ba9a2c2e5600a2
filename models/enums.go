package models

// ManifestMatchStatus tracks how far the manifest matcher got with an entry.
// Empty string means the entry has not been examined yet; the chunked match
// loop keys off that, so the zero value must stay "pending".
type ManifestMatchStatus string

const (
	ManifestMatchPending  ManifestMatchStatus = ""
	ManifestMatchMatched  ManifestMatchStatus = "Matched"
	ManifestMatchNotFound ManifestMatchStatus = "NotFound"
)

type DocumentStatus string

const (
	DocumentStatusActive   DocumentStatus = "Active"
	DocumentStatusArchived DocumentStatus = "Archived"
)

type PrivacyLevel string

const (
	PrivacyLevelFirm    PrivacyLevel = "Firm"
	PrivacyLevelMatter  PrivacyLevel = "Matter"
	PrivacyLevelPrivate PrivacyLevel = "Private"
)

type StorageLocation string

const (
	StorageLocationRemote StorageLocation = "Remote"
	StorageLocationCloud  StorageLocation = "Cloud"
)

type MatterStatus string

const (
	MatterStatusOpen   MatterStatus = "Open"
	MatterStatusClosed MatterStatus = "Closed"
)
