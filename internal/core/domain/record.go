package domain

import "time"

// PackagedFile is a single file written by the package step.
type PackagedFile struct {
	// Path is relative to the package destination and uses forward slashes.
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// PackageRecord describes the outcome of a package run.
type PackageRecord struct {
	ID          string         `json:"id"`
	PURL        string         `json:"purl,omitzero"`
	Destination string         `json:"destination,omitzero"`
	Files       []PackagedFile `json:"files,omitzero"`
	TreeHash    string         `json:"tree_hash,omitzero"`
	Status      StepStatus     `json:"status,omitzero"`
	Timestamp   time.Time      `json:"timestamp,omitzero"`
}

// SameContent reports whether two records describe byte-identical package trees.
func (r *PackageRecord) SameContent(other *PackageRecord) bool {
	if r == nil || other == nil {
		return false
	}
	return r.TreeHash != "" && r.TreeHash == other.TreeHash
}
