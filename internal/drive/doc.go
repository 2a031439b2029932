// Package drive discovers external block devices and performs safe ejection.
//
// It wraps the lsblk, findmnt, and udisksctl utilities behind structured
// types: a catalog builder that snapshots attached external drives with
// their metadata and mount points, and an ejector that unmounts every
// partition before powering a device off. Output parsing lives here so the
// text-table quirks of those utilities stay isolated from presentation and
// CLI code.
package drive
