// Package backend is the duplicate detection engine.
//
// A Scanner walks a directory tree, admits files through an ExtensionPolicy,
// and computes up to two independent signals per file: a sampled MD5 content
// fingerprint and a normalized artist/title key read from audio tags. Files
// sharing a fingerprint under one signal form a DuplicateGroup. Per-file
// failures end up in the ScanReport instead of stopping the scan.
package backend
