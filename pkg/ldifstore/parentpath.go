package ldifstore

import "strings"

// DirOf derives the companion subtree-directory path from an entry-file
// path: the directory that holds the entry's children, named with the same
// stem as the entry file itself. It operates purely on byte-length
// accounting, never by re-encoding a DN.
func DirOf(entryPath string) string {
	return strings.TrimSuffix(entryPath, entryFileSuffix)
}

// LdifOf is the inverse of DirOf: it reappends the entry-file suffix to a
// companion directory's path.
func LdifOf(dirPath string) string {
	return dirPath + entryFileSuffix
}
