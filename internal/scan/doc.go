// Package scan discovers subtitle and media files under configured roots and
// pairs each subtitle with the video it belongs to.
//
// Scan walks include roots depth first and prunes any directory whose path
// starts with an exclude root before reading it. Only regular files are
// classified; symbolic links are neither followed nor reported, so link
// cycles cannot occur. A directory that cannot be read fails the whole scan.
//
// FindMatchingVideo looks only in the subtitle's own directory. It prefers an
// exact base-name match after stripping language, flag, and engine suffixes,
// then the longest common prefix that ends on a word boundary. Ties resolve to
// the lexicographically first media file name.
package scan
