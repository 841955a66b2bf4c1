// Package language provides language code normalization and comparison.
//
// Stream tags reported by ffprobe are usually ISO 639-2 ("eng"), while
// operators tend to configure ISO 639-1 ("en") or words ("english"). The
// helpers here let audio stream selection and subtitle filename parsing treat
// those spellings as the same language.
package language
