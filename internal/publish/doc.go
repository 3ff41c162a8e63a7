// Package publish fans processed clips out to the configured social
// platforms.
//
// Each platform is wrapped in a Publisher; the Registry tracks which are
// enabled at runtime. Content is optimized per platform before upload:
// captions and titles are word-truncated to the platform's limits and
// hashtags are normalized and capped. The fan-out is concurrent and
// partial-success: every attempt is recorded as a publication row, and the
// source item moves to published once dispatch completes even when
// individual platforms fail.
package publish
