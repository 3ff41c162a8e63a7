// Package collect discovers trending pet videos on source platforms and
// stores them for downstream processing.
//
// Each source platform is wrapped in a Collector that knows how to search
// for hashtags and download media. The Stage fans the configured item limit
// out across collectors, deduplicates against previously collected source
// IDs, and isolates per-collector and per-video failures so one bad source
// never starves the pipeline.
package collect
