// Package analytics keeps engagement metrics fresh and summarizes
// publication performance.
//
// The refresh stage polls platform APIs for the most recent publications and
// records view, like, comment, and share counts; the engagement rate is
// recomputed by the store when views are present. The Reporter aggregates a
// trailing window into a plain-text summary for push notification.
package analytics
