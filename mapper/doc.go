// Package mapper holds the employee and department statements used to
// exercise the tiered cache against a real database.
//
// The SQL mappers run every statement through bun. The Cached mappers wrap
// them with a tiered.Session: reads are looked up under a key made of the
// collection, the statement name and its arguments, and writes invalidate
// the collections they touch. Statements that join or step through the
// department table declare both collections, so a write to either one
// invalidates them.
package mapper
