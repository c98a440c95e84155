//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/agentstation/tablemerge --repository.default-branch master --repository.path /

// Package tablemerge merges tabular record sources with inconsistent
// schemas into one deduplicated table keyed by an identifying field.
package tablemerge
