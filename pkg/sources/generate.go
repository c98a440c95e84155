//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/agentstation/tablemerge --repository.default-branch master --repository.path /pkg/sources

// Package sources defines how tabular record sources are loaded.
package sources
