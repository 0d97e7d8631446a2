// Package compat validates the execution environment before a workflow runs.
// The check can be skipped with the root command's --force flag.
package compat
