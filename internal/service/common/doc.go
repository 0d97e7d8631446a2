// Package common holds helpers shared by the install and update workflows:
// the single-instance run marker (with stale-marker recovery via process
// inspection) and recursive directory copying for deployments.
package common
