// Package config manages rbxmanager settings stored as YAML.
//
// Settings describe where release metadata is fetched from, where the local
// cache and logs live, and the network timeouts used by the workflows. The
// manager runs fine without a settings file: Load falls back to built-in
// defaults pointing at the upstream RbxPI repository.
package config
