// Package install drives a fresh RbxPI installation.
//
// The workflow walks release selection, environment selection and
// deployment in order, with no backward transitions: invalid input at a
// gating prompt aborts the run. Roblox Studio installs download the .rbxm
// asset to the downloads folder; Rojo installs deploy the release's
// src/RbxPI tree into the chosen project directory.
package install
