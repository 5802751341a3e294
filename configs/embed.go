// Package configs provides embedded configuration templates for fascase.
//
// Templates are embedded at build time with go:embed so they are
// available in every distribution (go install, binary releases).
//
// The user template is written by `fascase config init` to
// ~/.config/fascase/config.yaml (or $XDG_CONFIG_HOME/fascase/config.yaml).
// Settings there apply to every fascase invocation on this machine; a
// fascase.yaml in the working directory overrides them per deployment.
//
// Configuration precedence (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/fascase/config.yaml)
//  3. Working-directory config (fascase.yaml)
//  4. Environment variables (FASCASE_*)
package configs

import _ "embed"

// UserConfigTemplate is the commented template for the user-level
// configuration file, created by `fascase config init`.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
