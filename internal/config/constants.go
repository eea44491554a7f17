// Package config holds process-wide constants and the optional
// YAML-loaded runtime configuration: small, mostly static, consulted
// by cmd/ember rather than by the VM core itself.
package config

// SourceFileExt is the recognized extension for this language's source
// files, consulted by require() when a bare module name is given.
const SourceFileExt = ".ember"

// Built-in global names, named here once so cmd/ember and
// internal/stdlib agree on them without a string constant scattered
// across both.
const (
	PrintFuncName    = "print"
	RequireFuncName  = "require"
	SetProtoFuncName = "setproto"
)
