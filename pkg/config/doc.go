// Package config defines the Janus configuration surface and its YAML
// loading, defaulting, and validation.
//
// Configuration is loaded once at startup (and on explicit reload) and shared
// read-only. Validation is fail-closed: a configuration that references an
// unknown provider, carries an unparsable chain expression, or points at a
// missing taxonomy directory prevents the process from starting.
//
// Chain expressions use the routing wire format throughout: "provider,model"
// pairs joined by "|", tried left to right.
package config
