// Package config provides configuration types and loading for cargo-sandbox.
//
// # Configuration File
//
// Settings are read from an optional TOML file, by default
// $XDG_CONFIG_HOME/cargo-sandbox/config.toml:
//
//	socket           = "/var/run/docker.sock"
//	namespace        = "cargo-sandbox"
//	user             = "cargo-sandbox-user"
//	image_prefix     = "cargo-sandbox-"
//	env_passthrough  = ["CARGO_BUILD_JOBS", "RUST_*"]
//	network_disabled = false
//	default_args     = "--locked"
//
//	[images]
//	publish = "registry.example.com/cargo-publish:1.80"
//
// Keys missing from the file keep their defaults. Command-line flags are
// applied on top by the cmd package.
//
// # Engine Socket
//
// ResolveSocket applies the precedence --socket flag, unix:// DOCKER_HOST,
// config file, built-in default.
//
// # Project Names
//
// ProjectName derives the project identity from the project directory's
// basename. It is used as a discovery label value and as the mount point
// below the sandbox user's home.
package config
