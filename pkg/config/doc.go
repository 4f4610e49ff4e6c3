// Package config loads claimgraph settings from defaults, a file and the
// environment, in that order.
//
// Files may be TOML (.toml) or YAML (.yaml, .yml). Environment variables
// use the CLAIMGRAPH_ prefix with a double underscore between section and
// key:
//
//	CLAIMGRAPH_API__BASE_URL=https://live.linkedtrust.us
//	CLAIMGRAPH_EXPLORE__MAX_NODES=50
//	CLAIMGRAPH_CACHE__BACKEND=redis
//
// A missing file is not an error; the defaults apply. Command-line flags
// are applied by the CLI after [Load] returns.
package config
