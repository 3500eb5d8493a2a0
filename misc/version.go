// Package misc keeps build time information.
package misc

// Set by the linker: -X pgstyle/misc.version=... -X pgstyle/misc.gitHash=...
var (
	appName = "pgstyle"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
