package buildinfo

// Version holds the application's version string.
// It's a `var` so it can be set at compile time using ldflags.
// Example: go build -ldflags="-X github.com/paulschiretz/mfdirsync/pkg/buildinfo.Version=1.0.0"
var Version = "dev"

// Name is the canonical name of the application. It is also the `app`
// identifier written into every JSON run log.
const Name = "mfdirsync"

// LogFormatVersion is the schema version of the JSON run log. Bump it
// whenever the record layout changes incompatibly.
const LogFormatVersion = 1
