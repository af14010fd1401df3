package version

// Version is the current xfid release, overridable at build time with
// -ldflags "-X xfid/version.Version=...".
var Version = "0.4.0"
