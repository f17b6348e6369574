package version

// Version represents the current version of parcels
const Version = "1.4.0"

// BuildVersion returns the version string for display
func BuildVersion() string {
	return "parcels version " + Version
}

// APIVersion returns just the version number for API responses
func APIVersion() string {
	return Version
}
