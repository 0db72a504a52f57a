package version

// Version is the current vitalview release
const Version = "0.3.0"
