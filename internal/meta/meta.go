// Package meta holds build metadata shared by the server and its CLI.
package meta

// Version is the goiotdbmcp release version.
const Version = "1.0.0"
