package rojo

import "fmt"

const (
	// VersionMajor is the current major version of Rojo.
	VersionMajor = 7
	// VersionMinor is the current minor version of Rojo.
	VersionMinor = 4
	// VersionPatch is the current patch version of Rojo.
	VersionPatch = 0

	// ProtocolVersion is the version of the live-sync wire protocol served at
	// /api/rojo. Clients with a mismatched protocol version must refuse to
	// connect.
	ProtocolVersion = 4
)

// Version is the dotted-decimal version string assembled from VersionMajor,
// VersionMinor, and VersionPatch.
var Version string

func init() {
	Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
