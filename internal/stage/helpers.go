package stage

import (
	"fmt"
	"strings"

	"reelcut/internal/fileutil"
	"reelcut/internal/services"
)

// MissingArtifacts returns the entries of paths that do not exist as
// regular files.
func MissingArtifacts(paths []string) []string {
	var missing []string
	for _, p := range paths {
		if !fileutil.Exists(p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// ArtifactsPresent reports whether paths is non-empty and every entry exists.
// A stage that declares no artifacts is never considered complete.
func ArtifactsPresent(paths []string) bool {
	return len(paths) > 0 && len(MissingArtifacts(paths)) == 0
}

// RequireArtifacts returns a services.ErrMissingArtifact error naming every
// missing entry of paths.
func RequireArtifacts(stageName string, paths []string) error {
	missing := MissingArtifacts(paths)
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(
		services.ErrMissingArtifact, stageName, "verify outputs",
		fmt.Sprintf("expected artifact(s) not produced: %s", strings.Join(missing, ", ")), nil)
}
