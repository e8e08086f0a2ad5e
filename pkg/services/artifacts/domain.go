package artifacts

// DownloadParams selects which artifacts of which build to download and where to
type DownloadParams struct {
	Locator       string
	ArtifactsPath string
	Directory     string
	Flatten       bool
	DryRun        bool
}

// Artifact is a single artifact file of a remote build
type Artifact struct {
	// RelativePath is the path within the artifacts of the build, with forward slashes
	RelativePath string
	Size         int64
	ContentHref  string
	// TargetPath is the local path the artifact is (or would be) written to
	TargetPath string
}
