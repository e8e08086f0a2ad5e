package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/estafette/estafette-teamcity-tools/pkg/api"
	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
	foundation "github.com/estafette/estafette-foundation"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var (
	ErrEmptyLocator       = errors.New("The build locator is empty")
	ErrUnsafeArtifactPath = errors.New("The artifact would be written outside of the target directory")
)

// Service downloads the artifacts of a remote build
type Service interface {
	DownloadArtifacts(ctx context.Context, params DownloadParams) (artifacts []Artifact, err error)
}

// NewService returns a new artifacts.Service
func NewService(config *api.Config, teamcityapiClient teamcityapi.Client) Service {
	return &service{
		config:            config,
		teamcityapiClient: teamcityapiClient,
		retryDelayMillis:  1000,
		createFile:        createFile,
	}
}

type service struct {
	config            *api.Config
	teamcityapiClient teamcityapi.Client
	retryDelayMillis  int
	createFile        func(name string) (io.WriteCloser, error)
}

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

func (s *service) DownloadArtifacts(ctx context.Context, params DownloadParams) (artifacts []Artifact, err error) {

	if params.Locator == "" {
		return nil, ErrEmptyLocator
	}
	if params.Directory == "" {
		params.Directory = "."
	}

	artifacts, err = s.crawl(ctx, teamcityapi.ArtifactChildrenHref(params.Locator, params.ArtifactsPath), "", params)
	if err != nil {
		return nil, err
	}

	artifacts = dropOverwrittenArtifacts(artifacts)

	log.Info().Msgf("Found %v artifacts for build %v", len(artifacts), params.Locator)

	if params.DryRun {
		for _, a := range artifacts {
			log.Info().Msgf("Would download %v to %v", a.RelativePath, a.TargetPath)
		}
		return artifacts, nil
	}

	// limit concurrency using a semaphore
	semaphore := semaphore.NewWeighted(int64(s.config.Artifacts.Concurrency))
	g, ctx := errgroup.WithContext(ctx)

	for _, a := range artifacts {
		a := a
		g.Go(func() error {
			err := semaphore.Acquire(ctx, 1)
			if err != nil {
				return err
			}
			defer semaphore.Release(1)

			return foundation.Retry(func() error {
				return s.download(ctx, a)
			}, foundation.DelayMillisecond(s.retryDelayMillis), foundation.Attempts(uint(s.config.Artifacts.Attempts)))
		})
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}

	return artifacts, nil
}

func (s *service) crawl(ctx context.Context, href, relativeDirectory string, params DownloadParams) (artifacts []Artifact, err error) {

	files, err := s.teamcityapiClient.GetArtifactFiles(ctx, href)
	if err != nil {
		return nil, err
	}

	for _, f := range files.Files {
		relativePath := path.Join(relativeDirectory, f.Name)

		if f.IsDirectory() {
			children, err := s.crawl(ctx, f.Children.Href, relativePath, params)
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, children...)
			continue
		}

		if f.Content == nil || f.Content.Href == "" {
			log.Warn().Msgf("Artifact %v has no content link, skipping", relativePath)
			continue
		}

		targetPath := filepath.Join(params.Directory, filepath.FromSlash(relativePath))
		if params.Flatten {
			targetPath = filepath.Join(params.Directory, f.Name)
		}
		if !isWithinDirectory(params.Directory, targetPath) {
			return nil, fmt.Errorf("%w: %v", ErrUnsafeArtifactPath, relativePath)
		}

		artifacts = append(artifacts, Artifact{
			RelativePath: relativePath,
			Size:         f.Size,
			ContentHref:  f.Content.Href,
			TargetPath:   targetPath,
		})
	}

	return artifacts, nil
}

// dropOverwrittenArtifacts keeps only the last artifact for every target path, since flattening can map several artifacts onto one file
func dropOverwrittenArtifacts(artifacts []Artifact) []Artifact {
	last := make(map[string]int, len(artifacts))
	for i, a := range artifacts {
		last[a.TargetPath] = i
	}

	kept := make([]Artifact, 0, len(last))
	for i, a := range artifacts {
		if last[a.TargetPath] != i {
			log.Warn().Msgf("Artifact %v is overwritten by %v, skipping", a.RelativePath, artifacts[last[a.TargetPath]].RelativePath)
			continue
		}
		kept = append(kept, a)
	}

	return kept
}

func isWithinDirectory(directory, targetPath string) bool {
	relativePath, err := filepath.Rel(filepath.Clean(directory), filepath.Clean(targetPath))
	if err != nil {
		return false
	}

	return relativePath != "." && relativePath != ".." && !strings.HasPrefix(relativePath, ".."+string(filepath.Separator))
}

func (s *service) download(ctx context.Context, artifact Artifact) (err error) {

	log.Info().Msgf("Downloading %v to %v", artifact.RelativePath, artifact.TargetPath)

	err = os.MkdirAll(filepath.Dir(artifact.TargetPath), 0755)
	if err != nil {
		return pkgerrors.Wrapf(err, "Failed creating directory for %v", artifact.TargetPath)
	}

	file, err := s.createFile(artifact.TargetPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "Failed creating file %v", artifact.TargetPath)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = pkgerrors.Wrapf(cerr, "Failed closing file %v", artifact.TargetPath)
		}
	}()

	err = s.teamcityapiClient.DownloadArtifact(ctx, artifact.ContentHref, file)
	if err != nil {
		return pkgerrors.Wrapf(err, "Failed downloading artifact %v", artifact.RelativePath)
	}

	return nil
}
