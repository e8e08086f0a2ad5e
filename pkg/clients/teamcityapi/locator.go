package teamcityapi

import (
	"fmt"
	"strings"
)

const (
	locatorDimensionCount    = "count"
	locatorDimensionRunning  = "running"
	locatorDimensionCanceled = "canceled"
)

// AugmentLocator makes a build locator match running and canceled builds as well and caps it to the latest build.
// Running and canceled dimensions given by the caller are kept, any count dimension is replaced by count:1.
func AugmentLocator(locator string) string {

	dimensions := SplitLocator(locator)
	augmented := make([]string, 0, len(dimensions)+3)

	hasRunning := false
	hasCanceled := false
	for _, d := range dimensions {
		switch locatorDimensionName(d) {
		case locatorDimensionCount:
			continue
		case locatorDimensionRunning:
			if hasRunning {
				continue
			}
			hasRunning = true
		case locatorDimensionCanceled:
			if hasCanceled {
				continue
			}
			hasCanceled = true
		}
		augmented = append(augmented, d)
	}

	if !hasRunning {
		augmented = append(augmented, locatorDimensionRunning+":any")
	}
	if !hasCanceled {
		augmented = append(augmented, locatorDimensionCanceled+":any")
	}
	augmented = append(augmented, locatorDimensionCount+":1")

	return strings.Join(augmented, ",")
}

// SplitLocator splits a locator into its top-level dimensions; commas inside parentheses don't split
func SplitLocator(locator string) (dimensions []string) {

	depth := 0
	start := 0
	appendDimension := func(d string) {
		d = strings.TrimSpace(d)
		if d != "" {
			dimensions = append(dimensions, d)
		}
	}

	for i, r := range locator {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				appendDimension(locator[start:i])
				start = i + 1
			}
		}
	}
	appendDimension(locator[start:])

	return
}

func locatorDimensionName(dimension string) string {
	i := strings.Index(dimension, ":")
	if i < 0 {
		return ""
	}

	return strings.TrimSpace(dimension[:i])
}

// ArtifactChildrenHref returns the server-relative href listing the artifacts of a build under artifactsPath
func ArtifactChildrenHref(locator, artifactsPath string) string {
	artifactsPath = strings.TrimLeft(strings.ReplaceAll(artifactsPath, "\\", "/"), "/")

	return fmt.Sprintf("/httpAuth/app/rest/builds/%v/artifacts/children/%v", locator, artifactsPath)
}
