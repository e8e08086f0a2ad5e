package reporter

import (
	"sort"
	"strings"

	"github.com/estafette/estafette-teamcity-tools/pkg/clients/teamcityapi"
)

// ExpandTemplate replaces every __field__ token in the template with the build attribute of that name
func ExpandTemplate(template string, build teamcityapi.Build) string {

	fields := build.TemplateFields()

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		template = strings.ReplaceAll(template, "__"+key+"__", fields[key])
	}

	return template
}
