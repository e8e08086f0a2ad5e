package reporter

import (
	"fmt"
	"strings"
)

var serviceMessageEscaper = strings.NewReplacer(
	"|", "||",
	"'", "|'",
	"\n", "|n",
	"\r", "|r",
	"[", "|[",
	"]", "|]",
)

// ServiceMessageAttribute is a name='value' pair of a teamcity service message
type ServiceMessageAttribute struct {
	Name  string
	Value string
}

// EscapeServiceMessageValue escapes the characters teamcity treats as special inside service message values
func EscapeServiceMessageValue(value string) string {
	return serviceMessageEscaper.Replace(value)
}

// FormatServiceMessage returns ##teamcity[name attr='value' ...]
func FormatServiceMessage(name string, attributes ...ServiceMessageAttribute) string {
	var sb strings.Builder

	sb.WriteString("##teamcity[")
	sb.WriteString(name)
	for _, a := range attributes {
		fmt.Fprintf(&sb, " %v='%v'", a.Name, EscapeServiceMessageValue(a.Value))
	}
	sb.WriteString("]")

	return sb.String()
}

// FormatSingleValueServiceMessage returns ##teamcity[name 'value']
func FormatSingleValueServiceMessage(name, value string) string {
	return fmt.Sprintf("##teamcity[%v '%v']", name, EscapeServiceMessageValue(value))
}
