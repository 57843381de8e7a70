package service

import (
	"fmt"
	"strings"
)

type Status struct {
	text string
}

func NewStatus(moduleName string, version string) Status {
	b := strings.Builder{}
	_, _ = fmt.Fprintf(&b, "module: %s\n", moduleName)
	_, _ = fmt.Fprintf(&b, "version: %s\n", version)
	b.WriteString("status: ok\n")
	return Status{text: b.String()}
}

// Text is fixed at construction and doesn't depend on traffic.
func (s Status) Text() string {
	return s.text
}
