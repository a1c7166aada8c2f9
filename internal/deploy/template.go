package deploy

import (
	"fmt"
	"regexp"
)

// Vars holds the values available to placeholder substitution, keyed by
// placeholder name without the braces.
type Vars map[string]string

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Substitute replaces every {{name}} token in s with its value from
// vars. An unknown name is an error so a typo never reaches the remote
// shell as a literal token. An empty value renders empty.
func Substitute(s string, vars Vars) (string, error) {
	var substErr error
	out := placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok {
			if substErr == nil {
				substErr = fmt.Errorf("unknown placeholder %s", match)
			}
			return match
		}
		return value
	})
	if substErr != nil {
		return "", substErr
	}
	return out, nil
}

// SubstituteAll applies Substitute to every element.
func SubstituteAll(args []string, vars Vars) ([]string, error) {
	out := make([]string, len(args))
	for i, arg := range args {
		rendered, err := Substitute(arg, vars)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		out[i] = rendered
	}
	return out, nil
}
