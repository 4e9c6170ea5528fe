package pgdump2mysql

import (
	"fmt"
	"regexp"
)

var newlineRe = regexp.MustCompile(`\r\n|\r|\n`)

// convertLineEnding converts all newline variations in content to the target style.
func convertLineEnding(content, lineEnding string) (string, error) {
	var target string
	switch lineEnding {
	case "LF", "":
		target = "\n"
	case "CR":
		target = "\r"
	case "CRLF":
		target = "\r\n"
	default:
		return "", fmt.Errorf("newline must be one of: LF, CR, CRLF")
	}
	return newlineRe.ReplaceAllString(content, target), nil
}
