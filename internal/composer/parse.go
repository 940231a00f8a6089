package composer

import (
	"errors"
	"strings"
)

// ErrMalformedReply is returned when a reply carries none of the expected labels
var ErrMalformedReply = errors.New("malformed model reply")

const (
	typeLabel    = "TYPE:"
	subjectLabel = "SUBJECT:"
	bodyLabel    = "BODY:"
)

// ParseReply extracts the labelled lines of a model reply. Labels must start
// the line and are case-sensitive; when a label repeats the last one wins.
// A reply without any label yields the defaulted message and ErrMalformedReply.
func ParseReply(text string) (GeneratedMessage, error) {
	var typ, subject, body string
	seen := false

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, typeLabel):
			typ = strings.TrimSpace(strings.TrimPrefix(line, typeLabel))
			seen = true
		case strings.HasPrefix(line, subjectLabel):
			subject = strings.TrimSpace(strings.TrimPrefix(line, subjectLabel))
			seen = true
		case strings.HasPrefix(line, bodyLabel):
			body = strings.TrimSpace(strings.TrimPrefix(line, bodyLabel))
			seen = true
		}
	}

	msg := NewMessage(ParseCommitType(typ), subject, body)
	if !seen {
		return msg, ErrMalformedReply
	}
	return msg, nil
}
