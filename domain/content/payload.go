package content

import (
	"strings"

	pkgerrors "castfeed-backend/pkg/errors"
)

// Type enumerates the authorable content shapes
type Type string

const (
	TypeShort  Type = "short"
	TypeBlog   Type = "blog"
	TypeImage  Type = "image"
	TypeRecast Type = "recast"
	TypeQuote  Type = "quote"
)

// Valid reports whether t is a known content type
func (t Type) Valid() bool {
	switch t {
	case TypeShort, TypeBlog, TypeImage, TypeRecast, TypeQuote:
		return true
	}
	return false
}

// ParseType converts a string into a content Type
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", pkgerrors.NewValidationError("unknown content type: " + s)
	}
	return t, nil
}

// IsDerived reports whether the type references another piece of content
func (t Type) IsDerived() bool {
	return t == TypeRecast || t == TypeQuote
}

const (
	maxMessageLength = 5000
	maxHeaderLength  = 280
	maxPhotos        = 10
)

// Link is an outbound reference carried inside a payload
type Link struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Payload carries the authored body of a piece of content. Which fields are
// required depends on the content type; ValidateFor enforces the shape.
type Payload struct {
	Message string   `json:"message,omitempty"`
	Header  string   `json:"header,omitempty"`
	Photos  []string `json:"photo,omitempty"`
	Links   []Link   `json:"link,omitempty"`
}

// ValidateFor checks the payload against the shape rules of the given type.
// A recast carries no authored body of its own; a quote must carry the
// quoting commentary.
func (p Payload) ValidateFor(t Type) error {
	if len(p.Message) > maxMessageLength {
		return pkgerrors.NewValidationError("message exceeds maximum length")
	}
	if len(p.Header) > maxHeaderLength {
		return pkgerrors.NewValidationError("header exceeds maximum length")
	}
	if len(p.Photos) > maxPhotos {
		return pkgerrors.NewValidationError("too many photos")
	}

	switch t {
	case TypeShort:
		if strings.TrimSpace(p.Message) == "" {
			return pkgerrors.NewValidationError("short content requires a message")
		}
	case TypeBlog:
		if strings.TrimSpace(p.Header) == "" {
			return pkgerrors.NewValidationError("blog content requires a header")
		}
		if strings.TrimSpace(p.Message) == "" {
			return pkgerrors.NewValidationError("blog content requires a message")
		}
	case TypeImage:
		if len(p.Photos) == 0 {
			return pkgerrors.NewValidationError("image content requires at least one photo")
		}
	case TypeRecast:
		if p.Message != "" || p.Header != "" || len(p.Photos) > 0 {
			return pkgerrors.NewValidationError("recast cannot carry its own payload")
		}
	case TypeQuote:
		if strings.TrimSpace(p.Message) == "" {
			return pkgerrors.NewValidationError("quote requires a message")
		}
	default:
		return pkgerrors.NewValidationError("unknown content type: " + string(t))
	}
	return nil
}

// Hashtags extracts the distinct lowercase hashtags from the message and
// header, in order of first appearance.
func (p Payload) Hashtags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, field := range []string{p.Header, p.Message} {
		for _, word := range strings.Fields(field) {
			if !strings.HasPrefix(word, "#") {
				continue
			}
			tag := strings.ToLower(strings.TrimFunc(word[1:], func(r rune) bool {
				return !isTagRune(r)
			}))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

func isTagRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
