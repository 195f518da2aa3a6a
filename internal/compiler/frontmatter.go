package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/adyingdeath/blog/internal/models"
)

// DefaultSummary is used when a document declares no summary.
const DefaultSummary = "nothing here..."

// dateLayouts are the accepted ISO-8601 shapes, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// rawFrontMatter is the decoding target for the front-matter block.
// Summary is a pointer so an absent key can be told apart from an empty one.
type rawFrontMatter struct {
	Title   string  `yaml:"title" toml:"title" json:"title"`
	Summary *string `yaml:"summary" toml:"summary" json:"summary"`
	Date    string  `yaml:"date" toml:"date" json:"date"`
}

// Validate checks the required fields.
func (fm *rawFrontMatter) Validate() error {
	return validation.ValidateStruct(fm,
		validation.Field(&fm.Title, validation.Required),
		validation.Field(&fm.Date, validation.Required, validation.By(isoDate)),
	)
}

func isoDate(value any) error {
	s, _ := value.(string)
	if _, err := ParseDate(s); err != nil {
		return errors.New("must be an ISO-8601 date")
	}
	return nil
}

// ParseDate parses an ISO-8601 date or timestamp.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// splitFrontMatter decodes the leading front-matter block of data and
// returns the body that follows it along with the number of source lines
// the block occupied.
func splitFrontMatter(source string, data []byte) (rawFrontMatter, []byte, int, error) {
	var raw rawFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &raw)
	if err != nil {
		return raw, nil, 0, &ParseError{Source: source, Line: 1, Reason: "malformed front-matter: " + err.Error(), Err: err}
	}
	offset := bytes.Count(data, []byte("\n")) - bytes.Count(body, []byte("\n"))
	if offset < 0 {
		offset = 0
	}
	return raw, body, offset, nil
}

// validateFrontMatter turns the decoded block into a typed, defaulted record.
func validateFrontMatter(source string, raw rawFrontMatter, body []byte, placeholder string) (models.FrontMatter, error) {
	raw.Title = strings.TrimSpace(raw.Title)
	raw.Date = strings.TrimSpace(raw.Date)
	if err := raw.Validate(); err != nil {
		return models.FrontMatter{}, newValidationError(source, err)
	}

	published, _ := ParseDate(raw.Date)
	summary := placeholder
	if raw.Summary != nil {
		summary = *raw.Summary
	}
	return models.FrontMatter{
		Title:     raw.Title,
		Summary:   summary,
		Date:      raw.Date,
		Content:   string(body),
		Published: published,
	}, nil
}
