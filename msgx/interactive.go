package msgx

import (
	"fmt"
	"unicode/utf8"
)

// Limits enforced before an interactive message reaches the provider.
// Lengths count characters, not bytes.
const (
	MaxButtons        = 3
	MaxButtonTitle    = 20
	MaxButtonID       = 256
	MaxHeaderLength   = 60
	MaxFooterLength   = 60
	MaxSections       = 10
	MaxListRows       = 10
	MaxListButtonText = 20
	MaxSectionTitle   = 24
	MaxRowID          = 200
	MaxRowTitle       = 24
	MaxRowDescription = 72
)

// ========== Raw Payloads ==========

// ButtonInput is a reply button as received from a caller. Nil fields were
// missing from the payload.
type ButtonInput struct {
	ID    *string `json:"id"`
	Title *string `json:"title"`
}

// RowInput is a list row as received from a caller
type RowInput struct {
	ID          *string `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description,omitempty"`
}

// SectionInput is a list section as received from a caller. Rows is nil
// when the "rows" key was missing.
type SectionInput struct {
	Title *string     `json:"title,omitempty"`
	Rows  *[]RowInput `json:"rows"`
}

// ========== Normalized Values ==========

type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Row is a normalized list row. Description is nil when empty.
type Row struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type Section struct {
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// SectionList is the action part of a list message
type SectionList struct {
	ButtonText string    `json:"button_text"`
	Sections   []Section `json:"sections"`
}

// ========== Validation ==========

func invalid(format string, args ...any) error {
	return Registry.NewWithMessage(ErrInvalidInteractive, fmt.Sprintf(format, args...))
}

func tooLong(s string, limit int) bool {
	return utf8.RuneCountInString(s) > limit
}

func validateHeaderFooter(header, footer string) error {
	if tooLong(header, MaxHeaderLength) {
		return invalid("Header text must be max %d characters", MaxHeaderLength)
	}
	if tooLong(footer, MaxFooterLength) {
		return invalid("Footer text must be max %d characters", MaxFooterLength)
	}
	return nil
}

// ValidateButtons checks a reply-button payload and returns the buttons in
// their original order. Checks run in a fixed order and the first failure
// is returned as an ErrInvalidInteractive error.
func ValidateButtons(buttons []ButtonInput, header, footer string) ([]Button, error) {
	if len(buttons) > MaxButtons {
		return nil, invalid("Maximum %d buttons allowed", MaxButtons)
	}
	if err := validateHeaderFooter(header, footer); err != nil {
		return nil, err
	}

	out := make([]Button, 0, len(buttons))
	for _, btn := range buttons {
		if btn.ID == nil || btn.Title == nil {
			return nil, invalid("Each button must have 'id' and 'title' keys")
		}
		if tooLong(*btn.Title, MaxButtonTitle) {
			return nil, invalid("Button title '%s' exceeds %d characters", *btn.Title, MaxButtonTitle)
		}
		if tooLong(*btn.ID, MaxButtonID) {
			return nil, invalid("Button ID '%s' exceeds %d characters", *btn.ID, MaxButtonID)
		}
		out = append(out, Button{ID: *btn.ID, Title: *btn.Title})
	}

	return out, nil
}

// ValidateList checks a list payload and returns the normalized list.
//
// The total row count is checked on the raw sections, before any row is
// validated, so malformed rows still count toward MaxListRows. Sections
// left without rows are dropped from the result.
func ValidateList(buttonText string, sections []SectionInput, header, footer string) (SectionList, error) {
	if len(sections) > MaxSections {
		return SectionList{}, invalid("Maximum %d sections allowed", MaxSections)
	}
	if tooLong(buttonText, MaxListButtonText) {
		return SectionList{}, invalid("Button text must be max %d characters", MaxListButtonText)
	}
	if err := validateHeaderFooter(header, footer); err != nil {
		return SectionList{}, err
	}

	total := 0
	for _, s := range sections {
		if s.Rows != nil {
			total += len(*s.Rows)
		}
	}
	if total > MaxListRows {
		return SectionList{}, invalid("Maximum %d rows total across all sections", MaxListRows)
	}

	list := SectionList{ButtonText: buttonText, Sections: make([]Section, 0, len(sections))}
	for _, s := range sections {
		if s.Rows == nil {
			return SectionList{}, invalid("Each section must have a 'rows' array")
		}

		title := ""
		if s.Title != nil {
			title = *s.Title
		}
		if tooLong(title, MaxSectionTitle) {
			return SectionList{}, invalid("Section title '%s' exceeds %d characters", title, MaxSectionTitle)
		}

		rows := make([]Row, 0, len(*s.Rows))
		for _, r := range *s.Rows {
			row, err := validateRow(r)
			if err != nil {
				return SectionList{}, err
			}
			rows = append(rows, row)
		}

		if len(rows) == 0 {
			continue
		}
		list.Sections = append(list.Sections, Section{Title: title, Rows: rows})
	}

	return list, nil
}

func validateRow(r RowInput) (Row, error) {
	if r.ID == nil || r.Title == nil {
		return Row{}, invalid("Each row must have 'id' and 'title' keys")
	}
	if tooLong(*r.ID, MaxRowID) {
		return Row{}, invalid("Row ID '%s' exceeds %d characters", *r.ID, MaxRowID)
	}
	if tooLong(*r.Title, MaxRowTitle) {
		return Row{}, invalid("Row title '%s' exceeds %d characters", *r.Title, MaxRowTitle)
	}

	row := Row{ID: *r.ID, Title: *r.Title}
	if r.Description != nil && *r.Description != "" {
		if tooLong(*r.Description, MaxRowDescription) {
			return Row{}, invalid("Row description '%s' exceeds %d characters", *r.Description, MaxRowDescription)
		}
		desc := *r.Description
		row.Description = &desc
	}
	return row, nil
}
