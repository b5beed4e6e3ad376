package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RequirementsSentinel replaces a requirements summary that could not be produced.
const RequirementsSentinel = "No specific requirements found."

// ID is an identifier the listing service may send either as a JSON number or string.
type ID string

// UnmarshalJSON accepts both 123 and "123".
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Named is any dictionary entry the listing service references by id and name.
type Named struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

// Budget is the advertised contract value.
type Budget struct {
	Value    *float64 `json:"value,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// Status is the lifecycle status of a tender. The listing service sends it either as a
// bare label or as an {id, name} object.
type Status struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts "open" as well as {"id": 3, "name": "open"}.
func (s *Status) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = Status{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		*s = Status{Name: label}
		return nil
	default:
		type plain Status
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*s = Status(p)
		return nil
	}
}

// Contact is a named point of contact on a tender.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"mainEmail,omitempty"`
}

// Attachment is one entry of a tender's document manifest.
type Attachment struct {
	ID       ID     `json:"id"`
	FileName string `json:"fileName,omitempty"`
	Name     string `json:"name,omitempty"`
}

// TenderRecord is the full metadata of one tender as returned by the listing service.
type TenderRecord struct {
	ID           ID           `json:"id"`
	Title        string       `json:"name"`
	Organization Named        `json:"organization"`
	Donors       []Named      `json:"donors,omitempty"`
	Locations    []Named      `json:"locations,omitempty"`
	Sectors      []Named      `json:"sectors,omitempty"`
	Budget       Budget       `json:"amount"`
	PostedDate   string       `json:"postedDate,omitempty"`
	Deadline     string       `json:"deadline,omitempty"`
	Status       Status       `json:"status"`
	Description  string       `json:"description,omitempty"`
	Contacts     []Contact    `json:"contacts,omitempty"`
	Email        string       `json:"email,omitempty"`
	ContactEmail string       `json:"contactEmail,omitempty"`
	URL          string       `json:"url,omitempty"`
	Documents    []Attachment `json:"documents,omitempty"`
}

// AttachmentBlob is a downloaded tender document.
type AttachmentBlob struct {
	Filename string
	Data     []byte
}

// Analysis is the go/no-go answer of the model: the optional structured part and the
// narrative that came with it.
type Analysis struct {
	Recommendation *Recommendation
	Narrative      string
}

// EnrichedTender is a tender plus everything the pipeline learned about it.
type EnrichedTender struct {
	TenderRecord
	RequirementsSummary string
	Analysis            Analysis
	Attachments         []AttachmentBlob
}

// NewEnrichedTender starts enrichment with sentinel values in place.
func NewEnrichedTender(record TenderRecord) *EnrichedTender {
	return &EnrichedTender{
		TenderRecord:        record,
		RequirementsSummary: RequirementsSentinel,
	}
}

// NotificationBundle is the ordered set of segments published for one tender.
type NotificationBundle struct {
	TenderID       ID
	Header         string
	Summary        string
	Requirements   string
	Recommendation string
	Attachments    []AttachmentBlob
}
