package sdk

import (
	"time"

	"github.com/proxyscript/script-sdk/go/domain/entities"
)

// Finding is a finding saved by the host.
type Finding struct {
	createdAt   time.Time
	id          string
	title       string
	description string
	reporter    string
	requestID   string
}

// FindingFromWire builds a Finding from its wire form.
func FindingFromWire(w entities.FindingWire) *Finding {
	return &Finding{
		createdAt:   w.CreatedAt,
		id:          w.ID,
		title:       w.Title,
		description: w.Description,
		reporter:    w.Reporter,
		requestID:   w.RequestID,
	}
}

func (f *Finding) ID() string { return f.id }

func (f *Finding) Title() string { return f.title }

func (f *Finding) Description() string { return f.description }

func (f *Finding) Reporter() string { return f.reporter }

// RequestID is the id of the request the finding was reported on.
func (f *Finding) RequestID() string { return f.requestID }

func (f *Finding) CreatedAt() time.Time { return f.createdAt }

// FindingSpec describes a finding to create.
type FindingSpec struct {
	// Request is the request the finding is attached to.
	Request *Request `validate:"required"`

	Title       string `validate:"required,max=512"`
	Description string
	Reporter    string `validate:"required,max=128"`
}
