// Package claims models a user's response to an opportunity as a tagged
// union keyed by the opportunity's post type:
//
//	job          → Application
//	auction      → Bid
//	tender       → Proposal
//	announcement → Interest
//
// Each variant has its own payload type with a Validate method; Decode turns
// a raw JSON body into the payload for a given kind and rejects bodies shaped
// for another variant.
package claims

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

// Kind names a claim variant.
type Kind string

const (
	KindApplication Kind = "application"
	KindBid         Kind = "bid"
	KindProposal    Kind = "proposal"
	KindInterest    Kind = "interest"
)

var kindByPostType = map[models.PostType]Kind{
	models.PostTypeJob:          KindApplication,
	models.PostTypeAuction:      KindBid,
	models.PostTypeTender:       KindProposal,
	models.PostTypeAnnouncement: KindInterest,
}

// KindFor returns the only claim kind accepted by opportunities of postType.
func KindFor(postType models.PostType) (Kind, bool) {
	k, ok := kindByPostType[postType]
	return k, ok
}

// Payload is one claim variant as submitted by a user.
type Payload interface {
	Kind() Kind
	Validate() error
}

const DefaultCurrency = "RWF"

// Contact preferences accepted on interest registrations.
const (
	ContactEmail = "email"
	ContactPhone = "phone"
	ContactAny   = "any"
)

type ApplicationPayload struct {
	CoverLetter  string `json:"coverLetter"`
	ResumeURL    string `json:"resumeUrl"`
	DocumentsURL string `json:"documentsUrl"`
}

type BidPayload struct {
	BidAmount    int64  `json:"bidAmount"`
	Currency     string `json:"currency"`
	Message      string `json:"message"`
	DocumentsURL string `json:"documentsUrl"`
}

type ProposalPayload struct {
	ProposalTitle       string `json:"proposalTitle"`
	ProposalDescription string `json:"proposalDescription"`
	ProposedAmount      *int64 `json:"proposedAmount"`
	Currency            string `json:"currency"`
	DocumentsURL        string `json:"documentsUrl"`
	CoverLetter         string `json:"coverLetter"`
}

type InterestPayload struct {
	Message           string `json:"message"`
	ContactPreference string `json:"contactPreference"`
	NotifyUpdates     bool   `json:"notifyUpdates"`
}

func NewApplication(coverLetter, resumeURL, documentsURL string) *ApplicationPayload {
	return &ApplicationPayload{CoverLetter: coverLetter, ResumeURL: resumeURL, DocumentsURL: documentsURL}
}

func NewBid(amount int64, currency, message, documentsURL string) *BidPayload {
	return &BidPayload{BidAmount: amount, Currency: currency, Message: message, DocumentsURL: documentsURL}
}

func NewProposal(title, description string, amount *int64, currency string) *ProposalPayload {
	return &ProposalPayload{ProposalTitle: title, ProposalDescription: description, ProposedAmount: amount, Currency: currency}
}

func NewInterest(message, contactPreference string, notifyUpdates bool) *InterestPayload {
	return &InterestPayload{Message: message, ContactPreference: contactPreference, NotifyUpdates: notifyUpdates}
}

func (*ApplicationPayload) Kind() Kind { return KindApplication }
func (*BidPayload) Kind() Kind         { return KindBid }
func (*ProposalPayload) Kind() Kind    { return KindProposal }
func (*InterestPayload) Kind() Kind    { return KindInterest }

func (p *ApplicationPayload) Validate() error {
	if strings.TrimSpace(p.CoverLetter) == "" && strings.TrimSpace(p.ResumeURL) == "" {
		return common.NewValidationError("coverLetter", "a cover letter or a resume is required")
	}
	return nil
}

func (p *BidPayload) Validate() error {
	ve := &common.ValidationError{}
	if p.BidAmount <= 0 {
		ve.Add("bidAmount", "must be greater than 0")
	}
	if p.Currency != "" && !validCurrency(p.Currency) {
		ve.Add("currency", "must be a 3-letter currency code")
	}
	return ve.OrNil()
}

func (p *ProposalPayload) Validate() error {
	ve := &common.ValidationError{}
	if strings.TrimSpace(p.ProposalTitle) == "" {
		ve.Add("proposalTitle", "is required")
	}
	if strings.TrimSpace(p.ProposalDescription) == "" {
		ve.Add("proposalDescription", "is required")
	}
	if p.ProposedAmount != nil && *p.ProposedAmount <= 0 {
		ve.Add("proposedAmount", "must be greater than 0")
	}
	if p.Currency != "" && !validCurrency(p.Currency) {
		ve.Add("currency", "must be a 3-letter currency code")
	}
	return ve.OrNil()
}

func (p *InterestPayload) Validate() error {
	switch p.ContactPreference {
	case "", ContactEmail, ContactPhone, ContactAny:
		return nil
	}
	return common.NewValidationError("contactPreference", "must be one of email, phone, any")
}

func validCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Decode parses body as the payload of kind. Fields that belong to another
// variant make the body invalid.
func Decode(kind Kind, body []byte) (Payload, error) {
	var p Payload
	switch kind {
	case KindApplication:
		p = &ApplicationPayload{}
	case KindBid:
		p = &BidPayload{}
	case KindProposal:
		p = &ProposalPayload{}
	case KindInterest:
		p = &InterestPayload{}
	default:
		return nil, fmt.Errorf("unknown claim kind %q", kind)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, decodeError(kind, err)
	}
	return p, nil
}

func decodeError(kind Kind, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return common.NewValidationError(typeErr.Field, "has the wrong type")
	}
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return common.NewValidationError(strings.Trim(field, `"`), fmt.Sprintf("is not accepted for a %s", kind))
	}
	return common.NewValidationError("body", "malformed JSON")
}
