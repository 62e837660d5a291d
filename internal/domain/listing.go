package domain

import (
	"strings"
	"time"
)

// Status represents the approval stage of a listing.
type Status string

const (
	StatusSubmittedForReview Status = "submitted_for_review"
	StatusAdminApproved      Status = "admin_approved"
	StatusAgentVerified      Status = "agent_verified"
	StatusFinalApproved      Status = "final_approved"
	StatusListed             Status = "listed"

	// StatusRejected is the outcome of a rejection. It is never persisted:
	// a rejected listing is deleted.
	StatusRejected Status = "rejected"
)

// Statuses lists every persisted status in pipeline order.
var Statuses = []Status{
	StatusSubmittedForReview,
	StatusAdminApproved,
	StatusAgentVerified,
	StatusFinalApproved,
	StatusListed,
}

// Valid reports whether s is a status a stored listing may hold.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Action is a workflow step requested by an actor against a listing.
type Action string

const (
	ActionApprove      Action = "approve"
	ActionReject       Action = "reject"
	ActionVerify       Action = "verify"
	ActionFinalApprove Action = "final_approve"
	ActionPublish      Action = "publish"
)

// Transition defines a legal step of the approval pipeline: Role may apply
// Action to a listing in Src, moving it to Dst.
type Transition struct {
	Action Action
	Src    Status
	Dst    Status
	Role   Role
}

// Transitions is the complete approval workflow. Nothing outside this table
// decides where a listing may go next or who may move it there.
var Transitions = []Transition{
	{Action: ActionApprove, Src: StatusSubmittedForReview, Dst: StatusAdminApproved, Role: RoleAdmin},
	{Action: ActionReject, Src: StatusSubmittedForReview, Dst: StatusRejected, Role: RoleAdmin},
	{Action: ActionVerify, Src: StatusAdminApproved, Dst: StatusAgentVerified, Role: RoleAgent},
	{Action: ActionFinalApprove, Src: StatusAgentVerified, Dst: StatusFinalApproved, Role: RoleAdmin},
	{Action: ActionPublish, Src: StatusFinalApproved, Dst: StatusListed, Role: RoleAdmin},
}

// Permits reports whether role may perform action from at least one status.
func Permits(role Role, action Action) bool {
	for _, t := range Transitions {
		if t.Action == action && t.Role == role {
			return true
		}
	}
	return false
}

// KnownAction reports whether action appears in the transition table.
func KnownAction(action Action) bool {
	for _, t := range Transitions {
		if t.Action == action {
			return true
		}
	}
	return false
}

// QueueVisibility maps each status to the roles allowed to browse listings in
// it. A nil entry means the queue is public.
var QueueVisibility = map[Status][]Role{
	StatusSubmittedForReview: {RoleAdmin},
	StatusAdminApproved:      {RoleAdmin, RoleAgent},
	StatusAgentVerified:      {RoleAdmin},
	StatusFinalApproved:      {RoleAdmin},
	StatusListed:             nil,
}

// CanBrowse reports whether an actor with role may list listings in status.
func CanBrowse(role Role, status Status) bool {
	roles, ok := QueueVisibility[status]
	if !ok {
		return false
	}
	if roles == nil {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Attributes is the business data of a listing. It is fixed at submission.
type Attributes struct {
	Title        string
	Location     string
	PropertyType string
	AreaSize     float64
	Price        float64
}

// Assets holds ordered references to uploaded images and documents.
type Assets struct {
	Images    []string
	Documents []string
}

// MaxAssetsPerKind caps the number of images and of documents per listing.
const MaxAssetsPerKind = 5

// Listing is a property record progressing through the approval pipeline.
type Listing struct {
	ID         string
	OwnerID    string
	Status     Status
	Attributes Attributes
	Assets     Assets
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewListing creates a listing in the initial "submitted_for_review" state.
func NewListing(id, ownerID string, attrs Attributes, assets Assets) Listing {
	now := time.Now().UTC()
	return Listing{
		ID:         id,
		OwnerID:    ownerID,
		Status:     StatusSubmittedForReview,
		Attributes: attrs,
		Assets:     assets,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks that every required attribute and asset list is present.
// All problems are reported at once.
func Validate(attrs Attributes, assets Assets) error {
	var fields []string
	if strings.TrimSpace(attrs.Title) == "" {
		fields = append(fields, "title")
	}
	if strings.TrimSpace(attrs.Location) == "" {
		fields = append(fields, "location")
	}
	if strings.TrimSpace(attrs.PropertyType) == "" {
		fields = append(fields, "property_type")
	}
	if attrs.AreaSize <= 0 {
		fields = append(fields, "area_size")
	}
	if attrs.Price <= 0 {
		fields = append(fields, "price")
	}
	if !validRefs(assets.Images) {
		fields = append(fields, "images")
	}
	if !validRefs(assets.Documents) {
		fields = append(fields, "documents")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validRefs(refs []string) bool {
	if len(refs) == 0 || len(refs) > MaxAssetsPerKind {
		return false
	}
	for _, r := range refs {
		if strings.TrimSpace(r) == "" {
			return false
		}
	}
	return true
}
