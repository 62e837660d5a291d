package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/tharunK03/RealEstate/internal/adapter/auth"
	"github.com/tharunK03/RealEstate/internal/app"
	"github.com/tharunK03/RealEstate/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

// NewAPI mounts a Huma API on router with bearer authentication wired in.
func NewAPI(router chi.Router, title, version string, verifier *auth.Verifier) huma.API {
	config := huma.DefaultConfig(title, version)
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		auth.SchemeName: auth.SecurityScheme(),
	}

	api := humachi.New(router, config)
	api.UseMiddleware(auth.Middleware(api, verifier))
	return api
}

var bearer = []map[string][]string{{auth.SchemeName: {}}}

// ListingResponse is the API representation of a listing.
type ListingResponse struct {
	ID           string   `json:"id" doc:"Unique identifier"`
	OwnerID      string   `json:"owner_id" doc:"Seller who submitted the listing"`
	Status       string   `json:"status" doc:"Approval stage"`
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	PropertyType string   `json:"property_type"`
	AreaSize     float64  `json:"area_size"`
	Price        float64  `json:"price"`
	Images       []string `json:"images" doc:"Image references in display order"`
	Documents    []string `json:"documents" doc:"Document references"`
	CreatedAt    string   `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt    string   `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toListingResponse(l domain.Listing) ListingResponse {
	return ListingResponse{
		ID:           l.ID,
		OwnerID:      l.OwnerID,
		Status:       string(l.Status),
		Title:        l.Attributes.Title,
		Location:     l.Attributes.Location,
		PropertyType: l.Attributes.PropertyType,
		AreaSize:     l.Attributes.AreaSize,
		Price:        l.Attributes.Price,
		Images:       l.Assets.Images,
		Documents:    l.Assets.Documents,
		CreatedAt:    l.CreatedAt.Format(timeLayout),
		UpdatedAt:    l.UpdatedAt.Format(timeLayout),
	}
}

func toListingResponses(listings []domain.Listing) []ListingResponse {
	resp := make([]ListingResponse, len(listings))
	for i, l := range listings {
		resp[i] = toListingResponse(l)
	}
	return resp
}

// --- Submit Listing ---

type SubmitListingInput struct {
	Body struct {
		Title        string   `json:"title" minLength:"1" maxLength:"255"`
		Location     string   `json:"location" minLength:"1" maxLength:"500" doc:"Street address"`
		PropertyType string   `json:"property_type" minLength:"1" maxLength:"100" doc:"e.g. house, apartment, land"`
		AreaSize     float64  `json:"area_size" exclusiveMinimum:"0" doc:"Area in square metres"`
		Price        float64  `json:"price" exclusiveMinimum:"0"`
		Images       []string `json:"images" minItems:"1" maxItems:"5" doc:"Image references from the asset store"`
		Documents    []string `json:"documents" minItems:"1" maxItems:"5" doc:"Document references from the asset store"`
	}
}

type ListingOutput struct {
	Body ListingResponse
}

type ListingsOutput struct {
	Body []ListingResponse
}

// --- Get Listing ---

type GetListingInput struct {
	ID string `path:"id" doc:"Listing ID"`
}

// --- List Listings ---

type ListListingsInput struct {
	Status string `query:"status" required:"false" default:"listed" enum:"submitted_for_review,admin_approved,agent_verified,final_approved,listed" doc:"Approval stage to browse"`
}

type ListAllListingsInput struct {
	Status string `query:"status" required:"false" doc:"Filter by approval stage"`
	Limit  int    `query:"limit" required:"false" default:"50" minimum:"0" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

// --- Transition ---

type TransitionInput struct {
	ID string `path:"id" doc:"Listing ID"`
}

type transitionRoute struct {
	action      domain.Action
	operationID string
	path        string
	summary     string
}

var transitionRoutes = []transitionRoute{
	{domain.ActionApprove, "approve-listing", "/api/v1/listings/{id}/approve", "Approve a submitted listing for agent verification (admin)"},
	{domain.ActionVerify, "verify-listing", "/api/v1/listings/{id}/verify", "Confirm a listing's legitimacy (agent)"},
	{domain.ActionFinalApprove, "final-approve-listing", "/api/v1/listings/{id}/final-approve", "Give final approval to a verified listing (admin)"},
	{domain.ActionPublish, "publish-listing", "/api/v1/listings/{id}/publish", "Publish a listing to buyers (admin)"},
}

// --- Users ---

// UserResponse is the API representation of a user.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at" doc:"Registration timestamp (ISO 8601)"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(timeLayout),
	}
}

type RegisterUserInput struct {
	Body struct {
		Username string `json:"username" minLength:"1" maxLength:"100"`
		Email    string `json:"email" format:"email" maxLength:"255"`
		Role     string `json:"role" enum:"seller,agent,admin,buyer"`
	}
}

type UserOutput struct {
	Body UserResponse
}

type GetUserInput struct {
	ID string `path:"id" doc:"User ID"`
}

// Register adds all listing and user API routes to the Huma API.
func Register(api huma.API, listings *app.ListingService, users *app.UserService) {
	huma.Register(api, huma.Operation{
		OperationID:   "register-user",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Register a user",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterUserInput) (*UserOutput, error) {
		user, err := users.Register(ctx, input.Body.Username, input.Body.Email, domain.Role(input.Body.Role))
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &UserOutput{Body: toUserResponse(user)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get a user by ID",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, func(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
		user, err := users.Get(ctx, auth.ActorFrom(ctx), input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &UserOutput{Body: toUserResponse(user)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "submit-listing",
		Method:        http.MethodPost,
		Path:          "/api/v1/listings",
		Summary:       "Submit a listing for review (seller)",
		Tags:          []string{"Listings"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SubmitListingInput) (*ListingOutput, error) {
		listing, err := listings.Submit(ctx, auth.ActorFrom(ctx), app.SubmitInput{
			Attributes: domain.Attributes{
				Title:        input.Body.Title,
				Location:     input.Body.Location,
				PropertyType: input.Body.PropertyType,
				AreaSize:     input.Body.AreaSize,
				Price:        input.Body.Price,
			},
			Assets: domain.Assets{
				Images:    input.Body.Images,
				Documents: input.Body.Documents,
			},
		})
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ListingOutput{Body: toListingResponse(listing)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-listings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings",
		Summary:     "List listings in one approval stage",
		Tags:        []string{"Listings"},
	}, func(ctx context.Context, input *ListListingsInput) (*ListingsOutput, error) {
		found, err := listings.ListByStatus(ctx, auth.ActorFrom(ctx), domain.Status(input.Status))
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ListingsOutput{Body: toListingResponses(found)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-my-listings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/mine",
		Summary:     "List the caller's own submissions (seller)",
		Tags:        []string{"Listings"},
		Security:    bearer,
	}, func(ctx context.Context, _ *struct{}) (*ListingsOutput, error) {
		found, err := listings.ListMine(ctx, auth.ActorFrom(ctx))
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ListingsOutput{Body: toListingResponses(found)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-all-listings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/all",
		Summary:     "List listings in every stage (admin, agent)",
		Tags:        []string{"Listings"},
		Security:    bearer,
	}, func(ctx context.Context, input *ListAllListingsInput) (*ListingsOutput, error) {
		filter := domain.ListFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.Status(input.Status)
			if !s.Valid() {
				return nil, huma.Error422UnprocessableEntity("unknown status", &huma.ErrorDetail{
					Location: "query.status",
					Value:    input.Status,
				})
			}
			filter.Status = &s
		}

		found, err := listings.ListAll(ctx, auth.ActorFrom(ctx), filter)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ListingsOutput{Body: toListingResponses(found)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-listing",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}",
		Summary:     "Get a listing by ID",
		Tags:        []string{"Listings"},
	}, func(ctx context.Context, input *GetListingInput) (*ListingOutput, error) {
		listing, err := listings.Get(ctx, auth.ActorFrom(ctx), input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ListingOutput{Body: toListingResponse(listing)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-pending-listings",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/listings/pending",
		Summary:     "List listings awaiting admin review",
		Tags:        []string{"Admin"},
		Security:    bearer,
	}, func(ctx context.Context, _ *struct{}) (*ListingsOutput, error) {
		found, err := listings.ListPending(ctx, auth.ActorFrom(ctx))
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ListingsOutput{Body: toListingResponses(found)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-agent-listings",
		Method:      http.MethodGet,
		Path:        "/api/v1/agent/listings",
		Summary:     "List listings awaiting agent verification",
		Tags:        []string{"Agent"},
		Security:    bearer,
	}, func(ctx context.Context, _ *struct{}) (*ListingsOutput, error) {
		found, err := listings.ListForAgent(ctx, auth.ActorFrom(ctx))
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ListingsOutput{Body: toListingResponses(found)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-published-listings",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/listings",
		Summary:     "List published listings",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, _ *struct{}) (*ListingsOutput, error) {
		found, err := listings.ListPublished(ctx)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ListingsOutput{Body: toListingResponses(found)}, nil
	})

	for _, route := range transitionRoutes {
		huma.Register(api, huma.Operation{
			OperationID: route.operationID,
			Method:      http.MethodPost,
			Path:        route.path,
			Summary:     route.summary,
			Tags:        []string{"Workflow"},
			Security:    bearer,
		}, func(ctx context.Context, input *TransitionInput) (*ListingOutput, error) {
			listing, err := listings.Transition(ctx, auth.ActorFrom(ctx), input.ID, route.action)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &ListingOutput{Body: toListingResponse(listing)}, nil
		})
	}

	huma.Register(api, huma.Operation{
		OperationID:   "reject-listing",
		Method:        http.MethodDelete,
		Path:          "/api/v1/listings/{id}",
		Summary:       "Reject and remove a submitted listing (admin)",
		Tags:          []string{"Workflow"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *TransitionInput) (*struct{}, error) {
		if _, err := listings.Transition(ctx, auth.ActorFrom(ctx), input.ID, domain.ActionReject); err != nil {
			return nil, toHumaError(ctx, err)
		}
		return nil, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(ctx context.Context, err error) error {
	if errors.Is(err, domain.ErrUnauthenticated) {
		return huma.Error401Unauthorized("authentication required")
	}

	if errors.Is(err, domain.ErrListingNotFound) {
		return huma.Error404NotFound("listing not found")
	}

	if errors.Is(err, domain.ErrUserNotFound) {
		return huma.Error404NotFound("user not found")
	}

	var forbidden *domain.ForbiddenError
	if errors.As(err, &forbidden) {
		return huma.Error403Forbidden(forbidden.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error409Conflict(trErr.Error(), currentStatus(trErr.Current))
	}

	var stateErr *domain.InvalidStateError
	if errors.As(err, &stateErr) {
		return huma.Error409Conflict(stateErr.Error(), currentStatus(stateErr.Current))
	}

	var cmErr *domain.ConcurrentModificationError
	if errors.As(err, &cmErr) {
		return huma.Error409Conflict(cmErr.Error(), currentStatus(cmErr.Actual))
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		details := make([]error, len(vErr.Fields))
		for i, f := range vErr.Fields {
			details[i] = &huma.ErrorDetail{
				Message:  "missing or invalid",
				Location: "body." + f,
			}
		}
		return huma.Error422UnprocessableEntity(vErr.Error(), details...)
	}

	var emailErr *domain.EmailConflictError
	if errors.As(err, &emailErr) {
		return huma.Error409Conflict(emailErr.Error())
	}

	slog.ErrorContext(ctx, "request failed", "error", err)
	return huma.Error500InternalServerError("internal server error")
}

func currentStatus(s domain.Status) error {
	return &huma.ErrorDetail{
		Message:  "current status",
		Location: "status",
		Value:    string(s),
	}
}
