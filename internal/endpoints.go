package internal

import (
	"fmt"
	"time"

	"github.com/go-kit/kit/endpoint"
	"golang.org/x/net/context"
)

// EventEndpoints is a collection of endpoints for working with the event service
type EventEndpoints struct {
	List          endpoint.Endpoint
	Get           endpoint.Endpoint
	Create        endpoint.Endpoint
	Update        endpoint.Endpoint
	Delete        endpoint.Endpoint
	DeleteExpired endpoint.Endpoint
}

// UploadEndpoints is a collection of endpoints for uploading media files
type UploadEndpoints struct {
	Track endpoint.Endpoint
	Cover endpoint.Endpoint
}

// SessionEndpoints is a collection of endpoints for working with the session service
type SessionEndpoints struct {
	Login  endpoint.Endpoint
	Logout endpoint.Endpoint
	WhoAmI endpoint.Endpoint
}

// The base for all responses which always contains an "ok" property to show if the call was successful and a
// data element containing the result of the request
type basicResponse struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data,omitempty"`
}

type pagingResponse struct {
	Rows uint        `json:"rows"`
	List interface{} `json:"list"`
}

// A request patching a single event - the sparse payload carries only the
// fields to touch
type eventUpdateRequest struct {
	ID      string
	Payload map[string]interface{}
}

// A file sent through one of the upload endpoints
type fileUploadRequest struct {
	Filename    string
	ContentType string
	Data        []byte
}

// A request made when logging in
type loginRequest struct {
	User string `json:"user"`
	Pass string `json:"password"`
}

// -- Events -----------------------------------------------------------------------------------------------------------

// MakeEventEndpoints builds the endpoints needed to communicate with the Event Service
func MakeEventEndpoints(s EventService) EventEndpoints {
	return EventEndpoints{
		List:          makeListEventsEndpoint(s),
		Get:           makeGetEventEndpoint(s),
		Create:        EnsureOperatorLoggedIn(makeCreateEventEndpoint(s)),
		Update:        EnsureOperatorLoggedIn(makeUpdateEventEndpoint(s)),
		Delete:        EnsureOperatorLoggedIn(makeDeleteEventEndpoint(s)),
		DeleteExpired: EnsureOperatorLoggedIn(makeDeleteExpiredEndpoint(s)),
	}
}

func makeListEventsEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		se, ok := request.(Search)
		if !ok {
			return nil, fmt.Errorf("illegal search parameter")
		}
		list, numRows, err := s.List(ctx, &se)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, pagingResponse{numRows, list}}, nil
	}
}

func makeGetEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("illegal event ID")
		}
		ev, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, ev}, nil
	}
}

func makeCreateEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		payload, ok := request.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("illegal event payload")
		}
		ev, err := s.Create(ctx, payload)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, ev}, nil
	}
}

func makeUpdateEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(eventUpdateRequest)
		if !ok {
			return nil, fmt.Errorf("illegal event update request")
		}
		ev, err := s.Update(ctx, req.ID, req.Payload)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, ev}, nil
	}
}

func makeDeleteEventEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("illegal event ID")
		}
		res, err := s.Delete(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, res}, nil
	}
}

func makeDeleteExpiredEndpoint(s EventService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		res, err := s.DeleteExpired(ctx, time.Now())
		if err != nil {
			return nil, err
		}
		return basicResponse{true, res}, nil
	}
}

// -- Uploads ----------------------------------------------------------------------------------------------------------

// MakeUploadEndpoints builds the endpoints for uploading media files
func MakeUploadEndpoints(s UploadService) UploadEndpoints {
	return UploadEndpoints{
		Track: EnsureOperatorLoggedIn(makeUploadTrackEndpoint(s)),
		Cover: EnsureOperatorLoggedIn(makeUploadCoverEndpoint(s)),
	}
}

func makeUploadTrackEndpoint(s UploadService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(fileUploadRequest)
		if !ok {
			return nil, fmt.Errorf("illegal upload request")
		}
		track, err := s.UploadTrack(ctx, req.Filename, req.Data)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, track}, nil
	}
}

func makeUploadCoverEndpoint(s UploadService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(fileUploadRequest)
		if !ok {
			return nil, fmt.Errorf("illegal upload request")
		}
		cover, err := s.UploadCover(ctx, req.Filename, req.ContentType, req.Data)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, cover}, nil
	}
}

// -- Sessions ---------------------------------------------------------------------------------------------------------

// MakeSessionEndpoints builds the endpoints needed to communicate with the Session Service
func MakeSessionEndpoints(s SessionService) SessionEndpoints {
	return SessionEndpoints{
		Login:  makeLoginEndpoint(s),
		Logout: makeLogoutEndpoint(s),
		WhoAmI: makeWhoAmIEndpoint(s),
	}
}

func makeLoginEndpoint(s SessionService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		se, ok := request.(loginRequest)
		if !ok {
			return nil, fmt.Errorf("illegal login request")
		}
		si, err := s.Login(ctx, se.User, se.Pass)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, si}, nil
	}
}

func makeLogoutEndpoint(s SessionService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("illegal session token")
		}
		if err := s.Logout(ctx, id); err != nil {
			return nil, err
		}
		return basicResponse{true, nil}, nil
	}
}

func makeWhoAmIEndpoint(s SessionService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("illegal session token")
		}
		si, err := s.WhoAmI(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, si}, nil
	}
}
