package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/kardianos/osext"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/rvndudz/scheduled-music-console/internal/ctxhelper"
	"github.com/rvndudz/scheduled-music-console/internal/log"
)

const (
	apiBasePath = "/api"
	// Largest accepted upload - MP3 sets and cover art stay well below this
	maxUploadBytes = 64 << 20
)

// Defines an error that defines the HTTP status that should be returned
type httpStatuser interface {
	Status() int
}

// Defines an error that returns a machine-readable error code
type errorCoder interface {
	ErrorCode() string
}

// Defines an error that contains a data field with additional information
type dataBearer interface {
	Data() interface{}
}

type errorResponse struct {
	basicResponse
	// The error code
	Error   string      `json:"error"`
	Message string      `json:"errorMessage"`
	Details interface{} `json:"errorDetails,omitempty"`
}

// MakeHTTPHandler creates the main HTTP handler for the console service
func MakeHTTPHandler(
	es EventService,
	us UploadService,
	sServ SessionService,
	logger *logrus.Entry,
) http.Handler {
	r := mux.NewRouter()

	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
		httptransport.ServerBefore(makeContextInjector(logger)),
		httptransport.ServerBefore(makeSessionDecoder(sServ)),
	}

	// -- Event service --------------------------------
	{
		evEp := MakeEventEndpoints(es)

		// List
		r.Methods(http.MethodGet).Path(apiBasePath + "/events").Handler(httptransport.NewServer(
			evEp.List,
			decodeSearchRequest,
			encodeJSONResponse,
			options...,
		))

		// Create
		r.Methods(http.MethodPost).Path(apiBasePath + "/events").Handler(httptransport.NewServer(
			evEp.Create,
			decodeEventPayload,
			encodeJSONResponse,
			options...,
		))

		// DeleteExpired - registered before the {id} routes so "expired" is
		// not taken for an event ID
		r.Methods(http.MethodDelete).Path(apiBasePath + "/events/expired").Handler(httptransport.NewServer(
			evEp.DeleteExpired,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Get
		r.Methods(http.MethodGet).Path(apiBasePath + "/events/{id}").Handler(httptransport.NewServer(
			evEp.Get,
			decodeEventIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Update (partial)
		r.Methods(http.MethodPut).Path(apiBasePath + "/events/{id}").Handler(httptransport.NewServer(
			evEp.Update,
			decodeEventUpdate,
			encodeJSONResponse,
			options...,
		))

		// Delete
		r.Methods(http.MethodDelete).Path(apiBasePath + "/events/{id}").Handler(httptransport.NewServer(
			evEp.Delete,
			decodeEventIDFromPath,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Upload service -------------------------------
	{
		upEp := MakeUploadEndpoints(us)

		// UploadTrack
		r.Methods(http.MethodPost).Path(apiBasePath + "/uploads/track").Handler(httptransport.NewServer(
			upEp.Track,
			decodeFileUpload,
			encodeJSONResponse,
			options...,
		))

		// UploadCover
		r.Methods(http.MethodPost).Path(apiBasePath + "/uploads/cover").Handler(httptransport.NewServer(
			upEp.Cover,
			decodeFileUpload,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Session service ------------------------------
	{
		sEp := MakeSessionEndpoints(sServ)

		// Login
		r.Methods(http.MethodPost).Path(apiBasePath + "/login").Handler(httptransport.NewServer(
			sEp.Login,
			decodeLoginRequest,
			encodeJSONResponse,
			options...,
		))

		// Logout
		r.Methods(http.MethodPost).Path(apiBasePath + "/logout").Handler(httptransport.NewServer(
			sEp.Logout,
			decodeToken,
			encodeJSONResponse,
			options...,
		))

		// WhoAmI
		r.Methods(http.MethodGet).Path(apiBasePath + "/whoami").Handler(httptransport.NewServer(
			sEp.WhoAmI,
			decodeToken,
			encodeJSONResponse,
			options...,
		))
	}

	// Simple alive answer for checking if HTTP can be reached
	r.Methods(http.MethodGet).Path("/alive").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		data := map[string]bool{"ok": true}
		json.NewEncoder(w).Encode(data)
	})

	// Plain file service for the UI serving everything from the "ui" folder right beside the application executable
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		panic(err)
	}
	uiDir := filepath.Join(execDir, "ui")
	r.Methods(http.MethodGet).PathPrefix("/").Handler(http.FileServer(http.Dir(uiDir)))

	return r
}

// decodeNilRequest just does nothing with the request. It is used for endpoints that don't need anything to be passed
func decodeNilRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	return nil, nil
}

// decodeEventPayload reads the sparse event field set from the request's JSON body
func decodeEventPayload(_ context.Context, r *http.Request) (interface{}, error) {
	payload := map[string]interface{}{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return payload, nil
}

// decodeEventUpdate combines the sparse payload from the body with the event ID from the path
func decodeEventUpdate(ctx context.Context, r *http.Request) (interface{}, error) {
	payload, err := decodeEventPayload(ctx, r)
	if err != nil {
		return nil, err
	}
	id, err := decodeEventIDFromPath(ctx, r)
	if err != nil {
		return nil, err
	}
	return eventUpdateRequest{
		ID:      id.(string),
		Payload: payload.(map[string]interface{}),
	}, nil
}

// decodeEventIDFromPath gets the event ID from the "id" path variable provided by GoRilla
func decodeEventIDFromPath(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, ok := vars["id"]
	if !ok || id == "" {
		return nil, MakeError(http.StatusBadRequest, ErrCodeValidationFailed, "No event ID provided")
	}
	return id, nil
}

// decodeFileUpload reads the uploaded file from the "file" part of a multipart form
func decodeFileUpload(_ context.Context, r *http.Request) (interface{}, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalUpload,
			fmt.Sprintf("Failed to parse multipart form: %v", err),
		)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalUpload, "No file provided")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalUpload,
			fmt.Sprintf("Failed to read uploaded file: %v", err),
		)
	}
	return fileUploadRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// decodeLoginRequest decodes a login request from the JSON body
func decodeLoginRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return req, nil
}

// decodeToken gets the token from the call's context
func decodeToken(ctx context.Context, r *http.Request) (request interface{}, err error) {
	session := ctxhelper.Session(ctx)
	if session == nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeNotLoggedIn,
			"You need an active session for this operation",
		)
	}
	return session.ID, nil
}

// decodePaginationRequest reads the pagination information from the request's query variables
func decodePaginationRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	val := r.URL.Query()
	pag := Pagination{}
	if i, err := strconv.ParseUint(val.Get("offset"), 10, 64); err == nil {
		pag.Offset = uint(i)
	}
	if i, err := strconv.ParseUint(val.Get("limit"), 10, 64); err == nil {
		pag.Limit = uint(i)
	}
	return pag, nil
}

// decodeSearchRequest decodes the parameters of a search by checking the GET variables "search", "limit" and "offset"
func decodeSearchRequest(ctx context.Context, r *http.Request) (request interface{}, err error) {
	val := r.URL.Query()
	pag, _ := decodePaginationRequest(ctx, r)
	search := Search{
		Search:     val.Get("search"),
		Pagination: pag.(Pagination),
	}
	return search, nil
}

// Encodes a typical JSON response
func encodeJSONResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

// Builds an error response based on the incoming error
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		panic("encodeError with nil error")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if st, ok := err.(httpStatuser); ok {
		w.WriteHeader(st.Status())
	} else {
		w.WriteHeader(http.StatusInternalServerError)
	}
	ret := errorResponse{
		basicResponse: basicResponse{false, nil},
		Message:       err.Error(),
		Error:         ErrCodeUnknown,
	}
	if cd, ok := err.(errorCoder); ok {
		ret.Error = cd.ErrorCode()
	}
	if db, ok := err.(dataBearer); ok {
		if data := db.Data(); data != nil {
			if err, ok := data.(error); ok {
				ret.Details = err.Error()
			} else {
				ret.Details = data
			}
		}
	}
	json.NewEncoder(w).Encode(&ret)
}

// makeSessionDecoder returns a function that is used in every HTTP call to decode the session used, if a session
// token is sent by the client
func makeSessionDecoder(s SessionService) httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		token := strings.TrimSpace(r.Header.Get("token"))
		logger := ctxhelper.Logger(ctx)
		if token != "" {
			// Try to load the session's data
			sess, user, err := s.GetContents(ctx, token, true)
			if err != nil {
				logger.WithError(err).WithField(log.FldSession, token).Error("Failed to retrieve session information")
				return ctx
			}
			if sess == nil || user == nil {
				// Nobody logged in
				return ctx
			}
			ctx = context.WithValue(ctx, ctxhelper.KeySession, *sess)
			ctx = context.WithValue(ctx, ctxhelper.KeyUser, *user)
			ctx = context.WithValue(ctx, ctxhelper.KeyLogger, logger.WithFields(logrus.Fields{
				log.FldSession: sess.ID,
				log.FldUser:    user.ID,
			}))
		}
		return ctx
	}
}

func makeContextInjector(logger *logrus.Entry) httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		return context.WithValue(ctx, ctxhelper.KeyLogger, logger)
	}
}
