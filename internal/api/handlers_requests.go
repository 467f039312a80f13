package api

import "net/http"

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	requestorID, err := userID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req itemRequestCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeServiceError(w, r, validationError(err))
		return
	}

	created, err := s.svc.Requests.Create(r.Context(), requestorID, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemRequestResponse(created))
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	requestorID, err := userID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	requests, err := s.svc.Requests.ListOwn(r.Context(), requestorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemRequestResponses(requests))
}

func (s *HTTPServer) handleListAllRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.svc.Requests.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemRequestResponses(requests))
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	callerID, err := userID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	view, err := s.svc.Requests.GetByID(r.Context(), requestID, callerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemRequestViewResponse{
		itemRequestResponse: toItemRequestResponse(&view.ItemRequest),
		Items:               toItemResponses(view.Items),
	})
}
