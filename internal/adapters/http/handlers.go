package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"volunteerhub/internal/adapters/http/middleware"
	"volunteerhub/internal/application/orchestrators"
	"volunteerhub/internal/application/projections"
	accountDomain "volunteerhub/internal/domain/account"
	notificationDomain "volunteerhub/internal/domain/notification"
	oppDomain "volunteerhub/internal/domain/opportunity"
	organizationDomain "volunteerhub/internal/domain/organization"
	volunteerDomain "volunteerhub/internal/domain/volunteer"

	"github.com/google/uuid"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps domain errors onto HTTP status codes: missing entities
// are 404, duplicate effects 409, wrong lifecycle states 422, acting on an
// opportunity one has no standing in (ownership, membership) 403, and lost
// write races 503 so clients know to retry.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, oppDomain.ErrNotFound),
		errors.Is(err, oppDomain.ErrProofNotFound),
		errors.Is(err, volunteerDomain.ErrNotFound),
		errors.Is(err, organizationDomain.ErrNotFound),
		errors.Is(err, accountDomain.ErrNotFound),
		errors.Is(err, notificationDomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, oppDomain.ErrAlreadySignedUp),
		errors.Is(err, oppDomain.ErrDuplicateSubmission),
		errors.Is(err, oppDomain.ErrAlreadyCompleted),
		errors.Is(err, orchestrators.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, oppDomain.ErrOpportunityClosed),
		errors.Is(err, oppDomain.ErrOpportunityFull),
		errors.Is(err, oppDomain.ErrNoApprovedProofs),
		errors.Is(err, oppDomain.ErrProofImmutable),
		errors.Is(err, oppDomain.ErrProofNotPending):
		return http.StatusUnprocessableEntity
	case errors.Is(err, oppDomain.ErrNotOwner),
		errors.Is(err, oppDomain.ErrNotSignedUp):
		return http.StatusForbidden
	case errors.Is(err, oppDomain.ErrContention):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// handlerError writes a domain error with its mapped status.
func handlerError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
}

// requireSession checks for an authenticated session with one of the given
// roles, writing the error response itself on failure.
func requireSession(w http.ResponseWriter, r *http.Request, roles ...string) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	for _, role := range roles {
		if sess.Role == role {
			return sess, true
		}
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
	return middleware.Session{}, false
}

// sessionRecipient maps a session onto its notification recipient.
func sessionRecipient(sess middleware.Session) notificationDomain.Recipient {
	switch sess.Role {
	case accountDomain.RoleVolunteer:
		return notificationDomain.Recipient{Kind: notificationDomain.KindVolunteer, ID: sess.SubjectID}
	case accountDomain.RoleOrganization:
		return notificationDomain.Recipient{Kind: notificationDomain.KindOrganization, ID: sess.SubjectID}
	default:
		return notificationDomain.Recipient{Kind: notificationDomain.KindAdmin, ID: sess.AccountID}
	}
}

// notifyDeps assembles the fanout dependencies from the globals.
func notifyDeps() orchestrators.NotifyDeps {
	deps := orchestrators.NotifyDeps{
		NotificationStore: stores.NotificationStore,
		EmailSender:       emailSender,
		GenerateID:        generateID,
		Now:               timeNow,
		FromAddress:       emailFromAddress,
		ReplyTo:           emailReplyTo,
	}
	if presenceRegistry != nil {
		deps.Presence = presenceRegistry
	}
	return deps
}

// registerRoutes wires every handler onto the mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/register/volunteer", handleRegisterVolunteer)
	mux.HandleFunc("/api/register/organization", handleRegisterOrganization)
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)

	mux.HandleFunc("/api/opportunities", handleOpportunities)
	mux.HandleFunc("/api/opportunities/detail", handleOpportunityDetail)
	mux.HandleFunc("/api/opportunities/signup", handleSignUp)
	mux.HandleFunc("/api/opportunities/proof", handleSubmitProof)
	mux.HandleFunc("/api/opportunities/review", handleReviewProof)
	mux.HandleFunc("/api/opportunities/complete", handleMarkCompleted)
	mux.HandleFunc("/api/opportunities/force-complete", handleForceComplete)
	mux.HandleFunc("/api/opportunities/close", handleCloseOpportunity)

	mux.HandleFunc("/api/profile", handleVolunteerProfile)
	mux.HandleFunc("/api/notifications", handleNotifications)
	mux.HandleFunc("/api/notifications/read", handleNotificationRead)

	mux.HandleFunc("/events", handleEvents)
}

// handleRegisterVolunteer handles POST /api/register/volunteer
func handleRegisterVolunteer(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		Name     string `json:"Name"`
		Email    string `json:"Email"`
		Password string `json:"Password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	v, err := orchestrators.ExecuteRegisterVolunteer(r.Context(), orchestrators.RegisterVolunteerInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	}, orchestrators.RegisterVolunteerDeps{
		AccountStore:   stores.AccountStore,
		VolunteerStore: stores.VolunteerStore,
		GenerateID:     generateID,
		Now:            timeNow,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// handleRegisterOrganization handles POST /api/register/organization
func handleRegisterOrganization(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		Name     string `json:"Name"`
		Email    string `json:"Email"`
		Password string `json:"Password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	org, err := orchestrators.ExecuteRegisterOrganization(r.Context(), orchestrators.RegisterOrganizationInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	}, orchestrators.RegisterOrganizationDeps{
		AccountStore:      stores.AccountStore,
		OrganizationStore: stores.OrganizationStore,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		Email    string `json:"Email"`
		Password string `json:"Password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			status = http.StatusForbidden
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role, result.SubjectID)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"Role":      result.Role,
		"SubjectID": result.SubjectID,
	})
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleOpportunities handles GET /api/opportunities (listing) and
// POST /api/opportunities (organization posting a new one).
func handleOpportunities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		query := projections.ListOpportunitiesQuery{Status: r.URL.Query().Get("status")}
		if r.URL.Query().Get("mine") == "1" {
			sess, ok := requireSession(w, r, accountDomain.RoleOrganization)
			if !ok {
				return
			}
			query = projections.ListOpportunitiesQuery{OrganizationID: sess.SubjectID}
		}
		res, err := projections.QueryListOpportunities(r.Context(), query, projections.ListOpportunitiesDeps{
			OpportunityStore: stores.OpportunityStore,
		})
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case "POST":
		sess, ok := requireSession(w, r, accountDomain.RoleOrganization)
		if !ok {
			return
		}
		var input struct {
			Title          string `json:"Title"`
			Description    string `json:"Description"`
			CapacityNeeded int    `json:"CapacityNeeded"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		o, err := orchestrators.ExecuteCreateOpportunity(r.Context(), orchestrators.CreateOpportunityInput{
			OrganizationID: sess.SubjectID,
			Title:          input.Title,
			Description:    input.Description,
			CapacityNeeded: input.CapacityNeeded,
		}, orchestrators.CreateOpportunityDeps{
			OpportunityStore:  stores.OpportunityStore,
			OrganizationStore: stores.OrganizationStore,
			GenerateID:        generateID,
			Now:               timeNow,
		})
		if err != nil {
			handlerError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, o)

	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleOpportunityDetail handles GET /api/opportunities/detail?id=...
// The owning organization and admins see each signup's active proof.
func handleOpportunityDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	deps := projections.GetOpportunityDeps{
		OpportunityStore:  stores.OpportunityStore,
		VolunteerStore:    stores.VolunteerStore,
		OrganizationStore: stores.OrganizationStore,
	}
	res, err := projections.QueryGetOpportunity(r.Context(), projections.GetOpportunityQuery{OpportunityID: id}, deps)
	if err != nil {
		handlerError(w, err)
		return
	}

	sess, hasSession := middleware.GetSessionFromContext(r.Context())
	ownerView := hasSession && (sess.Role == accountDomain.RoleAdmin ||
		(sess.Role == accountDomain.RoleOrganization && sess.SubjectID == res.Opportunity.OrganizationID))
	if ownerView {
		res, err = projections.QueryGetOpportunity(r.Context(), projections.GetOpportunityQuery{
			OpportunityID: id,
			IncludeProofs: true,
		}, deps)
		if err != nil {
			handlerError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSignUp handles POST /api/opportunities/signup
func handleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r, accountDomain.RoleVolunteer)
	if !ok {
		return
	}
	var input struct {
		OpportunityID string `json:"OpportunityID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	res, err := orchestrators.ExecuteSignUp(r.Context(), orchestrators.SignUpInput{
		OpportunityID: input.OpportunityID,
		VolunteerID:   sess.SubjectID,
	}, orchestrators.SignUpDeps{
		OpportunityStore:  stores.OpportunityStore,
		VolunteerStore:    stores.VolunteerStore,
		OrganizationStore: stores.OrganizationStore,
		Notify:            notifyDeps(),
		Now:               timeNow,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSubmitProof handles POST /api/opportunities/proof
func handleSubmitProof(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r, accountDomain.RoleVolunteer)
	if !ok {
		return
	}
	var input struct {
		OpportunityID string `json:"OpportunityID"`
		Message       string `json:"Message"`
		AttachmentRef string `json:"AttachmentRef"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	p, err := orchestrators.ExecuteSubmitProof(r.Context(), orchestrators.SubmitProofInput{
		OpportunityID: input.OpportunityID,
		VolunteerID:   sess.SubjectID,
		Message:       input.Message,
		AttachmentRef: input.AttachmentRef,
	}, orchestrators.SubmitProofDeps{
		OpportunityStore: stores.OpportunityStore,
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleReviewProof handles POST /api/opportunities/review
func handleReviewProof(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r, accountDomain.RoleOrganization, accountDomain.RoleAdmin)
	if !ok {
		return
	}
	var input struct {
		OpportunityID string `json:"OpportunityID"`
		VolunteerID   string `json:"VolunteerID"`
		Approve       bool   `json:"Approve"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	p, err := orchestrators.ExecuteReviewProof(r.Context(), orchestrators.ReviewProofInput{
		OpportunityID:  input.OpportunityID,
		VolunteerID:    input.VolunteerID,
		OrganizationID: reviewerOrganization(sess),
		Approve:        input.Approve,
	}, orchestrators.ReviewProofDeps{
		OpportunityStore: stores.OpportunityStore,
		VolunteerStore:   stores.VolunteerStore,
		Notify:           notifyDeps(),
		Now:              timeNow,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// reviewerOrganization returns the ownership scope for lifecycle actions:
// organizations act as themselves, admins act unscoped.
func reviewerOrganization(sess middleware.Session) string {
	if sess.Role == accountDomain.RoleOrganization {
		return sess.SubjectID
	}
	return ""
}

// handleMarkCompleted handles POST /api/opportunities/complete
func handleMarkCompleted(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r, accountDomain.RoleOrganization, accountDomain.RoleAdmin)
	if !ok {
		return
	}
	var input struct {
		OpportunityID string `json:"OpportunityID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	res, err := orchestrators.ExecuteMarkCompleted(r.Context(), orchestrators.MarkCompletedInput{
		OpportunityID:  input.OpportunityID,
		OrganizationID: reviewerOrganization(sess),
	}, orchestrators.MarkCompletedDeps{
		OpportunityStore: stores.OpportunityStore,
		VolunteerStore:   stores.VolunteerStore,
		Notify:           notifyDeps(),
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleForceComplete handles POST /api/opportunities/force-complete
func handleForceComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r, accountDomain.RoleOrganization, accountDomain.RoleAdmin)
	if !ok {
		return
	}
	var input struct {
		OpportunityID string `json:"OpportunityID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteForceComplete(r.Context(), orchestrators.ForceCompleteInput{
		OpportunityID:  input.OpportunityID,
		OrganizationID: reviewerOrganization(sess),
	}, orchestrators.ForceCompleteDeps{
		OpportunityStore: stores.OpportunityStore,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCloseOpportunity handles POST /api/opportunities/close
func handleCloseOpportunity(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r, accountDomain.RoleOrganization, accountDomain.RoleAdmin)
	if !ok {
		return
	}
	var input struct {
		OpportunityID string `json:"OpportunityID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteCloseOpportunity(r.Context(), orchestrators.CloseOpportunityInput{
		OpportunityID:  input.OpportunityID,
		OrganizationID: reviewerOrganization(sess),
	}, orchestrators.CloseOpportunityDeps{
		OpportunityStore: stores.OpportunityStore,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVolunteerProfile handles GET /api/profile. Volunteers see their own
// standing; admins may pass ?id= to inspect any volunteer.
func handleVolunteerProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r, accountDomain.RoleVolunteer, accountDomain.RoleAdmin)
	if !ok {
		return
	}
	volunteerID := sess.SubjectID
	if sess.Role == accountDomain.RoleAdmin {
		volunteerID = r.URL.Query().Get("id")
		if volunteerID == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
	}
	res, err := projections.QueryGetVolunteerProfile(r.Context(), projections.GetVolunteerProfileQuery{
		VolunteerID: volunteerID,
	}, projections.GetVolunteerProfileDeps{
		VolunteerStore: stores.VolunteerStore,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleNotifications handles GET /api/notifications?channel=in_app|email
func handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	res, err := projections.QueryGetNotifications(r.Context(), projections.GetNotificationsQuery{
		Recipient: sessionRecipient(sess),
		Channel:   r.URL.Query().Get("channel"),
	}, projections.GetNotificationsDeps{
		NotificationStore: stores.NotificationStore,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleNotificationRead handles POST /api/notifications/read
func handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var input struct {
		NotificationID string `json:"NotificationID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteMarkNotificationRead(r.Context(), orchestrators.MarkNotificationReadInput{
		NotificationID: input.NotificationID,
		Recipient:      sessionRecipient(sess),
	}, orchestrators.MarkNotificationReadDeps{
		NotificationStore: stores.NotificationStore,
	})
	if err != nil {
		handlerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents handles GET /events, the server-sent event stream carrying
// live in-app notifications for the authenticated user.
func handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	userID := sess.SubjectID
	if userID == "" {
		userID = sess.AccountID
	}
	conn := presenceRegistry.Connect(userID)
	defer presenceRegistry.Disconnect(conn)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	slog.Info("sse_event", "event", "stream_opened", "user_id", userID)

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("sse_event", "event", "stream_closed", "user_id", userID)
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case ev, open := <-conn.Events():
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, ev.Data)
			flusher.Flush()
		}
	}
}
