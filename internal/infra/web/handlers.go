package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || len(req.Password) < 8 {
		http.Error(w, "Email and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}
	user := &model.User{Email: req.Email, Name: req.Name, PasswordHash: hash}
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			http.Error(w, "Email already registered", http.StatusConflict)
			return
		}
		s.log.Error().Err(err).Msg("register: save user")
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	token, err := s.auth.Mint(user.ID, user.Email)
	if err != nil {
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		s.log.Error().Err(err).Msg("login lookup failed")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	token, err := s.auth.Mint(user.ID, user.Email)
	if err != nil {
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token})
}

// authenticate resolves email+password to a user. Unknown emails and wrong
// passwords are indistinguishable to the caller; store failures are not.
func (s *Server) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Reply   string         `json:"reply"`
	Session *model.Session `json:"session"`
}

func (s *Server) messageHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	threadID := chi.URLParam(r, "threadID")

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess, reply, err := s.convUC.Invoke(ctx, threadID, UserID(ctx), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, domain.ErrThreadLocked):
			http.Error(w, "Thread is busy, retry shortly", http.StatusConflict)
		default:
			s.log.Error().Err(err).Str("thread_id", threadID).Msg("conversation turn failed")
			http.Error(w, "Failed to process message", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Reply: reply, Session: sess})
}

func (s *Server) bookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	threadID := chi.URLParam(r, "threadID")

	shipment, err := s.convUC.Book(ctx, threadID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "No such conversation", http.StatusNotFound)
		case errors.Is(err, domain.ErrQuoteNotReady):
			http.Error(w, "No valid quote to book", http.StatusConflict)
		case errors.Is(err, domain.ErrSessionCompleted):
			http.Error(w, "Conversation already booked a shipment", http.StatusConflict)
		case errors.Is(err, domain.ErrThreadLocked):
			http.Error(w, "Thread is busy, retry shortly", http.StatusConflict)
		default:
			s.log.Error().Err(err).Str("thread_id", threadID).Msg("booking failed")
			http.Error(w, "Failed to book shipment", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, shipment)
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	threadID := chi.URLParam(r, "threadID")

	sess, err := s.convUC.History(ctx, threadID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "No such conversation", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load conversation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type uploadResponse struct {
	ID    string `json:"id"`
	JobID string `json:"job_id"`
	Queue string `json:"queue"`
}

func (s *Server) uploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filename, content, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	doc := &model.Document{
		OwnerID:  UserID(ctx),
		Filename: filename,
		Status:   model.ProcessingPending,
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		s.log.Error().Err(err).Msg("upload: save document")
		http.Error(w, "Failed to accept document", http.StatusInternalServerError)
		return
	}

	ref := doc.ID + filepath.Ext(filename)
	if err := s.files.Write(ctx, ref, content); err != nil {
		s.log.Error().Err(err).Msg("upload: stage file")
		http.Error(w, "Failed to accept document", http.StatusInternalServerError)
		return
	}

	job, err := s.docQueue.Enqueue(ctx, model.JobTypeDocument, model.DocumentJobPayload{
		FileRef:  ref,
		Filename: filename,
		OwnerID:  doc.OwnerID,
		DocID:    doc.ID,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("upload: enqueue document job")
		http.Error(w, "Failed to accept document", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, uploadResponse{ID: doc.ID, JobID: job.ID, Queue: s.docQueue.Name()})
}

func (s *Server) uploadInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filename, content, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	threadID := r.FormValue("thread_id")
	bookingID := r.FormValue("booking_id")

	inv := &model.Invoice{
		ID:        ulid.Make().String(),
		OwnerID:   UserID(ctx),
		ThreadID:  threadID,
		BookingID: bookingID,
		Filename:  filename,
		Status:    model.ProcessingPending,
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		s.log.Error().Err(err).Msg("upload: save invoice")
		http.Error(w, "Failed to accept invoice", http.StatusInternalServerError)
		return
	}

	ref := inv.ID + filepath.Ext(filename)
	if err := s.files.Write(ctx, ref, content); err != nil {
		s.log.Error().Err(err).Msg("upload: stage file")
		http.Error(w, "Failed to accept invoice", http.StatusInternalServerError)
		return
	}

	job, err := s.invQueue.Enqueue(ctx, model.JobTypeInvoice, model.InvoiceJobPayload{
		FileRef:         ref,
		Filename:        filename,
		OwnerID:         inv.OwnerID,
		SessionThreadID: threadID,
		InvoiceID:       inv.ID,
		BookingID:       bookingID,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("upload: enqueue invoice job")
		http.Error(w, "Failed to accept invoice", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, uploadResponse{ID: inv.ID, JobID: job.ID, Queue: s.invQueue.Name()})
}

// readUpload pulls the "file" part out of a multipart form. It writes the
// error response itself and reports ok=false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return "", nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return "", nil, false
	}
	if len(content) > maxUploadBytes {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return header.Filename, content, true
}

func (s *Server) jobStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	queueName := chi.URLParam(r, "queue")
	jobID := chi.URLParam(r, "jobID")

	var q Enqueuer
	switch queueName {
	case s.docQueue.Name():
		q = s.docQueue
	case s.invQueue.Name():
		q = s.invQueue
	default:
		http.Error(w, "No such queue", http.StatusNotFound)
		return
	}

	job, err := q.Job(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "No such job", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load job", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) listShipmentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	shipments, err := s.shipments.FindByUser(ctx, UserID(ctx))
	if err != nil {
		http.Error(w, "Failed to list shipments", http.StatusInternalServerError)
		return
	}
	if shipments == nil {
		shipments = []*model.Shipment{}
	}
	writeJSON(w, http.StatusOK, shipments)
}

func (s *Server) trackShipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trackingCode := chi.URLParam(r, "trackingCode")

	shipment, err := s.shipments.FindByTracking(ctx, trackingCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "No such shipment", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load shipment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, shipment)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
