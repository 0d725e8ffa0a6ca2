package inbound

import (
	"github.com/promonhq/promon/internal/programme/usecase"
	"github.com/promonhq/promon/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for programmes and their public forms.
type HTTPEndpoint struct {
	uc uc
}

// ListProgrammes returns every programme visible to a logged-in user.
func (h *HTTPEndpoint) ListProgrammes(r *router.Request) (any, error) {
	programmes, err := h.uc.ListProgrammes(r.Context())
	if err != nil {
		return nil, err
	}

	resp := make([]ProgrammeResponse, 0, len(programmes))
	for _, p := range programmes {
		resp = append(resp, ProgrammeResponse{
			ID:             p.ID,
			Name:           p.Name,
			Department:     p.Department,
			RecipientEmail: p.RecipientEmail,
		})
	}

	return resp, nil
}

// CreateFormLink issues a signed form link without emailing it, so an admin
// can hand it over through another channel.
func (h *HTTPEndpoint) CreateFormLink(r *router.Request) (any, error) {
	var req CreateFormLinkRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.CreateFormLink(r.Context(), usecase.CreateFormLinkInput{
		ProgrammeID: req.ProgrammeID,
		Email:       req.Email,
	})
	if err != nil {
		return nil, err
	}

	return CreateFormLinkResponse{
		ProgrammeID: resp.Programme.ID,
		Link:        resp.Link,
		Token:       resp.Token,
		ExpiresAt:   resp.ExpiresAt,
	}, nil
}

// SendFormLink issues a signed form link and emails it to the recipient.
func (h *HTTPEndpoint) SendFormLink(r *router.Request) (any, error) {
	var req SendFormLinkRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SendFormLink(r.Context(), usecase.SendFormLinkInput{
		ProgrammeID: req.ProgrammeID,
		Email:       req.Email,
	})
	if err != nil {
		return nil, err
	}

	return SendFormLinkResponse{
		ProgrammeID: resp.Programme.ID,
		Link:        resp.Link,
		ExpiresAt:   resp.ExpiresAt,
	}, nil
}

// FormInfo validates a form link and returns what the public form page needs
// to render. The token arrives as a query parameter, exactly as embedded in
// the emailed link.
func (h *HTTPEndpoint) FormInfo(r *router.Request) (any, error) {
	programmeID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	access, err := h.uc.ValidateFormLink(r.Context(), programmeID, r.GetQuery("token"))
	if err != nil {
		return nil, err
	}

	return FormInfoResponse{
		ProgrammeID:    access.Programme.ID,
		ProgrammeName:  access.Programme.Name,
		Department:     access.Programme.Department,
		RecipientEmail: access.RecipientEmail,
	}, nil
}

// SubmitForm accepts a public form submission gated by a form token.
func (h *HTTPEndpoint) SubmitForm(r *router.Request) (any, error) {
	programmeID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req SubmitFormRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SubmitForm(r.Context(), usecase.SubmitFormInput{
		ProgrammeID:   programmeID,
		Token:         r.GetQuery("token"),
		ProgrammeName: req.ProgrammeName,
		FormData:      req.FormData,
	})
	if err != nil {
		return nil, err
	}

	return SubmitFormResponse{SubmissionID: resp.SubmissionID}, nil
}

// AdminSummary reports per-programme submission counts.
func (h *HTTPEndpoint) AdminSummary(r *router.Request) (any, error) {
	summaries, err := h.uc.AdminSummary(r.Context())
	if err != nil {
		return nil, err
	}

	resp := make([]ProgrammeSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, ProgrammeSummaryResponse{
			ProgrammeID:     s.ProgrammeID,
			ProgrammeName:   s.ProgrammeName,
			Department:      s.Department,
			SubmissionCount: s.SubmissionCount,
			LastSubmittedAt: s.LastSubmittedAt,
		})
	}

	return resp, nil
}

// AdminSubmissions lists submissions, newest first, optionally filtered to
// one programme via the programme_id query parameter.
func (h *HTTPEndpoint) AdminSubmissions(r *router.Request) (any, error) {
	programmeID, err := r.GetQueryInt32("programme_id")
	if err != nil {
		return nil, err
	}

	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	offset, err := r.GetQueryInt32("offset")
	if err != nil {
		return nil, err
	}

	submissions, err := h.uc.AdminSubmissions(r.Context(), usecase.AdminSubmissionsInput{
		ProgrammeID: int64(programmeID),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]SubmissionResponse, 0, len(submissions))
	for _, sub := range submissions {
		resp = append(resp, SubmissionResponse{
			ID:             sub.ID,
			ProgrammeID:    sub.ProgrammeID,
			RecipientEmail: sub.RecipientEmail,
			FormData:       sub.FormData,
			SubmittedAt:    sub.SubmittedAt,
		})
	}

	return resp, nil
}
