package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
)

// CenterProfile is a training centre's onboarded profile record.
type CenterProfile struct {
	CenterID      int64   `json:"center_id"`
	CenterName    string  `json:"center_name"`
	StateID       int64   `json:"state_id"`
	DistrictID    int64   `json:"district_id"`
	CenterCode    *string `json:"center_code,omitempty"`
	CenterAddress *string `json:"center_address,omitempty"`
	CenterPhone   *string `json:"center_phone,omitempty"`
	CenterMailID  *string `json:"center_mail_id,omitempty"`
	CenterPayLink *string `json:"center_pay_link,omitempty"`
	CenterVenue   *string `json:"center_venue,omitempty"`
}

// CenterCreate is the payload for the one-time centre onboarding step.
type CenterCreate struct {
	CenterName    string `json:"center_name"`
	StateID       int64  `json:"state_id"`
	DistrictID    int64  `json:"district_id"`
	CenterCode    string `json:"center_code,omitempty"`
	CenterAddress string `json:"center_address,omitempty"`
	CenterPhone   string `json:"center_phone,omitempty"`
	CenterMailID  string `json:"center_mail_id,omitempty"`
	CenterPayLink string `json:"center_pay_link,omitempty"`
	CenterVenue   string `json:"center_venue,omitempty"`
}

// CenterUpdate carries the fields of a partial centre profile update.
type CenterUpdate struct {
	CenterName    *string `json:"center_name,omitempty"`
	StateID       *int64  `json:"state_id,omitempty"`
	DistrictID    *int64  `json:"district_id,omitempty"`
	CenterCode    *string `json:"center_code,omitempty"`
	CenterAddress *string `json:"center_address,omitempty"`
	CenterPhone   *string `json:"center_phone,omitempty"`
	CenterMailID  *string `json:"center_mail_id,omitempty"`
	CenterPayLink *string `json:"center_pay_link,omitempty"`
	CenterVenue   *string `json:"center_venue,omitempty"`
}

// TrainingSession is one training session run by a centre.
type TrainingSession struct {
	SessionID    int64  `json:"session_id"`
	SessionName  string `json:"session_name"`
	SessionDesc  string `json:"session_desc"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	CenterID     int64  `json:"center_id"`
	ActiveStatus string `json:"active_status"`
}

// TrainingSessionCreate is the payload for creating a session.
type TrainingSessionCreate struct {
	SessionName  string `json:"session_name"`
	SessionDesc  string `json:"session_desc"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	ActiveStatus string `json:"active_status,omitempty"`
}

// TrainingSessionUpdate carries the fields of a partial session update.
type TrainingSessionUpdate struct {
	SessionName  *string `json:"session_name,omitempty"`
	SessionDesc  *string `json:"session_desc,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	EndDate      *string `json:"end_date,omitempty"`
	ActiveStatus *string `json:"active_status,omitempty"`
}

// CenterApplication is an application as listed for the centre that runs the
// session.
type CenterApplication struct {
	ApplicationID     int64   `json:"application_id"`
	ApplicantName     string  `json:"applicant_name"`
	ApplicantEmail    string  `json:"applicant_email"`
	SessionName       string  `json:"session_name"`
	ApplicationStatus string  `json:"application_status"`
	PaymentStatus     string  `json:"payment_status"`
	CertificateStatus string  `json:"certificate_status"`
	RegID             *string `json:"reg_id"`
	UpdatedDate       string  `json:"updated_date"`
}

// CreateCenterProfile completes centre onboarding and merges the assigned
// centre id into the stored identity.
func (c *Client) CreateCenterProfile(ctx context.Context, data CenterCreate) (*CenterProfile, error) {
	var profile CenterProfile
	if err := c.do(ctx, http.MethodPost, "/center/profile", nil, data, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateCenterProfile] create profile")
	}
	if err := c.store.UpdateUser(session.IdentityUpdate{CenterID: &profile.CenterID}); err != nil {
		c.logger.Error().Err(err).Msg("failed to record center id on identity")
	}
	return &profile, nil
}

// CenterProfile fetches the current centre's profile.
func (c *Client) CenterProfile(ctx context.Context) (*CenterProfile, error) {
	var profile CenterProfile
	if err := c.do(ctx, http.MethodGet, "/center/profile", nil, nil, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.CenterProfile] fetch profile")
	}
	return &profile, nil
}

// UpdateCenterProfile applies a partial centre profile update.
func (c *Client) UpdateCenterProfile(ctx context.Context, data CenterUpdate) (*CenterProfile, error) {
	var profile CenterProfile
	if err := c.do(ctx, http.MethodPut, "/center/profile", nil, data, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.UpdateCenterProfile] update profile")
	}
	return &profile, nil
}

// CenterSessions lists the centre's training sessions.
func (c *Client) CenterSessions(ctx context.Context) ([]TrainingSession, error) {
	var sessions []TrainingSession
	if err := c.do(ctx, http.MethodGet, "/center/sessions", nil, nil, &sessions); err != nil {
		return nil, errors.Wrap(err, "[Client.CenterSessions] fetch sessions")
	}
	return sessions, nil
}

// CreateCenterSession creates a training session.
func (c *Client) CreateCenterSession(ctx context.Context, data TrainingSessionCreate) (*TrainingSession, error) {
	var created TrainingSession
	if err := c.do(ctx, http.MethodPost, "/center/sessions", nil, data, &created); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateCenterSession] create session")
	}
	return &created, nil
}

// UpdateCenterSession applies a partial update to one training session.
func (c *Client) UpdateCenterSession(ctx context.Context, sessionID int64, data TrainingSessionUpdate) (*TrainingSession, error) {
	var updated TrainingSession
	path := fmt.Sprintf("/center/sessions/%d", sessionID)
	if err := c.do(ctx, http.MethodPut, path, nil, data, &updated); err != nil {
		return nil, errors.Wrapf(err, "[Client.UpdateCenterSession] update session %d", sessionID)
	}
	return &updated, nil
}

// DeleteCenterSession removes one training session.
func (c *Client) DeleteCenterSession(ctx context.Context, sessionID int64) error {
	path := fmt.Sprintf("/center/sessions/%d", sessionID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return errors.Wrapf(err, "[Client.DeleteCenterSession] delete session %d", sessionID)
	}
	return nil
}

// CenterApplications lists applications to the centre's sessions.
func (c *Client) CenterApplications(ctx context.Context) ([]CenterApplication, error) {
	var applications []CenterApplication
	if err := c.do(ctx, http.MethodGet, "/center/applications", nil, nil, &applications); err != nil {
		return nil, errors.Wrap(err, "[Client.CenterApplications] fetch applications")
	}
	return applications, nil
}

// CenterNews lists news published for centres.
func (c *Client) CenterNews(ctx context.Context) ([]NewsItem, error) {
	var news []NewsItem
	if err := c.do(ctx, http.MethodGet, "/center/news", nil, nil, &news); err != nil {
		return nil, errors.Wrap(err, "[Client.CenterNews] fetch news")
	}
	return news, nil
}
