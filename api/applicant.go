package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
)

// ApplicantProfile is an applicant's onboarded profile record.
type ApplicantProfile struct {
	ApplicantID  int64   `json:"applicant_id"`
	FirstName    string  `json:"first_name"`
	MiddleName   string  `json:"middle_name"`
	LastName     string  `json:"last_name"`
	FatherName   string  `json:"father_name"`
	Gender       string  `json:"gender"`
	DOB          string  `json:"dob"`
	CasteID      int64   `json:"caste_id"`
	Address      string  `json:"address"`
	StateID      int64   `json:"state_id"`
	DistrictID   int64   `json:"district_id"`
	PinCode      int64   `json:"pin_code"`
	CollegeID    int64   `json:"college_id"`
	OtherCollege *string `json:"other_college,omitempty"`
	EmailID      string  `json:"email_id"`
	MobileNo     string  `json:"mobile_no"`
	ProfilePhoto *string `json:"profile_photo,omitempty"`
	ActiveStatus string  `json:"active_status"`
}

// ApplicantCreate is the payload for the one-time applicant onboarding step.
type ApplicantCreate struct {
	FirstName    string `json:"first_name"`
	MiddleName   string `json:"middle_name"`
	LastName     string `json:"last_name"`
	FatherName   string `json:"father_name"`
	Gender       string `json:"gender"` // M, F or O
	DOB          string `json:"dob"`
	CasteID      int64  `json:"caste_id"`
	Address      string `json:"address"`
	StateID      int64  `json:"state_id"`
	DistrictID   int64  `json:"district_id"`
	PinCode      int64  `json:"pin_code"`
	CollegeID    int64  `json:"college_id"`
	OtherCollege string `json:"other_college,omitempty"`
	EmailID      string `json:"email_id"`
	MobileNo     string `json:"mobile_no"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
}

// ApplicantUpdate carries the fields of a partial profile update; nil fields
// are left untouched by the backend.
type ApplicantUpdate struct {
	FirstName  *string `json:"first_name,omitempty"`
	MiddleName *string `json:"middle_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	FatherName *string `json:"father_name,omitempty"`
	Address    *string `json:"address,omitempty"`
	StateID    *int64  `json:"state_id,omitempty"`
	DistrictID *int64  `json:"district_id,omitempty"`
	PinCode    *int64  `json:"pin_code,omitempty"`
	EmailID    *string `json:"email_id,omitempty"`
	MobileNo   *string `json:"mobile_no,omitempty"`
}

// Application is one training application as listed for the applicant.
type Application struct {
	ApplicationID     int64   `json:"application_id"`
	EnrollmentTitle   string  `json:"enrollment_title"`
	CenterName        string  `json:"center_name"`
	SessionName       string  `json:"session_name"`
	ApplicationStatus string  `json:"application_status"`
	PaymentStatus     string  `json:"payment_status"`
	CertificateStatus string  `json:"certificate_status"`
	UpdatedDate       string  `json:"updated_date"`
	RegID             *string `json:"reg_id"`
}

// Enrollment is an open training enrollment an applicant can apply to.
type Enrollment struct {
	EnrollID        int64  `json:"enroll_id"`
	EnrollTitle     string `json:"enroll_title"`
	EnrollDesc      string `json:"enroll_desc"`
	EnrollStartDate string `json:"enroll_start_date"`
	EnrollEndDate   string `json:"enroll_end_date"`
	CenterName      string `json:"center_name"`
	SessionName     string `json:"session_name"`
	ActiveStatus    string `json:"active_status"`
}

// NewsItem is a published portal news entry.
type NewsItem struct {
	NewsID        int64  `json:"news_id"`
	NewsTitle     string `json:"news_title"`
	NewsDesc      string `json:"news_desc"`
	CategoryName  string `json:"category_name"`
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
	Status        string `json:"status"`
}

// CreateApplicantProfile completes applicant onboarding. On success the
// assigned applicant id is merged into the stored identity, which is what
// moves the auth gate past its onboarding redirect.
func (c *Client) CreateApplicantProfile(ctx context.Context, data ApplicantCreate) (*ApplicantProfile, error) {
	var profile ApplicantProfile
	if err := c.do(ctx, http.MethodPost, "/applicant/profile", nil, data, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateApplicantProfile] create profile")
	}
	if err := c.store.UpdateUser(session.IdentityUpdate{ApplicantID: &profile.ApplicantID}); err != nil {
		c.logger.Error().Err(err).Msg("failed to record applicant id on identity")
	}
	return &profile, nil
}

// ApplicantProfile fetches the current applicant's profile.
func (c *Client) ApplicantProfile(ctx context.Context) (*ApplicantProfile, error) {
	var profile ApplicantProfile
	if err := c.do(ctx, http.MethodGet, "/applicant/profile", nil, nil, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.ApplicantProfile] fetch profile")
	}
	return &profile, nil
}

// UpdateApplicantProfile applies a partial profile update.
func (c *Client) UpdateApplicantProfile(ctx context.Context, data ApplicantUpdate) (*ApplicantProfile, error) {
	var profile ApplicantProfile
	if err := c.do(ctx, http.MethodPut, "/applicant/profile", nil, data, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.UpdateApplicantProfile] update profile")
	}
	return &profile, nil
}

// ApplicantApplications lists the applicant's training applications.
func (c *Client) ApplicantApplications(ctx context.Context) ([]Application, error) {
	var applications []Application
	if err := c.do(ctx, http.MethodGet, "/applicant/applications", nil, nil, &applications); err != nil {
		return nil, errors.Wrap(err, "[Client.ApplicantApplications] fetch applications")
	}
	return applications, nil
}

// ApplicantEnrollments lists enrollments open to the applicant.
func (c *Client) ApplicantEnrollments(ctx context.Context) ([]Enrollment, error) {
	var enrollments []Enrollment
	if err := c.do(ctx, http.MethodGet, "/applicant/enrollments", nil, nil, &enrollments); err != nil {
		return nil, errors.Wrap(err, "[Client.ApplicantEnrollments] fetch enrollments")
	}
	return enrollments, nil
}

// ApplicantNews lists news published for applicants.
func (c *Client) ApplicantNews(ctx context.Context) ([]NewsItem, error) {
	var news []NewsItem
	if err := c.do(ctx, http.MethodGet, "/applicant/news", nil, nil, &news); err != nil {
		return nil, errors.Wrap(err, "[Client.ApplicantNews] fetch news")
	}
	return news, nil
}
