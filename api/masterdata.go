package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// Master-data reference records backing the portal's dropdowns.

type State struct {
	StateID   int64  `json:"state_id"`
	StateName string `json:"state_name"`
	StateCode string `json:"state_code"`
}

type District struct {
	DistrictID   int64  `json:"district_id"`
	DistrictName string `json:"district_name"`
	DistrictCode string `json:"district_code"`
	StateID      int64  `json:"state_id"`
}

type College struct {
	CollegeID   int64  `json:"college_id"`
	CollegeName string `json:"college_name"`
	StateID     int64  `json:"state_id"`
}

type Caste struct {
	CasteID   int64  `json:"caste_id"`
	CasteName string `json:"caste_name"`
}

type Qualification struct {
	QualificationID   int64  `json:"qualification_id"`
	QualificationName string `json:"qualification_name"`
	QualCode          *int64 `json:"qual_code"`
}

type Stream struct {
	StreamID   int64  `json:"stream_id"`
	StreamName string `json:"stream_name"`
	QualCode   *int64 `json:"qual_code"`
}

// States lists all states.
func (c *Client) States(ctx context.Context) ([]State, error) {
	var states []State
	if err := c.do(ctx, http.MethodGet, "/master/states", nil, nil, &states); err != nil {
		return nil, errors.Wrap(err, "[Client.States] fetch states")
	}
	return states, nil
}

// Districts lists the districts of one state.
func (c *Client) Districts(ctx context.Context, stateID int64) ([]District, error) {
	var districts []District
	query := url.Values{"state_id": {strconv.FormatInt(stateID, 10)}}
	if err := c.do(ctx, http.MethodGet, "/master/districts", query, nil, &districts); err != nil {
		return nil, errors.Wrapf(err, "[Client.Districts] fetch districts for state %d", stateID)
	}
	return districts, nil
}

// Colleges lists the colleges of one state.
func (c *Client) Colleges(ctx context.Context, stateID int64) ([]College, error) {
	var colleges []College
	query := url.Values{"state_id": {strconv.FormatInt(stateID, 10)}}
	if err := c.do(ctx, http.MethodGet, "/master/colleges", query, nil, &colleges); err != nil {
		return nil, errors.Wrapf(err, "[Client.Colleges] fetch colleges for state %d", stateID)
	}
	return colleges, nil
}

// Castes lists all caste categories.
func (c *Client) Castes(ctx context.Context) ([]Caste, error) {
	var castes []Caste
	if err := c.do(ctx, http.MethodGet, "/master/castes", nil, nil, &castes); err != nil {
		return nil, errors.Wrap(err, "[Client.Castes] fetch castes")
	}
	return castes, nil
}

// Qualifications lists all qualifications.
func (c *Client) Qualifications(ctx context.Context) ([]Qualification, error) {
	var qualifications []Qualification
	if err := c.do(ctx, http.MethodGet, "/master/qualifications", nil, nil, &qualifications); err != nil {
		return nil, errors.Wrap(err, "[Client.Qualifications] fetch qualifications")
	}
	return qualifications, nil
}

// Streams lists all streams.
func (c *Client) Streams(ctx context.Context) ([]Stream, error) {
	var streams []Stream
	if err := c.do(ctx, http.MethodGet, "/master/streams", nil, nil, &streams); err != nil {
		return nil, errors.Wrap(err, "[Client.Streams] fetch streams")
	}
	return streams, nil
}
