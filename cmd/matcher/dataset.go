package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// seekerRecord is the on-disk form of a seeker in an import file.
type seekerRecord struct {
	ID             string   `koanf:"id"`
	Headline       string   `koanf:"headline"`
	Summary        string   `koanf:"summary"`
	Courses        []string `koanf:"courses"`
	Skills         []string `koanf:"skills"`
	SkillsText     string   `koanf:"skills_text"`
	Major          string   `koanf:"major"`
	WeeklyHours    int      `koanf:"weekly_hours"`
	AvailableFrom  string   `koanf:"available_from"`
	AvailableUntil string   `koanf:"available_until"`
	Aptitude       *float64 `koanf:"aptitude"`
	Reliability    *float64 `koanf:"reliability"`
	Flags          []string `koanf:"flags"`
}

// offerRecord is the on-disk form of an offer in an import file.
type offerRecord struct {
	ID             string   `koanf:"id"`
	Title          string   `koanf:"title"`
	Description    string   `koanf:"description"`
	RequiredSkills []string `koanf:"required_skills"`
	WeeklyHours    int      `koanf:"weekly_hours"`
	Start          string   `koanf:"start"`
	End            string   `koanf:"end"`
	Capacity       int      `koanf:"capacity"`
	Open           *bool    `koanf:"open"` // Defaults to true
}

type dataset struct {
	Seekers []*core.Seeker
	Offers  []*core.Offer
}

// loadDataset reads seekers and offers from a YAML (or JSON) file.
func loadDataset(path string) (*dataset, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	var seekers []seekerRecord
	if err := k.Unmarshal("seekers", &seekers); err != nil {
		return nil, fmt.Errorf("failed to parse seekers in %s: %w", path, err)
	}
	var offers []offerRecord
	if err := k.Unmarshal("offers", &offers); err != nil {
		return nil, fmt.Errorf("failed to parse offers in %s: %w", path, err)
	}

	ds := &dataset{
		Seekers: make([]*core.Seeker, 0, len(seekers)),
		Offers:  make([]*core.Offer, 0, len(offers)),
	}
	for i, r := range seekers {
		s, err := r.seeker()
		if err != nil {
			return nil, fmt.Errorf("seeker %d (%q): %w", i, r.ID, err)
		}
		ds.Seekers = append(ds.Seekers, s)
	}
	for i, r := range offers {
		o, err := r.offer()
		if err != nil {
			return nil, fmt.Errorf("offer %d (%q): %w", i, r.ID, err)
		}
		ds.Offers = append(ds.Offers, o)
	}
	return ds, nil
}

func (r seekerRecord) seeker() (*core.Seeker, error) {
	availability, err := parseInterval(r.AvailableFrom, r.AvailableUntil)
	if err != nil {
		return nil, err
	}
	flags, err := parseFlags(r.Flags)
	if err != nil {
		return nil, err
	}
	return &core.Seeker{
		ID:           core.ID(r.ID),
		Headline:     r.Headline,
		Summary:      r.Summary,
		Courses:      r.Courses,
		Skills:       r.Skills,
		SkillsText:   r.SkillsText,
		Major:        r.Major,
		WeeklyHours:  r.WeeklyHours,
		Availability: availability,
		Aptitude:     r.Aptitude,
		Reliability:  r.Reliability,
		Flags:        flags,
	}, nil
}

func (r offerRecord) offer() (*core.Offer, error) {
	period, err := parseInterval(r.Start, r.End)
	if err != nil {
		return nil, err
	}
	open := true
	if r.Open != nil {
		open = *r.Open
	}
	return &core.Offer{
		ID:             core.ID(r.ID),
		Title:          r.Title,
		Description:    r.Description,
		RequiredSkills: r.RequiredSkills,
		WeeklyHours:    r.WeeklyHours,
		Period:         period,
		Capacity:       r.Capacity,
		Open:           open,
	}, nil
}

var dateLayouts = []string{time.DateOnly, time.RFC3339}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
}

func parseInterval(start, end string) (core.Interval, error) {
	s, err := parseDate(start)
	if err != nil {
		return core.Interval{}, err
	}
	e, err := parseDate(end)
	if err != nil {
		return core.Interval{}, err
	}
	return core.NewInterval(s, e), nil
}

func parseFlags(names []string) (core.BehaviorFlags, error) {
	var flags core.BehaviorFlags
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "lack_commitment":
			flags.LackCommitment = true
		case "poor_communication":
			flags.PoorCommunication = true
		case "weak_writing":
			flags.WeakWriting = true
		case "weak_quantitative":
			flags.WeakQuantitative = true
		default:
			return flags, fmt.Errorf("unknown behavior flag %q", name)
		}
	}
	return flags, nil
}
