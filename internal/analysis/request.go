package analysis

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/dudu/poseperfect/internal/routine"
	"github.com/dudu/poseperfect/internal/scoring"
)

// Mode selects still-image or routine-video analysis
type Mode string

const (
	Static  Mode = "Static"
	Dynamic Mode = "Dynamic"
)

// ParseMode accepts "static" or "dynamic" in any case
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return Static, nil
	case "dynamic":
		return Dynamic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Division is a competition category
type Division string

const (
	MensPhysique     Division = "Men's Physique"
	ClassicPhysique  Division = "Classic Physique"
	MensBodybuilding Division = "Men's Bodybuilding"
	Bikini           Division = "Bikini"
	Wellness         Division = "Wellness"
	Figure           Division = "Figure"
	WomensPhysique   Division = "Women's Physique"
)

// Divisions lists every supported division in display order
func Divisions() []Division {
	return []Division{MensPhysique, ClassicPhysique, MensBodybuilding, Bikini, Wellness, Figure, WomensPhysique}
}

// ParseDivision matches a division name, ignoring case
func ParseDivision(s string) (Division, error) {
	for _, d := range Divisions() {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDivision, s)
}

// PosesFor returns the mandatory poses judged in a division. Divisions
// without pose-specific analysis return nil.
func PosesFor(d Division) []string {
	if d == MensPhysique {
		return []string{routine.FrontPoseLabel, routine.BackPoseLabel}
	}
	return nil
}

// WeightsFor returns the total-package weights used for a division
func WeightsFor(Division) scoring.Weights {
	return scoring.DefaultWeights
}

// Request is the immutable set of selections for one analysis
type Request struct {
	mode     Mode
	division Division
	pose     string
}

// NewRequest validates the selections. A static request for a division
// with poses defaults to the first pose when none is given; any other
// pose must be one the division offers.
func NewRequest(mode Mode, division Division, pose string) (Request, error) {
	if mode != Static && mode != Dynamic {
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if !slices.Contains(Divisions(), division) {
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownDivision, division)
	}

	poses := PosesFor(division)
	switch {
	case pose == "" && mode == Static && len(poses) > 0:
		pose = poses[0]
	case pose != "" && !slices.Contains(poses, pose):
		return Request{}, fmt.Errorf("%w: %q in %s", ErrUnknownPose, pose, division)
	}

	return Request{mode: mode, division: division, pose: pose}, nil
}

// Mode returns the analysis mode
func (r Request) Mode() Mode { return r.mode }

// Division returns the competition division
func (r Request) Division() Division { return r.division }

// Pose returns the requested pose, empty when the division offers none
func (r Request) Pose() string { return r.pose }

// Weights returns the total package weights of the division
func (r Request) Weights() scoring.Weights { return WeightsFor(r.division) }

// MarshalJSON encodes the request's mode, division and pose
func (r Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mode     Mode     `json:"mode"`
		Division Division `json:"division"`
		Pose     string   `json:"pose,omitempty"`
	}{r.mode, r.division, r.pose})
}
