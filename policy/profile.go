package policy

import (
	"encoding/json"
	"fmt"
	"os"
)

// Profile is the on-disk form of a money-management policy, before the
// account balance and timezone are known.
type Profile struct {
	Mode     Mode                `json:"mode"`
	Simple   *SimpleRules        `json:"simple,omitempty"`
	Advanced *DecisionTreeConfig `json:"advanced,omitempty"`
}

// LoadProfile reads a JSON policy profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

// Params resolves the profile against an account and validates the result.
// Nothing downstream of this call re-checks configuration.
func (p *Profile) Params(balanceCents int64, timezone string) (Params, error) {
	params := Resolve(p.Mode, balanceCents, p.Simple, p.Advanced, timezone)
	if err := params.Validate(); err != nil {
		return Params{}, err
	}
	return params, nil
}
