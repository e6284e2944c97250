package enums

import (
	"fmt"
	"strings"
)

// AnimalGender is the recorded sex of an animal.
type AnimalGender string

const (
	AnimalGenderMale   AnimalGender = "male"
	AnimalGenderFemale AnimalGender = "female"
)

func (g AnimalGender) String() string {
	return string(g)
}

func (g AnimalGender) IsValid() bool {
	return g == AnimalGenderMale || g == AnimalGenderFemale
}

// ParseAnimalGender converts raw input into an AnimalGender; matching ignores case.
func ParseAnimalGender(value string) (AnimalGender, error) {
	g := AnimalGender(strings.ToLower(strings.TrimSpace(value)))
	if g.IsValid() {
		return g, nil
	}
	return "", fmt.Errorf("invalid gender %q", value)
}
