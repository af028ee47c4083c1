package booking

import (
	"fmt"
	"strings"

	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// Dependent children must be between these ages to benefit from a
// registration; the agent themselves carries age 0 in the beneficiary key.
const (
	minChildAge = 3
	maxChildAge = 17
)

// validateBeneficiary checks the identity fields shared by every
// registration kind and returns the normalised beneficiary kind and age.
// An agent's age is forced to 0 so the (matricule, beneficiary, age) key is
// stable regardless of what the client sent.
func validateBeneficiary(matricule, nom, prenom, beneficiary string, age uint8) (string, uint8, error) {
	if !validMatricule(matricule) {
		return "", 0, fmt.Errorf("%w: matricule must be 4 or 5 digits", ErrValidation)
	}
	if strings.TrimSpace(nom) == "" || strings.TrimSpace(prenom) == "" {
		return "", 0, fmt.Errorf("%w: nom and prenom are required", ErrValidation)
	}
	switch strings.ToUpper(strings.TrimSpace(beneficiary)) {
	case model.BeneficiaryAgent:
		return model.BeneficiaryAgent, 0, nil
	case model.BeneficiaryChild:
		if age < minChildAge || age > maxChildAge {
			return "", 0, fmt.Errorf("%w: child age must be between %d and %d", ErrValidation, minChildAge, maxChildAge)
		}
		return model.BeneficiaryChild, age, nil
	default:
		return "", 0, fmt.Errorf("%w: beneficiary must be AGENT or CHILD", ErrValidation)
	}
}

// validMatricule accepts the 4-5 digit employee identifier.
func validMatricule(m string) bool {
	if len(m) < 4 || len(m) > 5 {
		return false
	}
	for i := 0; i < len(m); i++ {
		if m[i] < '0' || m[i] > '9' {
			return false
		}
	}
	return true
}
