package publication

import (
	"regexp"
	"time"
)

// bioRxivChangeoverDate is when bioRxiv/medRxiv switched from 6/8-digit
// legacy ids to the YYYY.MM.DD.DDDDDD scheme (spec §4.D).
var bioRxivChangeoverDate = time.Date(2019, time.December, 11, 0, 0, 0, 0, time.UTC)

var (
	pubMedPattern    = regexp.MustCompile(`^[1-9][0-9]*$`)
	legacyBioRxiv6   = regexp.MustCompile(`^[0-9]{6}$`)
	legacyMedRxiv8   = regexp.MustCompile(`^[0-9]{8}$`)
	dateSchemeRxiv   = regexp.MustCompile(`^(\d{4})\.(\d{2})\.(\d{2})\.\d{6}$`)
	doiPattern       = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
)

// IsValidPubMed reports whether identifier is a PubMed ID: a positive
// integer with no leading zeros.
func IsValidPubMed(identifier string) bool {
	return pubMedPattern.MatchString(identifier)
}

// IsValidCrossrefDOI reports whether identifier matches the standard DOI
// pattern "10.<4-9 digit registrant>/<suffix>".
func IsValidCrossrefDOI(identifier string) bool {
	return doiPattern.MatchString(identifier)
}

// IsValidBioRxiv reports whether identifier is a legacy 6-digit bioRxiv id,
// or a YYYY.MM.DD.DDDDDD id dated on/after the 2019-12-11 changeover.
func IsValidBioRxiv(identifier string) bool {
	return legacyBioRxiv6.MatchString(identifier) || validRxivDate(identifier)
}

// IsValidMedRxiv is IsValidBioRxiv with an 8-digit legacy suffix instead of
// 6 (spec §4.D).
func IsValidMedRxiv(identifier string) bool {
	return legacyMedRxiv8.MatchString(identifier) || validRxivDate(identifier)
}

func validRxivDate(identifier string) bool {
	m := dateSchemeRxiv.FindStringSubmatch(identifier)
	if m == nil {
		return false
	}
	d, err := time.Parse("2006.01.02", m[1]+"."+m[2]+"."+m[3])
	if err != nil {
		return false
	}
	return !d.Before(bioRxivChangeoverDate)
}

// ValidatorsFor returns the database names whose validator accepts
// identifier, i.e. every database the resolver should query when db_name is
// not supplied (spec §4.D "query every applicable database").
func ValidatorsFor(identifier string) []string {
	var dbs []string
	if IsValidPubMed(identifier) {
		dbs = append(dbs, DbPubMed)
	}
	if IsValidCrossrefDOI(identifier) {
		dbs = append(dbs, DbCrossref)
	}
	if IsValidBioRxiv(identifier) {
		dbs = append(dbs, DbBioRxiv)
	}
	if IsValidMedRxiv(identifier) {
		dbs = append(dbs, DbMedRxiv)
	}
	return dbs
}
