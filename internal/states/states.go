package states

import (
	"sort"
	"strings"

	"github.com/EricSchles/pfas-cancer-project/internal/table"
)

// Column names used on either side of normalization.
const (
	RawColumn = "STATE"
	KeyColumn = "State"
)

var abbreviations = map[string]string{
	"Alabama":                              "AL",
	"Alaska":                               "AK",
	"Arizona":                              "AZ",
	"Arkansas":                             "AR",
	"California":                           "CA",
	"Colorado":                             "CO",
	"Connecticut":                          "CT",
	"Delaware":                             "DE",
	"Florida":                              "FL",
	"Georgia":                              "GA",
	"Hawaii":                               "HI",
	"Idaho":                                "ID",
	"Illinois":                             "IL",
	"Indiana":                              "IN",
	"Iowa":                                 "IA",
	"Kansas":                               "KS",
	"Kentucky":                             "KY",
	"Louisiana":                            "LA",
	"Maine":                                "ME",
	"Maryland":                             "MD",
	"Massachusetts":                        "MA",
	"Michigan":                             "MI",
	"Minnesota":                            "MN",
	"Mississippi":                          "MS",
	"Missouri":                             "MO",
	"Montana":                              "MT",
	"Nebraska":                             "NE",
	"Nevada":                               "NV",
	"New Hampshire":                        "NH",
	"New Jersey":                           "NJ",
	"New Mexico":                           "NM",
	"New York":                             "NY",
	"North Carolina":                       "NC",
	"North Dakota":                         "ND",
	"Ohio":                                 "OH",
	"Oklahoma":                             "OK",
	"Oregon":                               "OR",
	"Pennsylvania":                         "PA",
	"Rhode Island":                         "RI",
	"South Carolina":                       "SC",
	"South Dakota":                         "SD",
	"Tennessee":                            "TN",
	"Texas":                                "TX",
	"Utah":                                 "UT",
	"Vermont":                              "VT",
	"Virginia":                             "VA",
	"Washington":                           "WA",
	"West Virginia":                        "WV",
	"Wisconsin":                            "WI",
	"Wyoming":                              "WY",
	"District of Columbia":                 "DC",
	"American Samoa":                       "AS",
	"Guam":                                 "GU",
	"Northern Mariana Islands":             "MP",
	"Puerto Rico":                          "PR",
	"United States Minor Outlying Islands": "UM",
	"U.S. Virgin Islands":                  "VI",
}

// Abbreviations returns a copy of the full-name to two-letter code table.
func Abbreviations() map[string]string {
	out := make(map[string]string, len(abbreviations))
	for k, v := range abbreviations {
		out[k] = v
	}
	return out
}

// Lookup returns the code for a full region name. Matching is exact after
// trimming surrounding whitespace.
func Lookup(name string) (string, bool) {
	code, ok := abbreviations[strings.TrimSpace(name)]
	return code, ok
}

// Normalize rewrites the STATE column of f into two-letter codes and renames
// it to State. Names missing from the table become empty cells and are
// returned, deduplicated and sorted, so callers can decide whether to warn.
// Blank cells are not reported.
// Rows are never removed here; an empty key simply fails every later join.
func Normalize(f *table.Frame) ([]string, error) {
	seen := map[string]struct{}{}
	err := f.MapColumn(RawColumn, func(v string) string {
		code, ok := Lookup(v)
		if !ok {
			if strings.TrimSpace(v) != "" {
				seen[v] = struct{}{}
			}
			return ""
		}
		return code
	})
	if err != nil {
		return nil, err
	}
	if err := f.Rename(RawColumn, KeyColumn); err != nil {
		return nil, err
	}
	unmapped := make([]string, 0, len(seen))
	for name := range seen {
		unmapped = append(unmapped, name)
	}
	sort.Strings(unmapped)
	return unmapped, nil
}
