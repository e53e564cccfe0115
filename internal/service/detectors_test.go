package service

import (
	"reflect"
	"testing"
)

func TestRunDetectors(t *testing.T) {
	testCases := []struct {
		name         string
		sql          string
		wantFindings []string
		wantRisks    []string
	}{
		{
			name: "select star",
			sql:  "SELECT * FROM Orders WHERE CustomerId = @id",
			wantFindings: []string{
				"avoid unbounded projection; select only required columns",
			},
			wantRisks: []string{
				"wider rows reduce cache efficiency",
			},
		},
		{
			name: "leading wildcard like",
			sql:  "SELECT Id FROM Users WHERE Name LIKE '%smith'",
			wantFindings: []string{
				"leading-wildcard pattern match defeats index seeks",
			},
			wantRisks: []string{
				"full scan risk on large tables",
			},
		},
		{
			name: "non-sargable function in where",
			sql:  "SELECT Id FROM Events WHERE YEAR(CreatedAt) = 2023",
			wantFindings: []string{
				"non-sargable predicate blocks index seeks",
			},
		},
		{
			name: "or in where",
			sql:  "SELECT Id FROM T WHERE A = 1 OR B = 2",
			wantFindings: []string{
				"disjunctive predicates may prevent index usage",
			},
		},
		{
			name: "order by without join",
			sql:  "SELECT Id FROM T WHERE A = 1 ORDER BY CreatedAt",
			wantFindings: []string{
				"ensure an index supports the ORDER BY key(s)",
			},
		},
		{
			name: "join without where",
			sql:  "SELECT Name FROM Users u JOIN Orders o ON u.Id = o.UserId",
			wantFindings: []string{
				"unfiltered join may multiply row counts",
			},
		},
		{
			name:         "clean query",
			sql:          "SELECT Id FROM T WHERE A = 1",
			wantFindings: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			det := RunDetectors(Flatten(NormalizeSQL(tc.sql)))
			if !reflect.DeepEqual(det.Findings, tc.wantFindings) {
				t.Errorf("findings = %v, want %v", det.Findings, tc.wantFindings)
			}
			if tc.wantRisks != nil && !reflect.DeepEqual(det.Risks, tc.wantRisks) {
				t.Errorf("risks = %v, want %v", det.Risks, tc.wantRisks)
			}
		})
	}
}

func TestDetectorsNoFalseOrInOrderBy(t *testing.T) {
	// ORDER inside the WHERE segment must not trip the OR rule.
	det := RunDetectors(Flatten("SELECT Id FROM T WHERE A = 1 ORDER BY A"))
	for _, f := range det.Findings {
		if f == "disjunctive predicates may prevent index usage" {
			t.Fatalf("ORDER BY misdetected as OR predicate: %v", det.Findings)
		}
	}
}

func TestDetectorDeterminism(t *testing.T) {
	flat := Flatten("SELECT * FROM T WHERE UPPER(Name) = 'X' OR B = 2 ORDER BY A")
	first := RunDetectors(flat)
	for i := 0; i < 10; i++ {
		again := RunDetectors(flat)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("detector output not deterministic: %v vs %v", first, again)
		}
	}
}
