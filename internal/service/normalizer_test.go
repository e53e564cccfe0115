package service

import "testing"

func TestNormalizeSQL(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clauses on own lines",
			in:   "select * from Orders where CustomerId = @id",
			want: "SELECT *\nFROM Orders\nWHERE CustomerId = @id",
		},
		{
			name: "join stays with modifier",
			in:   "SELECT Name FROM Users u LEFT JOIN Orders o ON u.Id = o.UserId",
			want: "SELECT Name\nFROM Users u\nLEFT JOIN Orders o ON u.Id = o.UserId",
		},
		{
			name: "function call keeps identifier casing",
			in:   "select Id from Events where year(CreatedAt) = 2023",
			want: "SELECT Id\nFROM Events\nWHERE year(CreatedAt) = 2023",
		},
		{
			name: "collapses ragged whitespace",
			in:   "SELECT  Id\n\t FROM   T\n  WHERE  A = 1",
			want: "SELECT Id\nFROM T\nWHERE A = 1",
		},
		{
			name: "string literals survive verbatim",
			in:   "SELECT Id FROM T WHERE Name LIKE '%from where%'",
			want: "SELECT Id\nFROM T\nWHERE Name LIKE '%from where%'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeSQL(tc.in)
			if got != tc.want {
				t.Errorf("NormalizeSQL(%q) =\n%q\nwant\n%q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeSQLNeverFails(t *testing.T) {
	// Inputs the tokenizer cannot handle come back unchanged.
	inputs := []string{
		"",
		"SELECT 'unterminated",
		"SELECT [unterminated",
		"SELECT /* unterminated",
	}
	for _, in := range inputs {
		if got := NormalizeSQL(in); got != in {
			t.Errorf("NormalizeSQL(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten("select  *\n from\tOrders ")
	want := "SELECT * FROM ORDERS"
	if got != want {
		t.Errorf("Flatten = %q, want %q", got, want)
	}
}
