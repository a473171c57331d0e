package goban

import "testing"

func TestCoordUtilBijection(t *testing.T) {
	for _, order := range []Order{RowMajor, ColumnMajor} {
		for _, n := range []int{1, 2, 5, 9, 19} {
			u := NewCoordUtilOrder(n, n, order)
			for row := 0; row < n; row++ {
				for col := 0; col < n; col++ {
					c := Coord{Row: row, Col: col}
					if got := u.From(u.To(c)); got != c {
						t.Fatalf("%s n=%d: From(To(%s)) = %s", order, n, c, got)
					}
				}
			}
			for i := 0; i < n*n; i++ {
				if got := u.To(u.From(i)); got != i {
					t.Fatalf("%s n=%d: To(From(%d)) = %d", order, n, i, got)
				}
			}
		}
	}
}

func TestCoordUtilLayout(t *testing.T) {
	row := NewCoordUtil(4, 3)
	if got := row.To(Coord{Row: 2, Col: 1}); got != 9 {
		t.Fatalf("row-major index: got %d want 9", got)
	}
	col := NewCoordUtilOrder(4, 3, ColumnMajor)
	if got := col.To(Coord{Row: 2, Col: 1}); got != 5 {
		t.Fatalf("column-major index: got %d want 5", got)
	}
	if got := col.From(5); got != (Coord{Row: 2, Col: 1}) {
		t.Fatalf("column-major coord: got %s", got)
	}
}

func TestCoordUtilPanicsOutOfRange(t *testing.T) {
	u := NewCoordUtil(3, 3)
	cases := map[string]func(){
		"index too large": func() { u.From(9) },
		"negative index":  func() { u.From(-1) },
		"row too large":   func() { u.To(Coord{Row: 3, Col: 0}) },
		"negative column": func() { u.To(Coord{Row: 0, Col: -1}) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			fn()
		})
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"", RowMajor, false},
		{"row-major", RowMajor, false},
		{"column", ColumnMajor, false},
		{"column_major", ColumnMajor, false},
		{"diagonal", RowMajor, true},
	}
	for _, tt := range tests {
		got, err := ParseOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseOrder(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseOrder(%q) = %s want %s", tt.in, got, tt.want)
		}
	}
}
