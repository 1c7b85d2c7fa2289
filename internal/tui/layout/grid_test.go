package layout

import "testing"

func TestCalculateGridShape(t *testing.T) {
	cfg := DefaultConfig().Grid

	tests := []struct {
		name             string
		width, height    int
		maxCols, maxRows int
		want             GridShape
	}{
		{"capped by layout", 200, 60, 6, 4, GridShape{Columns: 6, Rows: 4}},
		{"limited by width", 70, 60, 6, 4, GridShape{Columns: 4, Rows: 4}},
		{"limited by height", 200, 22, 6, 4, GridShape{Columns: 6, Rows: 3}},
		{"never below one", 5, 5, 6, 4, GridShape{Columns: 1, Rows: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGridShape(tt.width, tt.height, tt.maxCols, tt.maxRows, cfg)
			if got != tt.want {
				t.Errorf("CalculateGridShape(%d, %d) = %+v, want %+v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestGridGeometry(t *testing.T) {
	cfg := DefaultConfig().Grid
	shape := GridShape{Columns: 2, Rows: 2}

	// Two tiles of 16 plus a gap of 2 is 34 cells, centered in 40.
	box := GridBox(40, shape, cfg)
	want := Box{Left: 30, Top: 140, Right: 370, Bottom: 300}
	if box != want {
		t.Fatalf("GridBox = %+v, want %+v", box, want)
	}

	x, y := TileCenter(box, 3, shape.Columns, cfg)
	if x != 290 || y != 260 {
		t.Errorf("TileCenter(3) = (%v, %v), want (290, 260)", x, y)
	}

	x, _ = EdgePoint(box, -1, 0, cfg)
	if x-box.Left >= 60 {
		t.Errorf("left edge point %v is outside the paging margin", x)
	}
	x, _ = EdgePoint(box, 1, 0, cfg)
	if box.Right-x >= 60 {
		t.Errorf("right edge point %v is outside the paging margin", x)
	}
}
