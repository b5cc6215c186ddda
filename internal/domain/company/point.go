package company

// Point is a company projected onto the first two principal components of the
// embedding space.
type Point struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Map point groups.
const (
	GroupSelected = "selected"
	GroupSimilar  = "similar"
)

// MapPoint is a projected point tagged with its role on a company map.
type MapPoint struct {
	Point
	Group string `json:"group"`
}
