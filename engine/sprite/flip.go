package sprite

// Flip mirrors the texture coordinates of a drawn sprite. Only one mode is applied per draw.
type Flip int

const (
	// FlipNone draws the source region as is.
	FlipNone Flip = iota
	// FlipHorizontally swaps the left and right texture coordinates.
	FlipHorizontally
	// FlipVertically swaps the top and bottom texture coordinates.
	FlipVertically
)

func (f Flip) String() string {
	switch f {
	case FlipHorizontally:
		return "horizontal"
	case FlipVertically:
		return "vertical"
	default:
		return "none"
	}
}
