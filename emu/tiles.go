package emu

// Tile geometry. Tiles are 8x8 pixels stored as 2 bits per pixel in two
// bit planes: for each row the first byte holds the low bit of every pixel
// and the second byte the high bit, most significant bit leftmost.
const (
	TileSize  = 8
	TileBytes = 16

	// TilesPerRow is the number of tiles across the screen.
	TilesPerRow = ScreenWidth / TileSize
)

// Shade is a 2-bit color index after palette mapping, 0 lightest.
type Shade uint8

// DefaultBGP is the background palette register value that maps every
// color index to the shade of the same number.
const DefaultBGP = 0xE4

// MapPalette applies a palette register to a color index.
func MapPalette(bgp uint8, index uint8) Shade {
	return Shade((bgp >> (2 * (index & 3))) & 3)
}

// TilePixel returns the color index of pixel (x, y) of the tile at data[0:16].
func TilePixel(data []byte, x, y int) uint8 {
	lo := data[y*2]
	hi := data[y*2+1]
	bit := uint(7 - x)
	return ((hi>>bit)&1)<<1 | (lo>>bit)&1
}

// EncodeTile packs 64 color indices (row major) into tile bytes.
func EncodeTile(indices [TileSize * TileSize]uint8) [TileBytes]byte {
	var out [TileBytes]byte
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			idx := indices[y*TileSize+x]
			bit := uint(7 - x)
			out[y*2] |= (idx & 1) << bit
			out[y*2+1] |= ((idx >> 1) & 1) << bit
		}
	}
	return out
}

// TileSheet lays tiles out TilesPerRow wide in the order they appear in the
// data. The last partial tile, if any, is ignored.
type TileSheet struct {
	data  []byte
	tiles int
}

// NewTileSheet wraps tile data without copying it.
func NewTileSheet(data []byte) TileSheet {
	return TileSheet{data: data, tiles: len(data) / TileBytes}
}

// Tiles returns the number of complete tiles.
func (s TileSheet) Tiles() int {
	return s.tiles
}

// Height returns the sheet height in pixels.
func (s TileSheet) Height() int {
	rows := (s.tiles + TilesPerRow - 1) / TilesPerRow
	return rows * TileSize
}

// Pixel returns the color index at sheet coordinate (x, y). Positions past
// the last tile read as index 0.
func (s TileSheet) Pixel(x, y int) uint8 {
	tile := (y/TileSize)*TilesPerRow + x/TileSize
	if tile >= s.tiles {
		return 0
	}
	return TilePixel(s.data[tile*TileBytes:], x%TileSize, y%TileSize)
}

// testPatternTiles builds a sheet shown when the loaded data holds no
// complete tile: one screen of diagonal stripes in all four shades, shifted
// per tile so scrolling is visible.
func testPatternTiles() []byte {
	rows := ScreenHeight / TileSize
	data := make([]byte, 0, TilesPerRow*rows*TileBytes)
	for t := 0; t < TilesPerRow*rows; t++ {
		var idx [TileSize * TileSize]uint8
		for y := 0; y < TileSize; y++ {
			for x := 0; x < TileSize; x++ {
				idx[y*TileSize+x] = uint8(((x+y)/4 + t) & 3)
			}
		}
		tile := EncodeTile(idx)
		data = append(data, tile[:]...)
	}
	return data
}
