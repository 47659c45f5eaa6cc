package emu

// createTestROM creates cartridge data of the given size with a valid
// header. Tile bytes cycle through every value so each tile differs.
func createTestROM(size int, title string) []byte {
	rom := make([]byte, size)
	for i := range rom {
		rom[i] = byte(i * 7)
	}
	for i := headerTitleStart; i < headerTitleEnd; i++ {
		rom[i] = 0
	}
	copy(rom[headerTitleStart:headerTitleEnd], title)
	rom[headerCGBFlag] = 0
	rom[headerDestination] = 0x01
	rom[headerChecksum] = HeaderChecksum(rom)
	return rom
}

// solidTiles returns n tiles filled with a single color index.
func solidTiles(n int, index uint8) []byte {
	var idx [TileSize * TileSize]uint8
	for i := range idx {
		idx[i] = index
	}
	tile := EncodeTile(idx)
	data := make([]byte, 0, n*TileBytes)
	for i := 0; i < n; i++ {
		data = append(data, tile[:]...)
	}
	return data
}

// pixelAt reads the RGBA bytes at (x, y) from an emulator framebuffer.
func pixelAt(e *Emulator, x, y int) [4]byte {
	fb := e.GetFramebuffer()
	i := y*e.GetFramebufferStride() + x*4
	return [4]byte{fb[i], fb[i+1], fb[i+2], fb[i+3]}
}
