package emu

import (
	"errors"
	"strings"
)

// Cartridge header offsets.
const (
	headerTitleStart    = 0x0134
	headerTitleEnd      = 0x0144 // Exclusive
	headerCGBFlag       = 0x0143
	headerCartType      = 0x0147
	headerROMSize       = 0x0148
	headerRAMSize       = 0x0149
	headerDestination   = 0x014A
	headerVersion       = 0x014C
	headerChecksum      = 0x014D
	headerChecksumStart = 0x0134
	headerChecksumEnd   = 0x014C // Inclusive
	headerSize          = 0x0150
)

// ErrNoHeader is returned for data too short to contain a cartridge header.
var ErrNoHeader = errors.New("data too short for cartridge header")

// Header is the metadata block at 0x0100-0x014F of a cartridge image.
type Header struct {
	Title         string
	CGB           bool // CGB flag set, so the title is at most 15 bytes
	CartridgeType uint8
	ROMSizeCode   uint8
	RAMSizeCode   uint8
	Japanese      bool // Destination code 0x00
	Version       uint8
	Checksum      uint8
	ChecksumValid bool
}

// ParseHeader reads the cartridge header from rom.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < headerSize {
		return Header{}, ErrNoHeader
	}

	h := Header{
		CGB:           rom[headerCGBFlag]&0x80 != 0,
		CartridgeType: rom[headerCartType],
		ROMSizeCode:   rom[headerROMSize],
		RAMSizeCode:   rom[headerRAMSize],
		Japanese:      rom[headerDestination] == 0x00,
		Version:       rom[headerVersion],
		Checksum:      rom[headerChecksum],
	}

	end := headerTitleEnd
	if h.CGB {
		end = headerCGBFlag
	}
	h.Title = cleanTitle(rom[headerTitleStart:end])
	h.ChecksumValid = HeaderChecksum(rom) == h.Checksum
	return h, nil
}

// HeaderChecksum computes x = x - b - 1 over 0x0134-0x014C. rom must be at
// least 0x0150 bytes.
func HeaderChecksum(rom []byte) uint8 {
	var x uint8
	for _, b := range rom[headerChecksumStart : headerChecksumEnd+1] {
		x = x - b - 1
	}
	return x
}

func cleanTitle(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c == 0 {
			break
		}
		if c < 0x20 || c > 0x7E {
			continue
		}
		sb.WriteByte(c)
	}
	return strings.TrimSpace(sb.String())
}
