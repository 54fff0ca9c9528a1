package hexmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ─── Board file parser ──────────────────────────────────────────────────────
// Reads the plain-text map format:
//
//	size 16 17
//	hex 0101 0 "woods:1" ""
//	hex 0102 2 "" ""
//	end
//
// hex XXYY is 1-indexed column/row, mapped onto axial (X-1, Y-1).

func ParseBoard(r io.Reader) (*Grid, error) {
	var grid *Grid
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line == "end" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "size "):
			parts := strings.Fields(line)
			if len(parts) >= 3 {
				w, _ := strconv.Atoi(parts[1])
				h, _ := strconv.Atoi(parts[2])
				if w <= 0 || h <= 0 {
					return nil, fmt.Errorf("parse board: bad size %q", line)
				}
				grid = NewGrid(w, h)
			}
		case strings.HasPrefix(line, "tag "):
			// metadata, skip
		case strings.HasPrefix(line, "hex "):
			if grid == nil {
				continue
			}
			parseHexLine(grid, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse board: %w", err)
	}
	if grid == nil {
		return nil, fmt.Errorf("parse board: missing size line")
	}
	return grid, nil
}

// LoadBoard parses a board file from disk.
func LoadBoard(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseBoard(f)
}

func parseHexLine(grid *Grid, line string) {
	// Format: hex XXYY elevation "terrain;terrain" "theme"
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return
	}

	coord := parts[1]
	if len(coord) != 4 {
		return
	}
	col, err1 := strconv.Atoi(coord[:2])
	row, err2 := strconv.Atoi(coord[2:])
	if err1 != nil || err2 != nil {
		return
	}
	elev, _ := strconv.Atoi(parts[2])

	c := Coord{Q: col - 1, R: row - 1}
	if !grid.InBounds(c) {
		return
	}

	h, _ := grid.At(c)
	h.Elevation = elev
	if len(parts) >= 4 {
		h.Terrain = ParseTerrain(strings.Trim(parts[3], "\""))
	}
	grid.setHex(h)
}
