package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PixPMusic/gopher-linkb/internal/keymap"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

// Layout text format: one line per row, top row first. Cells are separated by
// '|', the layers of a cell by '%'. Unassigned layers are written as "None".
const (
	cellSeparator  = '|'
	layerSeparator = '%'
)

// ErrEmptyLayout is returned when a layout has no rows or no cells.
var ErrEmptyLayout = errors.New("empty layout")

// FormatLayout renders km in the layout text format.
func FormatLayout(km *keymap.Keymap) string {
	var sb strings.Builder
	for row := km.Height() - 1; row >= 0; row-- {
		for col := 0; col < km.Width(); col++ {
			for l := 0; l < keys.LayerCount; l++ {
				sb.WriteString(km.Get(col, row, keys.Layer(l)).Name())
				if l < keys.LayerCount-1 {
					sb.WriteByte(layerSeparator)
				}
			}
			sb.WriteString("\t")
			sb.WriteByte(cellSeparator)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseLayout reads a layout. The grid size comes from the text. Keys are
// stored through keymap.Set so a layout that breaks the layer rules is
// rejected. When supported is not nil, keys it rejects are reported too.
func ParseLayout(text string, supported func(keys.Code) bool) (*keymap.Keymap, error) {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyLayout
	}

	height := len(lines)
	width := len(splitCells(lines[0]))
	if width == 0 {
		return nil, fmt.Errorf("first line has no cells: %w", ErrEmptyLayout)
	}

	km, err := keymap.New(width, height)
	if err != nil {
		return nil, err
	}

	for i, line := range lines {
		row := height - 1 - i
		cells := splitCells(line)
		if len(cells) != width {
			return nil, fmt.Errorf("line %d: expected %d cells, got %d", i+1, width, len(cells))
		}

		for col, cell := range cells {
			names := strings.Split(cell, string(layerSeparator))
			if len(names) > keys.LayerCount {
				return nil, fmt.Errorf("line %d cell %d: %d layers, at most %d", i+1, col+1, len(names), keys.LayerCount)
			}
			for l, name := range names {
				key, err := keys.Parse(name)
				if err != nil {
					return nil, fmt.Errorf("line %d cell %d: %w", i+1, col+1, err)
				}
				if key == keys.Undefined {
					continue
				}
				if err := km.Set(col, row, keys.Layer(l), key); err != nil {
					return nil, fmt.Errorf("line %d: %w", i+1, err)
				}
			}
		}
	}

	if supported != nil {
		if err := km.Validate(supported); err != nil {
			return nil, err
		}
	}
	return km, nil
}

func splitCells(line string) []string {
	var cells []string
	for _, cell := range strings.Split(line, string(cellSeparator)) {
		if cell = strings.TrimSpace(cell); cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}

// LoadLayout reads a layout file.
func LoadLayout(path string, supported func(keys.Code) bool) (*keymap.Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	km, err := ParseLayout(string(data), supported)
	if err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return km, nil
}

// SaveLayout writes km to path in the layout text format.
func SaveLayout(path string, km *keymap.Keymap) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(FormatLayout(km)), 0644)
}
