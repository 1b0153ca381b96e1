package reporting

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/cbl"
)

// Storage persists run outputs: the `.solution` CBL round-trip and the
// JSON results summary (spec §6 "optional solution file" and "results
// summary").
type Storage struct {
	logger *Logger
}

// NewStorage creates a new output persister.
func NewStorage(logger *Logger) *Storage {
	return &Storage{logger: logger}
}

// SaveSolution writes layout to path in the `CBL […]` / `tuple i : ( id L T
// w h )` textual format spec §6 names, one CBL block per die.
func (s *Storage) SaveSolution(layout *cbl.Layout, path string) error {
	var buf strings.Builder
	for dieIdx, die := range layout.Dies {
		fmt.Fprintf(&buf, "CBL [%d]\n", dieIdx)
		for i, t := range die.Tuples {
			w, h := t.Block.Shape()
			fmt.Fprintf(&buf, "tuple %d : ( %s %s %d %.6f %.6f )\n",
				i, t.Block.ID, t.L, t.T, w, h)
		}
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write solution file: %w", err)
	}
	s.logger.Info("solution saved", "path", path)
	return nil
}

// LoadSolution reads a `.solution` file written by SaveSolution,
// reconstructing a Layout whose tuples reference the already-known blocks
// in byID (keyed by Block.ID, spec §3) -- the solution file carries only
// placement-relevant fields (direction, junction count, current shape),
// not a block's immutable attributes, so the caller must have already
// built every block from the technology/blocks input before loading.
func (s *Storage) LoadSolution(path string, byID map[string]*block.Block) (*cbl.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open solution file: %w", err)
	}
	defer f.Close()

	layout := &cbl.Layout{}
	var current *cbl.CBL

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "CBL") {
			current = cbl.New()
			layout.Dies = append(layout.Dies, current)
			continue
		}
		if strings.HasPrefix(line, "tuple") {
			if current == nil {
				return nil, fmt.Errorf("tuple line before any CBL block: %q", line)
			}
			t, err := parseTupleLine(line, byID)
			if err != nil {
				return nil, err
			}
			current.Append(t)
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read solution file: %w", err)
	}

	s.logger.Info("solution loaded", "path", path, "dies", len(layout.Dies))
	return layout, nil
}

func parseTupleLine(line string, byID map[string]*block.Block) (cbl.Tuple, error) {
	open := strings.Index(line, "(")
	closeIdx := strings.LastIndex(line, ")")
	if open < 0 || closeIdx < 0 || closeIdx <= open {
		return cbl.Tuple{}, fmt.Errorf("malformed tuple line: %q", line)
	}
	fields := strings.Fields(line[open+1 : closeIdx])
	if len(fields) != 5 {
		return cbl.Tuple{}, fmt.Errorf("expected 5 fields in tuple line, got %d: %q", len(fields), line)
	}

	id := fields[0]
	blk, ok := byID[id]
	if !ok {
		return cbl.Tuple{}, fmt.Errorf("solution file references unknown block %q", id)
	}

	var dir cbl.Direction
	switch fields[1] {
	case "HORIZONTAL":
		dir = cbl.Horizontal
	case "VERTICAL":
		dir = cbl.Vertical
	default:
		return cbl.Tuple{}, fmt.Errorf("unknown direction %q in tuple line", fields[1])
	}

	junct, err := strconv.Atoi(fields[2])
	if err != nil {
		return cbl.Tuple{}, fmt.Errorf("invalid junction count %q: %w", fields[2], err)
	}
	w, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return cbl.Tuple{}, fmt.Errorf("invalid width %q: %w", fields[3], err)
	}
	h, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return cbl.Tuple{}, fmt.Errorf("invalid height %q: %w", fields[4], err)
	}

	blk.SetShape(w, h)
	return cbl.Tuple{Block: blk, L: dir, T: junct}, nil
}

// SaveSummary writes the results summary as JSON to path.
func (s *Storage) SaveSummary(summary *Summary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	s.logger.Info("summary saved", "path", path)
	return nil
}

// LoadSummary reads a results summary previously written by SaveSummary.
func (s *Storage) LoadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary file: %w", err)
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary file: %w", err)
	}
	return &summary, nil
}
