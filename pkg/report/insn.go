package report

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// InsnGroup classifies RISC-V mnemonics for the instruction-mix report.
type InsnGroup struct {
	Name  string
	Color string
	Insns []string
}

// insnGroups maps mnemonics the simulator emits to display groups.
var insnGroups = []InsnGroup{
	{"Load", "#ff0088", []string{"lb", "lh", "lw", "lbu", "lhu", "clw", "clwsp"}},
	{"Store", "#5555ff", []string{"sb", "sh", "sw", "csw", "cswsp"}},
	{"Arithmetic", "#2ecc71", []string{"and", "or", "andi", "xori", "srai", "xor", "add", "addi", "sub", "sll", "slli", "lui", "auipc", "srli", "sltu"}},
	{"Branch", "#f1c40f", []string{"beq", "bne", "blt", "bge", "bltu", "bgeu", "cbeqz", "cbnez"}},
	{"Jump", "#e67e22", []string{"jal", "jalr", "cj", "cjal", "cjr", "cjalr"}},
	{"Multiply", "#e74c3c", []string{"mul", "mulh", "div", "rem"}},
	{"System", "#95a5a6", []string{"ecall", "ebreak", "csrrw", "csrrs"}},
	{"FP-Mem", "#a29bfe", []string{"flw", "fsw", "fld", "fsd"}},
}

const otherColor = "#bdc3c7"

// InsnCount is one row of a .prof instruction table.
type InsnCount struct {
	Name  string
	Group string
	Color string
	Count int64
}

// ClassifyInsn returns the display group and color for a mnemonic.
func ClassifyInsn(name string) (group, color string) {
	for _, g := range insnGroups {
		for _, insn := range g.Insns {
			if insn == name {
				return g.Name, g.Color
			}
		}
	}
	return "Other", otherColor
}

// ParseInsnTable reads the "Instruction | Count" section of a .prof file.
// The section starts at a header line containing both words and ends at the
// next "===" separator.
func ParseInsnTable(path string) ([]InsnCount, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open .prof file %q: %w", path, err)
	}
	defer f.Close()

	var out []InsnCount
	inTable := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "Instruction") && strings.Contains(line, "Count") {
			inTable = true
			continue
		}
		if inTable && strings.Contains(line, "===") {
			break
		}
		if !inTable || !strings.Contains(line, "|") {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		name := strings.TrimSpace(parts[0])
		count, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad instruction count in %q: %q", path, line)
		}
		group, color := ClassifyInsn(name)
		out = append(out, InsnCount{Name: name, Group: group, Color: color, Count: count})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read .prof file %q: %w", path, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no instruction table in %q", path)
	}
	return out, nil
}

// GroupTotals sums counts per display group, ordered by count descending,
// group name ascending on ties.
func GroupTotals(insns []InsnCount) []InsnCount {
	sums := make(map[string]int64)
	colors := make(map[string]string)
	for _, in := range insns {
		sums[in.Group] += in.Count
		colors[in.Group] = in.Color
	}
	out := make([]InsnCount, 0, len(sums))
	for g, c := range sums {
		out = append(out, InsnCount{Name: g, Group: g, Color: colors[g], Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopInsns returns the n most executed instructions, count descending.
func TopInsns(insns []InsnCount, n int) []InsnCount {
	out := make([]InsnCount, len(insns))
	copy(out, insns)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// FormatCount renders large counts compactly: 80000018 → "80.0M".
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}
