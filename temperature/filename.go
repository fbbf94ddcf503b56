package temperature

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"kastelo.dev/sheetwork/config"
)

// ValidationError reports input that does not have the expected shape: a
// badly named file, a sheet without the required columns or a cell that
// cannot be read.
type ValidationError struct {
	Item   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Item, e.Reason)
}

// NameParser extracts room and day from file names like Bedroom_Day2.xlsx.
// Matching is case-insensitive; rooms come back in their canonical spelling.
type NameParser struct {
	re    *regexp.Regexp
	rooms map[string]string
}

func NewNameParser(rooms []string) *NameParser {
	quoted := make([]string, len(rooms))
	canon := make(map[string]string, len(rooms))
	for i, r := range rooms {
		quoted[i] = regexp.QuoteMeta(r)
		canon[strings.ToLower(r)] = r
	}
	return &NameParser{
		re:    regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)_Day(\d+)`),
		rooms: canon,
	}
}

var defaultParser = NewNameParser(config.Default().Temperature.Rooms)

// ValidFileName reports whether name parses with the default rooms.
func ValidFileName(name string) bool {
	return defaultParser.Valid(name)
}

// ParseFileName parses name with the default rooms.
func ParseFileName(name string) (Key, error) {
	return defaultParser.Parse(name)
}

// Valid reports whether Parse accepts name.
func (p *NameParser) Valid(name string) bool {
	_, err := p.Parse(name)
	return err == nil
}

func (p *NameParser) Parse(name string) (Key, error) {
	base := filepath.Base(name)
	m := p.re.FindStringSubmatch(base)
	if m == nil {
		return Key{}, &ValidationError{Item: base, Reason: "file name does not contain <Room>_Day<N>"}
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 {
		return Key{}, &ValidationError{Item: base, Reason: fmt.Sprintf("day %q is not a positive number", m[2])}
	}
	return Key{Room: p.rooms[strings.ToLower(m[1])], Day: day}, nil
}
