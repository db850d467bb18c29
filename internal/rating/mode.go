package rating

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Mode selects how per-metric bins are combined into a compound rating.
type Mode int

const (
	ModeOptimisticMedian Mode = iota
	ModePessimisticMedian
	ModeOptimisticMean
	ModePessimisticMean
	ModeBest
	ModeWorst
)

// DefaultMode is the mode a new session starts with.
const DefaultMode = ModeOptimisticMedian

var modeLabels = [...]string{
	ModeOptimisticMedian:  "optimistic median",
	ModePessimisticMedian: "pessimistic median",
	ModeOptimisticMean:    "optimistic mean",
	ModePessimisticMean:   "pessimistic mean",
	ModeBest:              "best",
	ModeWorst:             "worst",
}

var modeFolder = cases.Fold()

// Modes returns every mode in display order.
func Modes() []Mode {
	return []Mode{
		ModeOptimisticMedian, ModePessimisticMedian,
		ModeOptimisticMean, ModePessimisticMean,
		ModeBest, ModeWorst,
	}
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeLabels) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeLabels[m]
}

// Optimistic reports whether the mode breaks ties towards the better bin.
func (m Mode) Optimistic() bool {
	return m == ModeOptimisticMedian || m == ModeOptimisticMean
}

// ParseMode accepts a mode label in any case, with spaces, underscores or
// hyphens between words, and in either word order ("Median_Optimistic").
func ParseMode(s string) (Mode, error) {
	norm := modeFolder.String(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	words := strings.Fields(norm)
	candidates := []string{strings.Join(words, " ")}
	if len(words) == 2 {
		candidates = append(candidates, words[1]+" "+words[0])
	}
	for _, c := range candidates {
		for i, label := range modeLabels {
			if c == label {
				return Mode(i), nil
			}
		}
	}
	return 0, fmt.Errorf("%w %q: must be one of %s", ErrUnknownMode, s, strings.Join(modeLabels[:], ", "))
}

func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeLabels) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(modeLabels[m]), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
