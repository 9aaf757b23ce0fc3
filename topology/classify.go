package topology

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultTolerance is the relative frequency gap, as a fraction of the
// higher clock, under which two cores are considered the same tier.
const DefaultTolerance = 0.05

// Kind labels the overall shape of the core set.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindLinear means all physical cores share one clock tier.
	KindLinear
	// KindHybrid means exactly two tiers, e.g. performance and efficiency cores.
	KindHybrid
	// KindCustom means more than two tiers.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindHybrid:
		return "hybrid"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "linear":
		*k = KindLinear
	case "hybrid":
		*k = KindHybrid
	case "custom":
		*k = KindCustom
	case "unknown", "":
		*k = KindUnknown
	default:
		return fmt.Errorf("unknown topology kind %q", text)
	}
	return nil
}

// KindForGroups maps a group count to a topology kind.
func KindForGroups(n int) Kind {
	switch {
	case n <= 0:
		return KindUnknown
	case n == 1:
		return KindLinear
	case n == 2:
		return KindHybrid
	default:
		return KindCustom
	}
}

// FrequencyGroup is a set of physical cores running at one characteristic
// maximum frequency. Synthetic groups hold cores whose frequency is
// unknown and are keyed by Type instead.
type FrequencyGroup struct {
	Frequency KHz       `json:"max_frequency_khz" yaml:"max_frequency_khz"`
	Type      CoreType  `json:"core_type" yaml:"core_type"`
	Synthetic bool      `json:"synthetic" yaml:"synthetic"`
	Members   []CoreKey `json:"members" yaml:"members"`
}

// Size returns the number of physical cores in the group.
func (g FrequencyGroup) Size() int {
	return len(g.Members)
}

// Verdict is the classification of a core set.
type Verdict struct {
	Kind       Kind  `json:"kind" yaml:"kind"`
	GroupSizes []int `json:"group_sizes" yaml:"group_sizes"`
}

// Classifier groups physical cores by maximum frequency.
type Classifier struct {
	// Tolerance is the largest relative gap, as a fraction of the higher
	// of two adjacent frequencies, that still keeps them in one group.
	// The boundary is inclusive. Zero requires identical frequencies.
	Tolerance float64
}

// NewClassifier returns a Classifier using DefaultTolerance.
func NewClassifier() Classifier {
	return Classifier{Tolerance: DefaultTolerance}
}

// Classify partitions cores into frequency groups and labels the result.
//
// Cores with a known frequency are walked from fastest to slowest; a new
// group starts whenever the drop from the previous core exceeds the
// tolerance. Cores with an unknown frequency are never dropped: they are
// collected into synthetic groups per core type, ordered after the
// frequency groups. The verdict counts synthetic groups like any other.
func (c Classifier) Classify(cores []PhysicalCore) ([]FrequencyGroup, Verdict) {
	known := make([]PhysicalCore, 0, len(cores))
	unknown := make(map[CoreType][]CoreKey)

	for _, core := range cores {
		if core.Frequency.Known() {
			known = append(known, core)
			continue
		}
		unknown[core.Type] = append(unknown[core.Type], core.Key())
	}

	sort.SliceStable(known, func(i, j int) bool {
		if known[i].Frequency != known[j].Frequency {
			return known[i].Frequency > known[j].Frequency
		}
		return known[i].Key().less(known[j].Key())
	})

	var groups []FrequencyGroup
	for i, core := range known {
		if i == 0 || !c.sameTier(known[i-1].Frequency, core.Frequency) {
			groups = append(groups, FrequencyGroup{
				Frequency: core.Frequency,
				Type:      core.Type,
			})
		}
		current := &groups[len(groups)-1]
		current.Members = append(current.Members, core.Key())
		if core.Type.rank() < current.Type.rank() {
			current.Type = core.Type
		}
	}

	for _, coreType := range []CoreType{CoreTypePerformance, CoreTypeEfficiency, CoreTypeUnknown} {
		members := unknown[coreType]
		if len(members) == 0 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].less(members[j])
		})
		groups = append(groups, FrequencyGroup{
			Frequency: UnknownFrequency,
			Type:      coreType,
			Synthetic: true,
			Members:   members,
		})
	}

	verdict := Verdict{Kind: KindForGroups(len(groups))}
	for _, group := range groups {
		verdict.GroupSizes = append(verdict.GroupSizes, group.Size())
	}
	return groups, verdict
}

// sameTier reports whether lower is within tolerance of higher.
// higher >= lower is guaranteed by the descending walk.
func (c Classifier) sameTier(higher, lower KHz) bool {
	gap := float64(higher - lower)
	return gap <= c.Tolerance*float64(higher)
}

// Validate checks that the tolerance is a usable fraction.
func (c Classifier) Validate() error {
	if c.Tolerance < 0 || c.Tolerance >= 1 {
		return fmt.Errorf("tolerance %v out of range [0, 1)", c.Tolerance)
	}
	return nil
}
